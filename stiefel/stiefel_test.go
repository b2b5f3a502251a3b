// SPDX-License-Identifier: MIT

package stiefel_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/stiefel"
)

const feasTol = 1e-8

// requireFeasible asserts that every d-column block of y has orthonormal
// columns within feasTol.
func requireFeasible(t *testing.T, p *stiefel.Product, y *mat.Dense) {
	t.Helper()
	r, d := p.Rank(), p.BlockDim()
	eye := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		eye.Set(i, i, 1)
	}
	for i := 0; i < p.NumBlocks(); i++ {
		blk := y.Slice(0, r, i*d, (i+1)*d)
		var gram mat.Dense
		gram.Mul(blk.T(), blk)
		require.True(t, mat.EqualApprox(eye, &gram, feasTol), "block %d not orthonormal", i)
	}
}

func TestNewProduct_Validation(t *testing.T) {
	for _, tc := range []struct{ r, d, n int }{
		{0, 1, 1}, {2, 3, 1}, {3, 3, 0}, {3, 0, 2},
	} {
		_, err := stiefel.NewProduct(tc.r, tc.d, tc.n)
		require.ErrorIs(t, err, stiefel.ErrBadDimension, "r=%d d=%d n=%d", tc.r, tc.d, tc.n)
	}

	p, err := stiefel.NewProduct(5, 3, 4)
	require.NoError(t, err)
	require.Equal(t, 5, p.Rank())
	require.Equal(t, 3, p.BlockDim())
	require.Equal(t, 4, p.NumBlocks())
	require.Equal(t, 12, p.AmbientCols())
}

func TestRandomSample_Feasible(t *testing.T) {
	p, err := stiefel.NewProduct(5, 3, 6)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	requireFeasible(t, p, p.RandomSample(rng))
}

func TestRetract_Feasible(t *testing.T) {
	p, err := stiefel.NewProduct(4, 2, 3)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(2))
	y := p.RandomSample(rng)

	// Ambient direction, projected to the tangent space, then retracted.
	v := mat.NewDense(4, 6, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 6; j++ {
			v.Set(i, j, 0.3*rng.NormFloat64())
		}
	}
	requireFeasible(t, p, p.Retract(y, p.Proj(y, v)))
}

func TestProj_IdempotentAndTangent(t *testing.T) {
	p, err := stiefel.NewProduct(4, 3, 5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))
	y := p.RandomSample(rng)
	v := mat.NewDense(4, 15, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 15; j++ {
			v.Set(i, j, rng.NormFloat64())
		}
	}

	pv := p.Proj(y, v)
	ppv := p.Proj(y, pv)
	require.True(t, mat.EqualApprox(pv, ppv, 1e-12), "projection must be idempotent")

	// Tangency condition for each block: sym(Y_iᵀ·V_i) == 0.
	for i := 0; i < p.NumBlocks(); i++ {
		yb := y.Slice(0, 4, i*3, (i+1)*3)
		vb := pv.Slice(0, 4, i*3, (i+1)*3)
		var ytv, sym mat.Dense
		ytv.Mul(yb.T(), vb)
		sym.CloneFrom(ytv.T())
		sym.Add(&sym, &ytv)
		require.InDelta(t, 0, mat.Norm(&sym, 2), 1e-12)
	}
}

func TestSymBlockDiagProduct_MatchesBlockFormula(t *testing.T) {
	p, err := stiefel.NewProduct(3, 2, 2)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(4))
	randDense := func() *mat.Dense {
		m := mat.NewDense(3, 4, nil)
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				m.Set(i, j, rng.NormFloat64())
			}
		}
		return m
	}
	a, b, c := randDense(), randDense(), randDense()
	got := p.SymBlockDiagProduct(a, b, c)

	for i := 0; i < 2; i++ {
		ab := a.Slice(0, 3, i*2, (i+1)*2)
		bb := b.Slice(0, 3, i*2, (i+1)*2)
		cb := c.Slice(0, 3, i*2, (i+1)*2)
		var btc, sym, want mat.Dense
		btc.Mul(bb.T(), cb)
		sym.CloneFrom(btc.T())
		sym.Add(&sym, &btc)
		sym.Scale(0.5, &sym)
		want.Mul(ab, &sym)
		require.True(t, mat.EqualApprox(&want, got.Slice(0, 3, i*2, (i+1)*2), 1e-13))
	}
}

func TestProjectToManifold_RecoversOrthonormal(t *testing.T) {
	p, err := stiefel.NewProduct(4, 2, 3)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))
	y := p.RandomSample(rng)

	// A feasible point is a fixed point of the projection.
	back := p.ProjectToManifold(y)
	require.True(t, mat.EqualApprox(y, back, 1e-10))
}

func TestShapeMisuse_Panics(t *testing.T) {
	p, err := stiefel.NewProduct(3, 2, 2)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(6))
	y := p.RandomSample(rng)
	require.Panics(t, func() { p.Proj(y, mat.NewDense(3, 3, nil)) })
	require.Panics(t, func() { p.RandomSample(nil) })
}
