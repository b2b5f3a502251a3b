// SPDX-License-Identifier: MIT

package speig_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/speig"
)

// denseOp adapts a dense symmetric matrix to the matrix-free interface.
type denseOp struct{ a *mat.SymDense }

func (o denseOp) Dim() int { return o.a.SymmetricDim() }

func (o denseOp) Apply(x, y []float64) {
	n := o.Dim()
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < n; j++ {
			s += o.a.At(i, j) * x[j]
		}
		y[i] = s
	}
}

// randomSym builds a dense symmetric matrix with entries in [-1, 1).
func randomSym(n int, rng *rand.Rand) *mat.SymDense {
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, 2*rng.Float64()-1)
		}
	}

	return a
}

func TestLargestMagnitude_MatchesEigenSym(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, n := range []int{4, 12, 30} {
		a := randomSym(n, rng)
		res, err := speig.LargestMagnitude(denseOp{a}, speig.WithSeed(7), speig.WithTolerance(1e-10))
		require.NoError(t, err)
		require.True(t, res.Converged, "n=%d", n)

		var es mat.EigenSym
		require.True(t, es.Factorize(a, false))
		vals := es.Values(nil)
		want := vals[0]
		for _, v := range vals {
			if math.Abs(v) > math.Abs(want) {
				want = v
			}
		}
		require.InDelta(t, want, res.Value, 1e-8, "n=%d", n)

		// Residual check: ‖A·x − θ·x‖ small.
		y := make([]float64, n)
		denseOp{a}.Apply(res.Vector, y)
		resid := 0.0
		for i := range y {
			d := y[i] - res.Value*res.Vector[i]
			resid += d * d
		}
		require.Less(t, math.Sqrt(resid), 1e-6)
	}
}

func TestLargestMagnitude_DiagonalExact(t *testing.T) {
	// Diagonal spectrum {−9, 1, 2, 3}: largest magnitude is −9.
	a := mat.NewSymDense(4, nil)
	for i, v := range []float64{1, -9, 2, 3} {
		a.SetSym(i, i, v)
	}
	res, err := speig.LargestMagnitude(denseOp{a}, speig.WithSeed(3))
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, -9, res.Value, 1e-9)
	// Eigenvector concentrates on coordinate 1.
	require.InDelta(t, 1, math.Abs(res.Vector[1]), 1e-6)
}

func TestLargestMagnitude_StarvedBudgetReportsUnconverged(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	a := randomSym(40, rng)
	res, err := speig.LargestMagnitude(denseOp{a},
		speig.WithSeed(5), speig.WithMaxIterations(3), speig.WithNumVectors(3), speig.WithTolerance(1e-14))
	require.NoError(t, err)
	require.False(t, res.Converged)
	// Best-effort pair is still populated.
	require.Len(t, res.Vector, 40)
	require.Equal(t, 3, res.Iterations)
}

func TestLargestMagnitude_InputErrors(t *testing.T) {
	_, err := speig.LargestMagnitude(nil)
	require.ErrorIs(t, err, speig.ErrNilOperator)

	a := mat.NewSymDense(3, nil)
	_, err = speig.LargestMagnitude(denseOp{a}, speig.WithInitialVector([]float64{1, 2}))
	require.ErrorIs(t, err, speig.ErrBadInitialVector)
}

func TestOptionConstructors_Panic(t *testing.T) {
	require.Panics(t, func() { speig.WithMaxIterations(0) })
	require.Panics(t, func() { speig.WithTolerance(-1) })
	require.Panics(t, func() { speig.WithNumVectors(1) })
	require.Panics(t, func() { speig.WithRand(nil) })
	require.Panics(t, func() { speig.WithInitialVector(nil) })
}
