// SPDX-License-Identifier: MIT

package spmat_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/spmat"
)

// buildCSR compiles a dense [][]float64 into a CSR via the triplet Builder.
func buildCSR(t *testing.T, dense [][]float64) *spmat.CSR {
	t.Helper()
	b, err := spmat.NewBuilder(len(dense), len(dense[0]))
	require.NoError(t, err)
	for i := range dense {
		for j, v := range dense[i] {
			if v != 0 {
				require.NoError(t, b.Add(i, j, v))
			}
		}
	}

	return b.ToCSR()
}

func TestNewBuilder_BadShape(t *testing.T) {
	_, err := spmat.NewBuilder(0, 3)
	require.ErrorIs(t, err, spmat.ErrBadShape)
	_, err = spmat.NewBuilder(3, -1)
	require.ErrorIs(t, err, spmat.ErrBadShape)
}

func TestBuilder_OutOfRange(t *testing.T) {
	b, err := spmat.NewBuilder(2, 2)
	require.NoError(t, err)
	require.ErrorIs(t, b.Add(2, 0, 1), spmat.ErrOutOfRange)
	require.ErrorIs(t, b.Add(0, -1, 1), spmat.ErrOutOfRange)
}

func TestBuilder_MergesDuplicates(t *testing.T) {
	b, err := spmat.NewBuilder(2, 2)
	require.NoError(t, err)
	// Same coordinate added twice must sum (Laplacian assembly semantics).
	require.NoError(t, b.Add(0, 1, 2.5))
	require.NoError(t, b.Add(0, 1, -1.0))
	require.NoError(t, b.Add(1, 0, 4))
	a := b.ToCSR()
	require.Equal(t, 2, a.NNZ())
	v, err := a.At(0, 1)
	require.NoError(t, err)
	require.InDelta(t, 1.5, v, 1e-15)
	v, err = a.At(1, 0)
	require.NoError(t, err)
	require.InDelta(t, 4.0, v, 1e-15)
	v, err = a.At(1, 1)
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestCSR_MulDenseMatchesDense(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{2, 0, -1},
		{0, 3, 0},
	})
	x := mat.NewDense(3, 2, []float64{
		1, 4,
		2, 5,
		3, 6,
	})
	got, err := a.MulDense(x)
	require.NoError(t, err)

	var want mat.Dense
	want.Mul(a.ToDense(), x)
	require.True(t, mat.EqualApprox(&want, got, 1e-14))
}

func TestCSR_MulDense_DimensionMismatch(t *testing.T) {
	a := buildCSR(t, [][]float64{{1, 2}})
	_, err := a.MulDense(mat.NewDense(3, 1, nil))
	require.ErrorIs(t, err, spmat.ErrDimensionMismatch)
	_, err = a.MulVec([]float64{1, 2, 3})
	require.ErrorIs(t, err, spmat.ErrDimensionMismatch)
}

func TestCSR_TransposeAndDiagonal(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{5, 1, 0},
		{0, 7, 2},
	})
	at := a.Transpose()
	require.Equal(t, 3, at.Rows())
	require.Equal(t, 2, at.Cols())
	var want mat.Dense
	want.CloneFrom(a.ToDense().T())
	require.True(t, mat.EqualApprox(&want, at.ToDense(), 1e-15))

	require.Equal(t, []float64{5, 7}, a.Diagonal())
}

func TestCholesky_SolveMatchesDense(t *testing.T) {
	// SPD matrix: diagonally dominant Laplacian-like form.
	a := buildCSR(t, [][]float64{
		{4, -1, 0, -1},
		{-1, 4, -1, 0},
		{0, -1, 4, -1},
		{-1, 0, -1, 4},
	})
	ch, err := spmat.NewCholesky(a)
	require.NoError(t, err)

	// Multi-column RHS solved in one call.
	rhs := mat.NewDense(4, 3, []float64{
		1, 0, 2,
		0, 1, -1,
		1, 1, 0,
		-1, 2, 3,
	})
	x, err := ch.Solve(rhs)
	require.NoError(t, err)

	var back mat.Dense
	back.Mul(a.ToDense(), x)
	require.True(t, mat.EqualApprox(rhs, &back, 1e-10))

	xv, err := ch.SolveVec([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	bv, err := a.MulVec(xv)
	require.NoError(t, err)
	for i, want := range []float64{1, 2, 3, 4} {
		require.InDelta(t, want, bv[i], 1e-10)
	}
}

func TestCholesky_NotPositiveDefinite(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{1, 2},
		{2, 1},
	})
	_, err := spmat.NewCholesky(a)
	require.ErrorIs(t, err, spmat.ErrNotPositiveDefinite)
	require.True(t, errors.Is(err, spmat.ErrNotPositiveDefinite))
}

func TestCholesky_NonSquare(t *testing.T) {
	a := buildCSR(t, [][]float64{{1, 0, 0}})
	_, err := spmat.NewCholesky(a)
	require.ErrorIs(t, err, spmat.ErrNonSquare)
}

func TestIncompleteCholesky_ExactOnNoFillPattern(t *testing.T) {
	// Tridiagonal SPD: IC(0) introduces no fill, so it equals the exact
	// factor and the approximate solve is an exact solve.
	a := buildCSR(t, [][]float64{
		{4, -1, 0, 0},
		{-1, 4, -1, 0},
		{0, -1, 4, -1},
		{0, 0, -1, 4},
	})
	ic, err := spmat.NewIncompleteCholesky(a)
	require.NoError(t, err)
	require.Equal(t, 4, ic.Order())

	b := []float64{1, -2, 0, 3}
	x, err := ic.SolveVec(b)
	require.NoError(t, err)
	back, err := a.MulVec(x)
	require.NoError(t, err)
	for i := range b {
		require.InDelta(t, b[i], back[i], 1e-10)
	}
}

func TestIncompleteCholesky_Breakdown(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{0, 1},
		{1, 0},
	})
	_, err := spmat.NewIncompleteCholesky(a)
	require.ErrorIs(t, err, spmat.ErrBreakdown)
}

func TestIncompleteCholesky_SolveInPlace_BadLength(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{2, 0},
		{0, 2},
	})
	ic, err := spmat.NewIncompleteCholesky(a)
	require.NoError(t, err)
	require.ErrorIs(t, ic.SolveInPlace(make([]float64, 3)), spmat.ErrDimensionMismatch)
}

func TestSliceCols_CopiesWindow(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{1, 0, 2, 0},
		{0, 3, 0, 4},
		{5, 0, 6, 0},
	})

	s, err := a.SliceCols(1, 3)
	require.NoError(t, err)
	require.Equal(t, 3, s.Rows())
	require.Equal(t, 2, s.Cols())

	want := [][]float64{
		{0, 2},
		{3, 0},
		{0, 6},
	}
	for i := range want {
		for j := range want[i] {
			v, err := s.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, want[i][j], v, 1e-15, "entry (%d,%d)", i, j)
		}
	}

	_, err = a.SliceCols(2, 2)
	require.ErrorIs(t, err, spmat.ErrOutOfRange)
	_, err = a.SliceCols(-1, 2)
	require.ErrorIs(t, err, spmat.ErrOutOfRange)
	_, err = a.SliceCols(1, 5)
	require.ErrorIs(t, err, spmat.ErrOutOfRange)
}

func TestSliceCols_GramOfWindow(t *testing.T) {
	// The normal-equation assembly path: slice an operator's column
	// window, then form its Gram matrix. Checked against the dense
	// computation.
	a := buildCSR(t, [][]float64{
		{1, -1, 0},
		{0, 1, -1},
		{-1, 0, 1},
	})
	s, err := a.SliceCols(1, 3)
	require.NoError(t, err)

	g := s.Gram()
	require.Equal(t, 2, g.Rows())
	require.Equal(t, 2, g.Cols())

	var want mat.Dense
	sd := s.ToDense()
	want.Mul(sd.T(), sd)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := g.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, want.At(i, j), v, 1e-15)
		}
	}
}

func TestCholesky_FactorReconstructs(t *testing.T) {
	a := buildCSR(t, [][]float64{
		{4, -1, 0},
		{-1, 4, -1},
		{0, -1, 4},
	})
	ch, err := spmat.NewCholesky(a)
	require.NoError(t, err)

	l := ch.L().ToDense()
	var back mat.Dense
	back.Mul(l, l.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := a.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, v, back.At(i, j), 1e-12, "entry (%d,%d)", i, j)
		}
	}
	// Lower triangular with positive diagonal.
	for i := 0; i < 3; i++ {
		require.Greater(t, l.At(i, i), 0.0)
		for j := i + 1; j < 3; j++ {
			require.Zero(t, l.At(i, j))
		}
	}
}

func TestIncompleteCholesky_FactorMatchesExactOnNoFillPattern(t *testing.T) {
	// On a no-fill pattern the zero-fill factor IS the exact factor.
	a := buildCSR(t, [][]float64{
		{4, -1, 0, 0},
		{-1, 4, -1, 0},
		{0, -1, 4, -1},
		{0, 0, -1, 4},
	})
	ic, err := spmat.NewIncompleteCholesky(a)
	require.NoError(t, err)
	ch, err := spmat.NewCholesky(a)
	require.NoError(t, err)

	il, cl := ic.L().ToDense(), ch.L().ToDense()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t, cl.At(i, j), il.At(i, j), 1e-12, "entry (%d,%d)", i, j)
		}
	}
}
