// SPDX-License-Identifier: MIT
// Package spmat — sparse Cholesky factorization A = L·Lᵀ.
//
// Contract:
//   - Input must be square and symmetric positive definite; a non-positive
//     pivot aborts with ErrNotPositiveDefinite (no partial factor escapes).
//   - Solve accepts a dense multi-column right-hand side and solves all
//     columns in one call (the property the sesync projection operator
//     relies on to distinguish the Cholesky path from the QR path).
//
// Implementation note: the numeric factorization runs over a dense working
// copy of the lower triangle (simple and cache-friendly for the modest
// Gram-matrix orders this package serves); the factor itself is compressed
// back to CSR so the substitution solves run on stored nonzeros only.
//
// Complexity: O(n³/6) factorization on the dense working copy;
// O(nnz(L) · k) per k-column solve.

package spmat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cholesky holds the lower factor L (and its transpose) of a symmetric
// positive definite matrix. Immutable after construction.
type Cholesky struct {
	tri triFactor
}

// NewCholesky factorizes the symmetric positive definite matrix a.
// Returns ErrNilMatrix, ErrNonSquare, or ErrNotPositiveDefinite.
func NewCholesky(a *CSR) (*Cholesky, error) {
	if a == nil {
		return nil, fmt.Errorf("NewCholesky: %w", ErrNilMatrix)
	}
	if a.rows != a.cols {
		return nil, fmt.Errorf("NewCholesky: %dx%d: %w", a.rows, a.cols, ErrNonSquare)
	}
	n := a.rows

	// Dense working copy of the lower triangle, row-major.
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, i+1)
	}
	for i := 0; i < n; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			if j := a.colIdx[k]; j <= i {
				w[i][j] = a.vals[k]
			}
		}
	}

	// Standard left-looking factorization over the working copy.
	for j := 0; j < n; j++ {
		s := w[j][j]
		for k := 0; k < j; k++ {
			s -= w[j][k] * w[j][k]
		}
		if s <= 0 {
			return nil, fmt.Errorf("NewCholesky: pivot %d: %w", j, ErrNotPositiveDefinite)
		}
		w[j][j] = math.Sqrt(s)
		for i := j + 1; i < n; i++ {
			t := w[i][j]
			for k := 0; k < j; k++ {
				t -= w[i][k] * w[j][k]
			}
			w[i][j] = t / w[j][j]
		}
	}

	// Compress the factor: stored nonzeros only, diagonal always kept.
	b, err := NewBuilder(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			if w[i][j] != 0 || i == j {
				if err = b.Add(i, j, w[i][j]); err != nil {
					return nil, err
				}
			}
		}
	}
	l := b.ToCSR()

	return &Cholesky{tri: triFactor{n: n, l: l, lt: l.Transpose()}}, nil
}

// Solve returns X with A·X = B for a dense (possibly multi-column) B.
// All columns are solved in a single call.
func (c *Cholesky) Solve(bm mat.Matrix) (*mat.Dense, error) {
	return c.tri.solve(bm)
}

// SolveVec returns x with A·x = b.
func (c *Cholesky) SolveVec(b []float64) ([]float64, error) {
	return c.tri.solveVec(b)
}

// L returns the lower factor. The caller must not assume ownership beyond
// read access; the factor is shared with the receiver.
func (c *Cholesky) L() *CSR { return c.tri.l }

// triFactor bundles a lower-triangular CSR factor with its transpose and
// implements the forward/backward substitution pair shared by the full
// and incomplete factorizations.
type triFactor struct {
	n  int
	l  *CSR // lower triangular, rows column-sorted, diagonal last in row
	lt *CSR // upper triangular, rows column-sorted, diagonal first in row
}

// solveVecInPlace overwrites x with (L·Lᵀ)⁻¹·x.
func (t *triFactor) solveVecInPlace(x []float64) {
	// Forward: L·y = x. Row i of L holds columns <= i; the diagonal is the
	// last stored entry because rows are column-sorted.
	for i := 0; i < t.n; i++ {
		lo, hi := t.l.rowPtr[i], t.l.rowPtr[i+1]
		s := x[i]
		for k := lo; k < hi-1; k++ {
			s -= t.l.vals[k] * x[t.l.colIdx[k]]
		}
		x[i] = s / t.l.vals[hi-1]
	}
	// Backward: Lᵀ·z = y. Row i of Lᵀ holds columns >= i; diagonal first.
	for i := t.n - 1; i >= 0; i-- {
		lo, hi := t.lt.rowPtr[i], t.lt.rowPtr[i+1]
		s := x[i]
		for k := lo + 1; k < hi; k++ {
			s -= t.lt.vals[k] * x[t.lt.colIdx[k]]
		}
		x[i] = s / t.lt.vals[lo]
	}
}

func (t *triFactor) solveVec(b []float64) ([]float64, error) {
	if len(b) != t.n {
		return nil, fmt.Errorf("SolveVec: rhs length %d, want %d: %w", len(b), t.n, ErrDimensionMismatch)
	}
	x := make([]float64, t.n)
	copy(x, b)
	t.solveVecInPlace(x)

	return x, nil
}

func (t *triFactor) solve(bm mat.Matrix) (*mat.Dense, error) {
	br, bc := bm.Dims()
	if br != t.n {
		return nil, fmt.Errorf("Solve: rhs is %dx%d, want %d rows: %w", br, bc, t.n, ErrDimensionMismatch)
	}
	out := mat.NewDense(br, bc, nil)
	col := make([]float64, t.n)
	for c := 0; c < bc; c++ {
		for i := 0; i < t.n; i++ {
			col[i] = bm.At(i, c)
		}
		t.solveVecInPlace(col)
		out.SetCol(c, col)
	}

	return out, nil
}
