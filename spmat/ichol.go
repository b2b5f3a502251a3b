// SPDX-License-Identifier: MIT
// Package spmat — zero-fill incomplete Cholesky factorization IC(0).
//
// Contract:
//   - The factor keeps exactly the sparsity pattern of tril(A); no fill-in
//     is ever introduced, which keeps the approximate solve cost
//     proportional to nnz(A).
//   - A non-positive pivot aborts with ErrBreakdown at construction time.
//     The sesync preconditioner treats that as "this strategy is
//     unavailable" and falls back, so no later Precondition call can fail.
//
// Complexity: O(Σ_i nnz(row_i)²) factorization; O(nnz · k) per solve.

package spmat

import (
	"fmt"
	"math"
)

// IncompleteCholesky holds the IC(0) approximate factor of a symmetric
// positive definite matrix. Immutable after construction.
type IncompleteCholesky struct {
	tri triFactor
}

// NewIncompleteCholesky computes the IC(0) factorization of a.
// Returns ErrNilMatrix, ErrNonSquare, or ErrBreakdown.
func NewIncompleteCholesky(a *CSR) (*IncompleteCholesky, error) {
	if a == nil {
		return nil, fmt.Errorf("NewIncompleteCholesky: %w", ErrNilMatrix)
	}
	if a.rows != a.cols {
		return nil, fmt.Errorf("NewIncompleteCholesky: %dx%d: %w", a.rows, a.cols, ErrNonSquare)
	}
	n := a.rows

	// Gather the lower-triangle pattern per row, columns ascending.
	// The diagonal entry is synthesized when absent so the pivot test can
	// report breakdown instead of indexing past the row.
	cols := make([][]int, n)
	vals := make([][]float64, n)
	for i := 0; i < n; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			if j := a.colIdx[k]; j <= i {
				cols[i] = append(cols[i], j)
				vals[i] = append(vals[i], a.vals[k])
			}
		}
		if len(cols[i]) == 0 || cols[i][len(cols[i])-1] != i {
			cols[i] = append(cols[i], i)
			vals[i] = append(vals[i], 0)
		}
	}

	// Row-wise factorization restricted to the tril(A) pattern.
	for i := 0; i < n; i++ {
		for t := 0; t < len(cols[i]); t++ {
			j := cols[i][t]
			// Subtract the sparse dot of rows i and j over columns < j.
			// Entries of row i before position t are already final.
			s := vals[i][t] - sparseRowDot(cols[i][:t], vals[i][:t], cols[j], vals[j], j)
			if j < i {
				// Off-diagonal: divide by the pivot of row j (its last entry).
				vals[i][t] = s / vals[j][len(vals[j])-1]
				continue
			}
			// Diagonal pivot of row i.
			if s <= 0 {
				return nil, fmt.Errorf("NewIncompleteCholesky: pivot %d: %w", i, ErrBreakdown)
			}
			vals[i][t] = math.Sqrt(s)
		}
	}

	b, err := NewBuilder(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for t := range cols[i] {
			if err = b.Add(i, cols[i][t], vals[i][t]); err != nil {
				return nil, err
			}
		}
	}
	l := b.ToCSR()

	return &IncompleteCholesky{tri: triFactor{n: n, l: l, lt: l.Transpose()}}, nil
}

// sparseRowDot returns Σ la[k]·lb[k] over shared columns strictly below
// limit, merging two column-sorted rows.
func sparseRowDot(ca []int, va []float64, cb []int, vb []float64, limit int) float64 {
	s := 0.0
	p, q := 0, 0
	for p < len(ca) && q < len(cb) {
		if ca[p] >= limit || cb[q] >= limit {
			break
		}
		switch {
		case ca[p] < cb[q]:
			p++
		case ca[p] > cb[q]:
			q++
		default:
			s += va[p] * vb[q]
			p++
			q++
		}
	}

	return s
}

// SolveInPlace overwrites x with the approximate solve (L·Lᵀ)⁻¹·x.
// Panics only on a wrong-length slice via the substitution kernels'
// indexing; callers pass caller-owned storage of the factor's order.
func (ic *IncompleteCholesky) SolveInPlace(x []float64) error {
	if len(x) != ic.tri.n {
		return fmt.Errorf("SolveInPlace: rhs length %d, want %d: %w", len(x), ic.tri.n, ErrDimensionMismatch)
	}
	ic.tri.solveVecInPlace(x)

	return nil
}

// SolveVec returns the approximate solve against b.
func (ic *IncompleteCholesky) SolveVec(b []float64) ([]float64, error) {
	return ic.tri.solveVec(b)
}

// Order returns the order n of the factored matrix.
func (ic *IncompleteCholesky) Order() int { return ic.tri.n }

// L returns the incomplete lower factor (shared, read-only).
func (ic *IncompleteCholesky) L() *CSR { return ic.tri.l }
