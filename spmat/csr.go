// SPDX-License-Identifier: MIT
// Package spmat — triplet Builder and immutable CSR storage.
//
// Contract:
//   - Builder.Add accumulates duplicates by summation (Laplacian assembly
//     semantics); ToCSR compiles a column-sorted, deterministic layout.
//   - CSR is immutable after compilation; all products allocate fresh
//     outputs and never alias caller storage.
//
// Complexity:
//   - ToCSR: O(nnz log nnz) for the per-row column sorts.
//   - MulDense: O(nnz · k) for a k-column right-hand side.
//   - Transpose: O(nnz + rows + cols), counting-sort style.

package spmat

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Builder accumulates triplets for a rows×cols sparse matrix.
// The zero value is not usable; construct via NewBuilder.
type Builder struct {
	rows, cols int
	is, js     []int
	vs         []float64
}

// NewBuilder returns a triplet accumulator for a rows×cols matrix.
// Returns ErrBadShape when either dimension is non-positive.
func NewBuilder(rows, cols int) (*Builder, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewBuilder(%d,%d): %w", rows, cols, ErrBadShape)
	}

	return &Builder{rows: rows, cols: cols}, nil
}

// Add records the triplet (i, j, v). Duplicate coordinates are merged by
// summation when the matrix is compiled. Returns ErrOutOfRange for
// indices outside the declared shape.
func (b *Builder) Add(i, j int, v float64) error {
	if i < 0 || i >= b.rows || j < 0 || j >= b.cols {
		return fmt.Errorf("Builder.Add(%d,%d): %w", i, j, ErrOutOfRange)
	}
	b.is = append(b.is, i)
	b.js = append(b.js, j)
	b.vs = append(b.vs, v)

	return nil
}

// AddBlock records a dense d1×d2 block with top-left corner (i, j),
// scaled by alpha. Convenience for connection-Laplacian assembly.
func (b *Builder) AddBlock(i, j int, block mat.Matrix, alpha float64) error {
	d1, d2 := block.Dims()
	for r := 0; r < d1; r++ {
		for c := 0; c < d2; c++ {
			if v := alpha * block.At(r, c); v != 0 {
				if err := b.Add(i+r, j+c, v); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// ToCSR compiles the accumulated triplets into an immutable CSR matrix.
// Rows are column-sorted; duplicates are summed; exact-zero sums are kept
// (pattern stability matters more than a few stored zeros here).
func (b *Builder) ToCSR() *CSR {
	// Count entries per row, then bucket triplet indices by row.
	counts := make([]int, b.rows+1)
	for _, i := range b.is {
		counts[i+1]++
	}
	for i := 0; i < b.rows; i++ {
		counts[i+1] += counts[i]
	}
	order := make([]int, len(b.is))
	next := make([]int, b.rows)
	copy(next, counts[:b.rows])
	for t, i := range b.is {
		order[next[i]] = t
		next[i]++
	}

	rowPtr := make([]int, 1, b.rows+1)
	var colIdx []int
	var vals []float64
	for i := 0; i < b.rows; i++ {
		row := order[counts[i]:counts[i+1]]
		// Stable column order inside the row keeps layouts deterministic.
		sort.SliceStable(row, func(a, c int) bool { return b.js[row[a]] < b.js[row[c]] })
		for t := 0; t < len(row); t++ {
			j := b.js[row[t]]
			v := b.vs[row[t]]
			// Merge duplicates by summation.
			if len(colIdx) > rowPtr[i] && colIdx[len(colIdx)-1] == j {
				vals[len(vals)-1] += v
				continue
			}
			colIdx = append(colIdx, j)
			vals = append(vals, v)
		}
		rowPtr = append(rowPtr, len(colIdx))
	}

	return &CSR{rows: b.rows, cols: b.cols, rowPtr: rowPtr, colIdx: colIdx, vals: vals}
}

// CSR is an immutable compressed sparse row matrix with column-sorted rows.
type CSR struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	vals       []float64
}

// Rows returns the number of rows.
func (a *CSR) Rows() int { return a.rows }

// Cols returns the number of columns.
func (a *CSR) Cols() int { return a.cols }

// NNZ returns the number of stored entries.
func (a *CSR) NNZ() int { return len(a.vals) }

// At returns the entry at (i, j), zero when not stored.
// Returns ErrOutOfRange for indices outside the shape.
func (a *CSR) At(i, j int) (float64, error) {
	if i < 0 || i >= a.rows || j < 0 || j >= a.cols {
		return 0, fmt.Errorf("CSR.At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	lo, hi := a.rowPtr[i], a.rowPtr[i+1]
	// Binary search inside the column-sorted row.
	k := sort.SearchInts(a.colIdx[lo:hi], j) + lo
	if k < hi && a.colIdx[k] == j {
		return a.vals[k], nil
	}

	return 0, nil
}

// MulDense returns A·X as a fresh dense matrix.
// Returns ErrDimensionMismatch when A.Cols() != rows(X).
func (a *CSR) MulDense(x mat.Matrix) (*mat.Dense, error) {
	xr, xc := x.Dims()
	if a.cols != xr {
		return nil, fmt.Errorf("CSR.MulDense: %dx%d by %dx%d: %w", a.rows, a.cols, xr, xc, ErrDimensionMismatch)
	}
	out := mat.NewDense(a.rows, xc, nil)
	for i := 0; i < a.rows; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			v := a.vals[k]
			j := a.colIdx[k]
			for c := 0; c < xc; c++ {
				out.Set(i, c, out.At(i, c)+v*x.At(j, c))
			}
		}
	}

	return out, nil
}

// MulVec returns A·x as a fresh slice.
// Returns ErrDimensionMismatch when A.Cols() != len(x).
func (a *CSR) MulVec(x []float64) ([]float64, error) {
	if a.cols != len(x) {
		return nil, fmt.Errorf("CSR.MulVec: %dx%d by %d: %w", a.rows, a.cols, len(x), ErrDimensionMismatch)
	}
	out := make([]float64, a.rows)
	for i := 0; i < a.rows; i++ {
		s := 0.0
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			s += a.vals[k] * x[a.colIdx[k]]
		}
		out[i] = s
	}

	return out, nil
}

// Transpose returns Aᵀ as a fresh CSR (counting-sort over columns, so the
// result is column-sorted as well).
func (a *CSR) Transpose() *CSR {
	counts := make([]int, a.cols+1)
	for _, j := range a.colIdx {
		counts[j+1]++
	}
	for j := 0; j < a.cols; j++ {
		counts[j+1] += counts[j]
	}
	rowPtr := make([]int, a.cols+1)
	copy(rowPtr, counts)
	colIdx := make([]int, len(a.colIdx))
	vals := make([]float64, len(a.vals))
	next := make([]int, a.cols)
	copy(next, counts[:a.cols])
	for i := 0; i < a.rows; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			j := a.colIdx[k]
			colIdx[next[j]] = i
			vals[next[j]] = a.vals[k]
			next[j]++
		}
	}

	return &CSR{rows: a.cols, cols: a.rows, rowPtr: rowPtr, colIdx: colIdx, vals: vals}
}

// Diagonal returns the main diagonal as a fresh slice of length
// min(rows, cols). Missing entries read as zero.
func (a *CSR) Diagonal() []float64 {
	n := a.rows
	if a.cols < n {
		n = a.cols
	}
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := a.At(i, i)
		d[i] = v
	}

	return d
}

// ToDense materializes the matrix as a fresh *mat.Dense.
func (a *CSR) ToDense() *mat.Dense {
	out := mat.NewDense(a.rows, a.cols, nil)
	for i := 0; i < a.rows; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			out.Set(i, a.colIdx[k], a.vals[k])
		}
	}

	return out
}
