// SPDX-License-Identifier: MIT
// Package spmat — structural helpers used by least-squares assembly.
//
// Contract:
//   - SliceCols copies; the result shares no storage with the receiver.
//   - Gram forms AᵀA explicitly. That is the right trade for the
//     normal-equation solves this package serves (graph-structured A with
//     bounded row support); for ill-conditioned systems callers use a QR
//     path instead of the Gram matrix.
//
// Complexity: SliceCols O(nnz); Gram O(Σ_i nnz(row_i)²).

package spmat

import "fmt"

// SliceCols returns the column range [lo, hi) of a as a fresh CSR.
// Returns ErrOutOfRange for an invalid range.
func (a *CSR) SliceCols(lo, hi int) (*CSR, error) {
	if lo < 0 || hi > a.cols || lo >= hi {
		return nil, fmt.Errorf("CSR.SliceCols(%d,%d) of %d cols: %w", lo, hi, a.cols, ErrOutOfRange)
	}
	rowPtr := make([]int, 1, a.rows+1)
	var colIdx []int
	var vals []float64
	for i := 0; i < a.rows; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			if j := a.colIdx[k]; j >= lo && j < hi {
				colIdx = append(colIdx, j-lo)
				vals = append(vals, a.vals[k])
			}
		}
		rowPtr = append(rowPtr, len(colIdx))
	}

	return &CSR{rows: a.rows, cols: hi - lo, rowPtr: rowPtr, colIdx: colIdx, vals: vals}, nil
}

// Gram returns AᵀA as a fresh CSR (symmetric positive semidefinite).
func (a *CSR) Gram() *CSR {
	b, err := NewBuilder(a.cols, a.cols)
	if err != nil {
		// Receiver shapes are validated at construction; reaching this
		// means a corrupted matrix, which is a programmer error.
		panic(fmt.Sprintf("spmat: Gram: %v", err))
	}
	for i := 0; i < a.rows; i++ {
		lo, hi := a.rowPtr[i], a.rowPtr[i+1]
		for p := lo; p < hi; p++ {
			for q := lo; q < hi; q++ {
				if v := a.vals[p] * a.vals[q]; v != 0 {
					// Pre-validated coordinates; Add cannot fail here.
					_ = b.Add(a.colIdx[p], a.colIdx[q], v)
				}
			}
		}
	}

	return b.ToCSR()
}
