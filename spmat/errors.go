// SPDX-License-Identifier: MIT
// Package spmat: sentinel error set.
//
// Error policy (explicit and strict):
//   - Only package-level sentinel variables are exposed.
//   - Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   - Implementations attach context with fmt.Errorf("Method: %w", ErrX);
//     sentinels themselves carry no parameters.
//   - No function in this package panics on user-triggered conditions.

package spmat

import "errors"

// ErrBadShape is returned when a requested shape is invalid (rows <= 0 or
// cols <= 0). Constructors validate before allocating.
var ErrBadShape = errors.New("spmat: invalid shape")

// ErrOutOfRange indicates a row or column index outside the declared
// bounds of the matrix being built or read.
var ErrOutOfRange = errors.New("spmat: index out of range")

// ErrDimensionMismatch indicates incompatible dimensions between operands,
// e.g. MulDense where a.Cols() != x.Rows(), or a solve RHS of wrong length.
var ErrDimensionMismatch = errors.New("spmat: dimension mismatch")

// ErrNonSquare signals that a square matrix was required but the input
// wasn't (Cholesky, IC(0), Diagonal on factorization inputs).
var ErrNonSquare = errors.New("spmat: matrix is not square")

// ErrNotPositiveDefinite is returned by the Cholesky factorization when a
// pivot is not strictly positive. For the sesync projection operator this
// is the construction-time diagnostic that selects the QR solve path.
var ErrNotPositiveDefinite = errors.New("spmat: matrix is not positive definite")

// ErrBreakdown is returned by the IC(0) factorization when a pivot is not
// strictly positive. The breakdown fails construction of the
// preconditioner, never a later solve call.
var ErrBreakdown = errors.New("spmat: incomplete factorization breakdown")

// ErrNilMatrix indicates that a nil *CSR (receiver or argument) was used.
var ErrNilMatrix = errors.New("spmat: nil matrix")
