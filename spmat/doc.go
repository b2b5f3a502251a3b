// SPDX-License-Identifier: MIT

// Package spmat provides the sparse linear-algebra primitives used by the
// sesync problem object: triplet accumulation, compressed sparse row (CSR)
// storage, a sparse Cholesky factorization, and a zero-fill incomplete
// Cholesky (IC(0)) approximate factorization.
//
// Overview:
//
//   - Builder accumulates (row, col, value) triplets in any order, merging
//     duplicates by summation — the natural form for graph-Laplacian and
//     incidence-matrix assembly — and compiles them into an immutable CSR.
//   - CSR is a read-only compressed sparse row matrix with deterministic,
//     column-sorted rows. It multiplies against dense gonum matrices and
//     vectors, transposes, and exposes its diagonal.
//   - Cholesky computes A = L·Lᵀ for symmetric positive definite A and
//     solves against dense multi-column right-hand sides in one call.
//   - IncompleteCholesky computes the IC(0) approximation (the factor keeps
//     exactly the sparsity pattern of tril(A)) for use as a preconditioner.
//
// Error handling (sentinel errors, matched via errors.Is):
//
//   - ErrBadShape: non-positive dimensions at construction.
//   - ErrOutOfRange: triplet or accessor index outside the declared shape.
//   - ErrDimensionMismatch: incompatible operand shapes.
//   - ErrNonSquare: a square matrix was required.
//   - ErrNotPositiveDefinite: Cholesky met a non-positive pivot. Callers
//     treat this as the diagnostic that the matrix is numerically rank
//     deficient and switch to a QR-based solve path.
//   - ErrBreakdown: IC(0) met a non-positive pivot; the preconditioner
//     constructor fails rather than producing an unusable factor.
//
// Determinism:
//
//   - Builder compilation sorts each row by column index; duplicate
//     triplets merge by summation in a fixed order. Identical input
//     triplet streams always produce identical CSR layouts.
//
// Concurrency:
//
//   - CSR, Cholesky, and IncompleteCholesky are immutable after
//     construction and safe for concurrent readers.
package spmat
