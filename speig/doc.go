// SPDX-License-Identifier: MIT

// Package speig provides a matrix-free Lanczos driver for extremal
// eigenpairs of large symmetric linear operators.
//
// Overview:
//
//   - The operator is abstracted behind the Op interface (dimension plus a
//     y = A·x product); the driver never materializes A. This is the shape
//     required by certification workloads, where A = S − Λ + σI exists
//     only as a composition of sparse products and cached solves.
//   - LargestMagnitude estimates the eigenvalue of largest absolute value
//     and its eigenvector, using Lanczos iterations with full
//     reorthogonalization and simple restarts: the Ritz pairs of the
//     projected tridiagonal matrix are extracted with gonum's symmetric
//     eigendecomposition, and the best Ritz vector seeds the next restart
//     until the residual bound ‖A·x − θ·x‖ ≤ tol·max(|θ|, 1) holds or the
//     matrix-vector budget is exhausted.
//
// Convergence semantics (deliberate, per the certification contract):
//
//   - Non-convergence is NOT an error. The driver always returns the
//     best-effort Ritz pair found so far together with Converged=false;
//     interpreting an inconclusive certificate belongs to the caller.
//   - Errors are reserved for malformed inputs (nil or zero-dimensional
//     operators, an initial vector of the wrong length).
//
// Determinism:
//
//   - The starting vector is drawn from the configured RNG (WithSeed /
//     WithRand) or supplied directly via WithInitialVector; a fixed seed
//     reproduces the iteration exactly.
package speig
