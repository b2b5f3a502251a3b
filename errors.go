// SPDX-License-Identifier: MIT
// Package sesync: sentinel error set.
//
// Error policy (explicit and strict):
//   - Configuration errors are detected eagerly inside NewProblem and are
//     fatal to the instance: construction fails, no partially-valid
//     object escapes.
//   - Numerical degeneracy of the projection Cholesky factorization is
//     NOT an error: it is recovered locally by switching to the QR path
//     at construction time.
//   - Eigensolver non-convergence is NOT an error either: CertifySolution
//     reports it through the certificate's Converged flag.
//   - Wrong-shaped matrix arguments are caller contract violations and
//     panic; they never surface as sentinels.

package sesync

import "errors"

// ErrInvalidRank indicates a relaxation rank below the group dimension d;
// rank-r blocks must be able to carry d orthonormal columns.
var ErrInvalidRank = errors.New("sesync: relaxation rank below group dimension")

// ErrUnsupportedFormulation indicates a formulation value the assembler
// cannot build — currently FormulationRobust (a recognized placeholder)
// and any out-of-range value.
var ErrUnsupportedFormulation = errors.New("sesync: unsupported formulation")

// ErrDisconnectedGraph indicates a measurement graph that is not weakly
// connected. Translation elimination, chordal initialization and
// translation recovery all require one connected component per problem.
var ErrDisconnectedGraph = errors.New("sesync: measurement graph is not connected")

// ErrSVDFailed indicates that the dense singular value decomposition
// inside RoundSolution did not converge. In practice this requires a
// point with non-finite entries.
var ErrSVDFailed = errors.New("sesync: singular value decomposition failed")
