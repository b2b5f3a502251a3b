// SPDX-License-Identifier: MIT

// Package sesync implements the problem object at the heart of special
// Euclidean synchronization: the rank-restricted Riemannian relaxation of
// the sparse semidefinite program that recovers n poses (rotations and
// translations in SE(d)) from m noisy relative measurements between them.
//
// Overview:
//
//   - NewProblem consumes a measurement list, assembles and caches every
//     sparse data matrix the relaxation needs (oriented incidence,
//     rotational connection Laplacian, weighted reduced incidence and
//     translational data for the translation-eliminated form, or the
//     single combined quadratic form for the joint form), and eagerly
//     builds the projection and preconditioner factorizations.
//   - The evaluator surface (EvaluateObjective, EuclideanGradient,
//     RiemannianGradient, RiemannianHessianVectorProduct, Precondition)
//     and the geometry surface (TangentSpaceProjection, Retract,
//     RandomSample) are what an external Riemannian trust-region
//     optimizer drives; all of them are pure reads of construction-time
//     state.
//   - The certification surface (LambdaBlocks, SMinusLambdaOperator,
//     CertifySolution) proves global optimality of a critical point via a
//     matrix-free minimum-eigenvalue computation, and RoundSolution and
//     ChordalInitialization close the loop from relaxed iterates to
//     feasible rigid poses and back.
//
// Formulations:
//
//   - FormulationImplicit (default) analytically eliminates the
//     translations through the Schur complement of the translational
//     weight Laplacian; iterates are r×(n·d) matrices over the Stiefel
//     product manifold, and the translation data enters through a cached
//     orthogonal-projection operator.
//   - FormulationExplicit keeps translations as free columns: iterates
//     are r×(n + n·d) matrices whose first n columns are Euclidean.
//   - FormulationRobust names the robust variant slot; it is recognized
//     by configuration but not assembled here, and construction reports
//     ErrUnsupportedFormulation.
//
// Concurrency model:
//
//   - Every factorization is built at construction (or rank-change) time,
//     never lazily inside an evaluation call. After NewProblem returns,
//     all evaluator, geometry, certification and accessor calls are
//     read-only and safe for concurrent callers; RNG-consuming calls
//     (RandomSample, CertifySolution) serialize internally on the
//     problem's RNG.
//   - SetRelaxationRank is the only mutator and requires exclusive
//     access: no concurrent call of any kind may overlap it.
//   - Y and dotY arguments are caller-owned; the problem never retains
//     them, and every operation returns freshly allocated results.
//
// Caller contract: matrix arguments must match the problem's current
// shape (r rows, n·d or n + n·d columns by formulation). Wrong shapes are
// programmer errors and panic; they are never reported as recoverable
// runtime conditions.
package sesync
