// SPDX-License-Identifier: MIT
// Package sesync — closed enumerations for formulation and strategy
// selection.
//
// Contract:
//   - The enums below are the ONLY values accepted by the corresponding
//     options; out-of-range values are rejected at construction, so a
//     built Problem always holds a coherent (formulation, matrices,
//     solve-path) combination and no flag can disagree with the cached
//     matrix set.

package sesync

// Formulation selects which algebraic form of the synchronization
// relaxation the problem assembles and evaluates.
type Formulation int

const (
	// FormulationImplicit is the translation-eliminated (Schur
	// complement) form: iterates carry rotations only and the
	// translational data acts through the cached projection operator.
	// This is the constructor default.
	FormulationImplicit Formulation = iota
	// FormulationExplicit is the joint form over translations and
	// rotations, parameterized by the single combined quadratic form.
	FormulationExplicit
	// FormulationRobust names the robust-kernel variant slot. It is a
	// recognized configuration value whose assembly is not provided
	// here; NewProblem reports ErrUnsupportedFormulation.
	FormulationRobust
)

// String implements fmt.Stringer.
func (f Formulation) String() string {
	switch f {
	case FormulationImplicit:
		return "implicit"
	case FormulationExplicit:
		return "explicit"
	case FormulationRobust:
		return "robust"
	default:
		return "unknown"
	}
}

// ProjectionMethod selects the factorization backing the orthogonal
// projection operator of the implicit formulation.
type ProjectionMethod int

const (
	// ProjectionCholesky prefers a sparse Cholesky factorization of the
	// reduced weighted incidence Gram matrix and falls back to QR when
	// that factorization fails its construction-time diagnostic.
	ProjectionCholesky ProjectionMethod = iota
	// ProjectionQR always uses the QR factorization of the reduced
	// weighted incidence matrix (one right-hand side per solve).
	ProjectionQR
)

// String implements fmt.Stringer.
func (p ProjectionMethod) String() string {
	switch p {
	case ProjectionCholesky:
		return "cholesky"
	case ProjectionQR:
		return "qr"
	default:
		return "unknown"
	}
}

// Preconditioner selects the approximate inverse applied by Precondition.
type Preconditioner int

const (
	// PreconditionerNone applies the identity.
	PreconditionerNone Preconditioner = iota
	// PreconditionerJacobi applies the cached inverse diagonal of the
	// data matrix.
	PreconditionerJacobi
	// PreconditionerIncompleteCholesky applies a cached IC(0) approximate
	// solve. If the factorization breaks down at construction the
	// problem falls back to Jacobi (visible via PreconditionerKind).
	PreconditionerIncompleteCholesky
)

// String implements fmt.Stringer.
func (p Preconditioner) String() string {
	switch p {
	case PreconditionerNone:
		return "none"
	case PreconditionerJacobi:
		return "jacobi"
	case PreconditionerIncompleteCholesky:
		return "incomplete-cholesky"
	default:
		return "unknown"
	}
}
