// SPDX-License-Identifier: MIT
// Package sesync — preconditioning for truncated-Newton inner solves.
//
// Contract:
//   - The preconditioner approximates the inverse of the data matrix
//     restricted to its block-diagonal (Jacobi) or its sparsity pattern
//     (incomplete Cholesky), then re-projects to the tangent space so the
//     output is always a valid tangent vector.
//   - Both strategies factor at construction time; Precondition itself is
//     a pure read. An IC(0) breakdown at construction degrades to Jacobi
//     rather than failing, and the effective strategy is visible through
//     PreconditionerKind.

package sesync

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/spmat"
)

// preconTarget returns the sparse matrix the preconditioner approximates:
// the rotational connection Laplacian in the implicit formulation, the
// full quadratic form in the explicit one. Its order matches the ambient
// column count of a point in either case.
func (p *Problem) preconTarget() *spmat.CSR {
	if p.form == FormulationExplicit {
		return p.dm.quadM
	}

	return p.dm.lGrho
}

// buildPreconditioner materializes the configured strategy eagerly.
func (p *Problem) buildPreconditioner() error {
	switch p.precon {
	case PreconditionerNone:
		return nil
	case PreconditionerJacobi:
		return p.buildJacobi()
	case PreconditionerIncompleteCholesky:
		ic, err := spmat.NewIncompleteCholesky(p.preconTarget())
		if errors.Is(err, spmat.ErrBreakdown) {
			// The zero-fill factor hit a non-positive pivot; the Jacobi
			// diagonal cannot, so degrade instead of failing.
			p.precon = PreconditionerJacobi

			return p.buildJacobi()
		}
		if err != nil {
			return fmt.Errorf("preconditioner: %w", err)
		}
		p.iChol = ic

		return nil
	default:
		panic(fmt.Sprintf("sesync: unknown preconditioner %d", int(p.precon)))
	}
}

func (p *Problem) buildJacobi() error {
	diag := p.preconTarget().Diagonal()
	inv := make([]float64, len(diag))
	for i, v := range diag {
		if v <= 0 {
			return fmt.Errorf("preconditioner: diagonal entry %d is %g: %w",
				i, v, spmat.ErrNotPositiveDefinite)
		}
		inv[i] = 1 / v
	}
	p.jacobiInv = inv

	return nil
}

// Precondition applies the configured preconditioner to the tangent
// vector v at the point y and re-projects the result to the tangent
// space. With PreconditionerNone the call reduces to the projection
// alone. Safe for concurrent use.
func (p *Problem) Precondition(y, v *mat.Dense) *mat.Dense {
	p.checkPoint("Precondition", y)
	p.checkPoint("Precondition", v)

	var out mat.Dense
	out.CloneFrom(v)
	switch p.precon {
	case PreconditionerJacobi:
		for i := 0; i < p.r; i++ {
			row := out.RawRowView(i)
			for j, w := range p.jacobiInv {
				row[j] *= w
			}
		}
	case PreconditionerIncompleteCholesky:
		for i := 0; i < p.r; i++ {
			if err := p.iChol.SolveInPlace(out.RawRowView(i)); err != nil {
				panic(fmt.Sprintf("sesync: Precondition: %v", err))
			}
		}
	}

	return p.projectTangent(y, &out)
}
