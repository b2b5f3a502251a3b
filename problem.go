// SPDX-License-Identifier: MIT
// Package sesync — the Problem type: construction, accessors, rank
// mutation.
//
// Contract:
//   - NewProblem performs ALL validation and ALL factorization work;
//     after it returns, every cached matrix and factorization is built
//     and read-only. There is no lazy state anywhere on this type.
//   - SetRelaxationRank is the only mutator: it swaps the manifold and
//     nothing else (measurement-derived matrices are functions of
//     (n, m, d), not of r), and it requires exclusive access.
//   - Factorizations are exclusively owned by the Problem and simply
//     become unreachable with it; nothing is shared out or transferred.

package sesync

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/katalvlaran/sesync/measure"
	"github.com/katalvlaran/sesync/spmat"
	"github.com/katalvlaran/sesync/stiefel"
)

// Problem is a rank-restricted Riemannian relaxation of a special
// Euclidean synchronization problem: the cached data matrices, manifold
// geometry, evaluator surface and certification surface around one
// measurement list. See the package documentation for the concurrency
// model.
type Problem struct {
	form       Formulation
	projMethod ProjectionMethod // effective method after fallback
	precon     Preconditioner   // effective strategy after fallback

	n, m, d, r int

	dm   *dataMatrices
	proj projector // implicit formulation only, nil otherwise
	mani *stiefel.Product

	jacobiInv []float64 // inverse diagonal of the data matrix
	iChol     *spmat.IncompleteCholesky

	// rngMu serializes the RNG shared by RandomSample and certification
	// start vectors, keeping those calls safe alongside concurrent
	// readers.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewProblem validates the measurement list, assembles the cached data
// matrices for the selected formulation, and eagerly builds the
// projection factorization and preconditioner. Configuration failures
// (empty list, malformed measurements, disconnected graph, rank < d,
// unsupported formulation) return an error and no object.
func NewProblem(ms []measure.RelativePoseMeasurement, opts ...Option) (*Problem, error) {
	cfg := newConfig(opts...)

	n, d, err := measure.Validate(ms)
	if err != nil {
		return nil, fmt.Errorf("NewProblem: %w", err)
	}
	r := cfg.rank
	if r == defaultRankFromDim {
		r = d
	}
	if r < d {
		return nil, fmt.Errorf("NewProblem: rank %d < dimension %d: %w", r, d, ErrInvalidRank)
	}

	dm, err := assemble(ms, n, d, cfg.form)
	if err != nil {
		return nil, fmt.Errorf("NewProblem: %w", err)
	}

	p := &Problem{
		form:       cfg.form,
		projMethod: cfg.projMethod,
		precon:     cfg.precon,
		n:          n,
		m:          len(ms),
		d:          d,
		r:          r,
		dm:         dm,
		rng:        cfg.rng,
	}

	if p.form == FormulationImplicit {
		p.proj, err = newProjector(dm, cfg.projMethod)
		if err != nil {
			return nil, fmt.Errorf("NewProblem: %w", err)
		}
		p.projMethod = p.proj.method()
	}

	if err = p.buildPreconditioner(); err != nil {
		return nil, fmt.Errorf("NewProblem: %w", err)
	}

	p.mani, err = stiefel.NewProduct(r, d, n)
	if err != nil {
		return nil, fmt.Errorf("NewProblem: %w", err)
	}

	return p, nil
}

// Formulation returns the algebraic formulation of this problem.
func (p *Problem) Formulation() Formulation { return p.form }

// NumPoses returns the number of poses n.
func (p *Problem) NumPoses() int { return p.n }

// NumMeasurements returns the number of measurements m.
func (p *Problem) NumMeasurements() int { return p.m }

// Dimension returns the group dimension d of SE(d).
func (p *Problem) Dimension() int { return p.d }

// RelaxationRank returns the current relaxation rank r.
func (p *Problem) RelaxationRank() int { return p.r }

// OrientedIncidenceMatrix returns the n×m oriented incidence matrix of
// the measurement graph (shared, read-only).
func (p *Problem) OrientedIncidenceMatrix() *spmat.CSR { return p.dm.incidence }

// Manifold returns the Stiefel-product manifold of the rotational blocks
// at the current rank (shared, read-only; replaced by SetRelaxationRank).
func (p *Problem) Manifold() *stiefel.Product { return p.mani }

// ProjectionMethod returns the effective projection solve path after any
// construction-time Cholesky→QR fallback. Explicit-form problems report
// the configured value, though they never project.
func (p *Problem) ProjectionMethod() ProjectionMethod { return p.projMethod }

// PreconditionerKind returns the effective preconditioning strategy after
// any construction-time IC(0)→Jacobi fallback.
func (p *Problem) PreconditionerKind() Preconditioner { return p.precon }

// JacobiPreconditionerDiagonal returns a copy of the cached inverse
// diagonal, or nil when the Jacobi strategy is not active.
func (p *Problem) JacobiPreconditionerDiagonal() []float64 {
	if p.jacobiInv == nil {
		return nil
	}
	out := make([]float64, len(p.jacobiInv))
	copy(out, p.jacobiInv)

	return out
}

// IncompleteCholeskyPreconditioner returns the cached IC(0) factor, or
// nil when that strategy is not active (shared, read-only).
func (p *Problem) IncompleteCholeskyPreconditioner() *spmat.IncompleteCholesky {
	return p.iChol
}

// SetRelaxationRank resizes the manifold to rank r. The measurement-
// derived matrices and factorizations are functions of (n, m, d) only
// and are deliberately NOT re-derived. Exclusive access required: no
// concurrent call of any kind may overlap this one. Returns
// ErrInvalidRank for r < d.
func (p *Problem) SetRelaxationRank(r int) error {
	if r < p.d {
		return fmt.Errorf("SetRelaxationRank(%d): dimension %d: %w", r, p.d, ErrInvalidRank)
	}
	mani, err := stiefel.NewProduct(r, p.d, p.n)
	if err != nil {
		return fmt.Errorf("SetRelaxationRank(%d): %w", r, err)
	}
	p.r = r
	p.mani = mani

	return nil
}

// ambientCols returns the column count of a point for this formulation:
// n·d for the implicit form, n + n·d for the explicit form.
func (p *Problem) ambientCols() int {
	if p.form == FormulationExplicit {
		return p.n + p.n*p.d
	}

	return p.n * p.d
}

// rotOffset returns the first rotational column of a point.
func (p *Problem) rotOffset() int {
	if p.form == FormulationExplicit {
		return p.n
	}

	return 0
}
