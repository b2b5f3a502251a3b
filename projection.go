// SPDX-License-Identifier: MIT
// Package sesync — the orthogonal projection operator of the implicit
// formulation.
//
// The operator applies Π = I − Ω^(1/2)·Aredᵀ·(Ared·Ω·Aredᵀ)⁻¹·Ared·Ω^(1/2),
// the orthogonal projector onto the complement of the column space of the
// reduced weighted incidence matrix. It is the algebraic residue of
// eliminating the translations.
//
// Contract:
//   - The solve path is fixed ONCE, at construction, from a factorization
//     diagnostic — never re-decided per call. A Problem therefore always
//     holds exactly one projector variant bundling precisely the
//     factorization it needs (no flag can disagree with the cached
//     state).
//   - Cholesky path: one multi-column solve per application.
//   - QR path: the underlying least-squares solve takes a single
//     right-hand side, so multi-column inputs iterate column by column.
//   - project is a pure read of the cached factorization.

package sesync

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/spmat"
)

// PiProduct applies the projection Π to a dense block with one row per
// measurement (implicit formulation only). Calling it on an explicit-form
// problem, or with a row count other than m, is a programmer error and
// panics.
func (p *Problem) PiProduct(x *mat.Dense) *mat.Dense {
	if p.proj == nil {
		panic("sesync: PiProduct: no projection operator in the " + p.form.String() + " formulation")
	}
	rows, _ := x.Dims()
	if rows != p.m {
		panic(fmt.Sprintf("sesync: PiProduct: got %d rows, want %d", rows, p.m))
	}

	return p.proj.project(x)
}

// projector is the closed variant set for the projection solve path.
type projector interface {
	// project returns Π·X for an m-row dense X.
	project(x *mat.Dense) *mat.Dense
	// method identifies the variant for the Problem accessor.
	method() ProjectionMethod
}

// newProjector builds the projector for the requested method. With
// ProjectionCholesky it first factorizes the reduced Gram matrix and
// falls back to QR when the factorization reports numerical rank
// deficiency; any other factorization failure is propagated.
func newProjector(dm *dataMatrices, requested ProjectionMethod) (projector, error) {
	if requested == ProjectionCholesky {
		chol, err := spmat.NewCholesky(dm.redLaplacian)
		if err == nil {
			return &cholProjector{chol: chol, w: dm.aredSqrtOmega, wt: dm.sqrtOmegaAredT}, nil
		}
		if !errors.Is(err, spmat.ErrNotPositiveDefinite) {
			return nil, fmt.Errorf("newProjector: %w", err)
		}
		// Degeneracy diagnostic: recover locally on the QR path.
	}

	qr := &mat.QR{}
	qr.Factorize(dm.sqrtOmegaAredT.ToDense())

	return &qrProjector{qr: qr, wt: dm.sqrtOmegaAredT}, nil
}

// cholProjector bundles the Cholesky factor of Ared·Ω·Aredᵀ with the
// weighted incidence pair it projects through.
type cholProjector struct {
	chol *spmat.Cholesky
	w    *spmat.CSR // Ared·Ω^(1/2), (n−1)×m
	wt   *spmat.CSR // m×(n−1)
}

func (p *cholProjector) method() ProjectionMethod { return ProjectionCholesky }

func (p *cholProjector) project(x *mat.Dense) *mat.Dense {
	// Π·X = X − Ω^(1/2)Aredᵀ · (AredΩAredᵀ)⁻¹ · AredΩ^(1/2) · X,
	// with every column solved in the one Cholesky call.
	wx, err := p.w.MulDense(x)
	if err != nil {
		panic(fmt.Sprintf("sesync: project: %v", err))
	}
	sol, err := p.chol.Solve(wx)
	if err != nil {
		panic(fmt.Sprintf("sesync: project: %v", err))
	}
	corr, err := p.wt.MulDense(sol)
	if err != nil {
		panic(fmt.Sprintf("sesync: project: %v", err))
	}
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Sub(x, corr)

	return out
}

// qrProjector bundles the QR factorization of the reduced weighted
// incidence transpose. Its least-squares solve accepts one column at a
// time, hence the per-column loop.
type qrProjector struct {
	qr *mat.QR
	wt *spmat.CSR // m×(n−1)
}

func (p *qrProjector) method() ProjectionMethod { return ProjectionQR }

func (p *qrProjector) project(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	nred := p.wt.Cols()
	out := mat.NewDense(rows, cols, nil)
	col := mat.NewVecDense(rows, nil)
	var z mat.VecDense
	zs := make([]float64, nred)
	for c := 0; c < cols; c++ {
		for i := 0; i < rows; i++ {
			col.SetVec(i, x.At(i, c))
		}
		// z = argmin ‖Ω^(1/2)Aredᵀ·z − x_c‖; the residual of that fit is
		// exactly Π·x_c.
		if err := p.qr.SolveVecTo(&z, false, col); err != nil {
			panic(fmt.Sprintf("sesync: project: %v", err))
		}
		for i := 0; i < nred; i++ {
			zs[i] = z.AtVec(i)
		}
		fit, err := p.wt.MulVec(zs)
		if err != nil {
			panic(fmt.Sprintf("sesync: project: %v", err))
		}
		for i := 0; i < rows; i++ {
			out.Set(i, c, x.At(i, c)-fit[i])
		}
	}

	return out
}
