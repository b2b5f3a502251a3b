// SPDX-License-Identifier: MIT
// Package sesync — the evaluation surface: data-matrix products,
// objective value, Euclidean and Riemannian gradients, and the
// Riemannian Hessian-vector product.
//
// Contract:
//   - Every method here is a pure read of construction-time state and is
//     safe to call concurrently with every other method in this file.
//   - Points and tangent vectors are r×(n·d) in the implicit formulation
//     and r×(n+n·d) in the explicit one (the first n columns stack the
//     translations). Mis-shaped inputs are programmer errors and panic.
//   - Inputs are never mutated; every method returns fresh matrices.
//
// Complexity: one data-matrix product is O(nnz(S)·r); in the implicit
// formulation that includes one projection solve per column.

package sesync

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/spmat"
)

// checkPoint panics unless m is a correctly shaped point or tangent
// vector for the current formulation and rank.
func (p *Problem) checkPoint(method string, m *mat.Dense) {
	if m == nil {
		panic(fmt.Sprintf("sesync: %s: nil matrix", method))
	}
	rows, cols := m.Dims()
	if rows != p.r || cols != p.ambientCols() {
		panic(fmt.Sprintf("sesync: %s: got %d×%d, want %d×%d",
			method, rows, cols, p.r, p.ambientCols()))
	}
}

// mustMul applies a pre-validated sparse-dense product.
func mustMul(a *spmat.CSR, x mat.Matrix) *mat.Dense {
	y, err := a.MulDense(x)
	if err != nil {
		panic(fmt.Sprintf("sesync: data-matrix product: %v", err))
	}

	return y
}

// qProductT computes S·X for X holding a point's columns, i.e. X is the
// ambientCols×r transpose of a point or tangent vector. In the implicit
// formulation S = L(G^ρ) + TᵀΩ^(1/2)·Π·Ω^(1/2)T; in the explicit one S
// is the cached quadratic form M.
func (p *Problem) qProductT(x *mat.Dense) *mat.Dense {
	if p.form == FormulationExplicit {
		return mustMul(p.dm.quadM, x)
	}
	w := mustMul(p.dm.sqrtOmegaT, x) // Ω^(1/2)·T·X, m×r
	w = p.proj.project(w)            // Π applied columnwise
	out := mustMul(p.dm.lGrho, x)
	out.Add(out, mustMul(p.dm.tTSqrtOmega, w))

	return out
}

// DataMatrixProduct returns Y·S, the action of the data matrix on the
// rows of Y, as a fresh matrix of the same shape as Y. The product is
// matrix-free in the implicit formulation: the projection Π is applied
// through the cached factorization, never materialized.
func (p *Problem) DataMatrixProduct(y *mat.Dense) *mat.Dense {
	p.checkPoint("DataMatrixProduct", y)
	var yt mat.Dense
	yt.CloneFrom(y.T())
	var out mat.Dense
	out.CloneFrom(p.qProductT(&yt).T())

	return &out
}

// EvaluateObjective returns F(Y) = tr(S·Yᵀ·Y), the quadratic objective
// of the rank-restricted relaxation at the point Y.
func (p *Problem) EvaluateObjective(y *mat.Dense) float64 {
	p.checkPoint("EvaluateObjective", y)
	ys := p.DataMatrixProduct(y)
	var f float64
	for i := 0; i < p.r; i++ {
		f += floats.Dot(y.RawRowView(i), ys.RawRowView(i))
	}

	return f
}

// EuclideanGradient returns ∇F(Y) = 2·Y·S.
func (p *Problem) EuclideanGradient(y *mat.Dense) *mat.Dense {
	p.checkPoint("EuclideanGradient", y)
	out := p.DataMatrixProduct(y)
	out.Scale(2, out)

	return out
}

// rotCols returns the rotational column window of m: the whole matrix in
// the implicit formulation, columns [n, n+n·d) in the explicit one. The
// returned matrix aliases m.
func (p *Problem) rotCols(m *mat.Dense) *mat.Dense {
	if p.form != FormulationExplicit {
		return m
	}
	rows, _ := m.Dims()

	return m.Slice(0, rows, p.n, p.n+p.n*p.d).(*mat.Dense)
}

// TangentSpaceProjection orthogonally projects v onto the tangent space
// of the feasible set at y. Translation columns of the explicit
// formulation are unconstrained and pass through unchanged.
func (p *Problem) TangentSpaceProjection(y, v *mat.Dense) *mat.Dense {
	p.checkPoint("TangentSpaceProjection", y)
	p.checkPoint("TangentSpaceProjection", v)

	return p.projectTangent(y, v)
}

// projectTangent is TangentSpaceProjection without the shape gate, for
// internal callers that already validated their inputs.
func (p *Problem) projectTangent(y, v *mat.Dense) *mat.Dense {
	if p.form != FormulationExplicit {
		return p.mani.Proj(y, v)
	}
	var out mat.Dense
	out.CloneFrom(v)
	rot := p.mani.Proj(p.rotCols(y), p.rotCols(v))
	p.rotCols(&out).Copy(rot)

	return &out
}

// RiemannianGradientFromEuclidean converts a previously computed
// Euclidean gradient at y into the Riemannian gradient, avoiding a
// second data-matrix product when ∇F(Y) is already in hand.
func (p *Problem) RiemannianGradientFromEuclidean(y, nablaF *mat.Dense) *mat.Dense {
	p.checkPoint("RiemannianGradientFromEuclidean", y)
	p.checkPoint("RiemannianGradientFromEuclidean", nablaF)

	return p.projectTangent(y, nablaF)
}

// RiemannianGradient returns grad F(Y), the tangent-space projection of
// the Euclidean gradient at y.
func (p *Problem) RiemannianGradient(y *mat.Dense) *mat.Dense {
	p.checkPoint("RiemannianGradient", y)

	return p.projectTangent(y, p.EuclideanGradient(y))
}

// RiemannianHessianVectorProductFromEuclidean applies the Riemannian
// Hessian at y to the tangent vector dotY, reusing a previously computed
// Euclidean gradient for the curvature (Weingarten) correction. In the
// explicit formulation the correction touches rotational columns only;
// translation columns see the plain Euclidean Hessian 2·Ẏ·S.
func (p *Problem) RiemannianHessianVectorProductFromEuclidean(y, nablaF, dotY *mat.Dense) *mat.Dense {
	p.checkPoint("RiemannianHessianVectorProductFromEuclidean", y)
	p.checkPoint("RiemannianHessianVectorProductFromEuclidean", nablaF)
	p.checkPoint("RiemannianHessianVectorProductFromEuclidean", dotY)

	hd := p.DataMatrixProduct(dotY)
	hd.Scale(2, hd)

	corr := p.mani.SymBlockDiagProduct(p.rotCols(dotY), p.rotCols(y), p.rotCols(nablaF))
	hrot := p.rotCols(hd)
	hrot.Sub(hrot, corr)

	return p.projectTangent(y, hd)
}

// RiemannianHessianVectorProduct applies the Riemannian Hessian at y to
// the tangent vector dotY, computing the Euclidean gradient internally.
func (p *Problem) RiemannianHessianVectorProduct(y, dotY *mat.Dense) *mat.Dense {
	p.checkPoint("RiemannianHessianVectorProduct", y)
	p.checkPoint("RiemannianHessianVectorProduct", dotY)

	return p.RiemannianHessianVectorProductFromEuclidean(y, p.EuclideanGradient(y), dotY)
}
