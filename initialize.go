// SPDX-License-Identifier: MIT
// Package sesync — entering and leaving the relaxation: the chordal
// initialization that produces a high-quality starting point, and the
// rounding procedure that maps a relaxed solution back to SE(d).
//
// Gauge convention: both the chordal linear solve and translation
// recovery pin pose 0 (R_0 = I, t_0 = 0) rather than solving a min-norm
// system; solutions differ from any other gauge only by a global rigid
// transform.

package sesync

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/spmat"
	"github.com/katalvlaran/sesync/stiefel"
)

// mustSliceCols slices a pre-validated column window.
func mustSliceCols(a *spmat.CSR, lo, hi int) *spmat.CSR {
	out, err := a.SliceCols(lo, hi)
	if err != nil {
		panic(fmt.Sprintf("sesync: slice cols [%d,%d): %v", lo, hi, err))
	}

	return out
}

// mustMulVec applies a pre-validated sparse matrix-vector product.
func mustMulVec(a *spmat.CSR, x []float64) []float64 {
	y, err := a.MulVec(x)
	if err != nil {
		panic(fmt.Sprintf("sesync: matrix-vector product: %v", err))
	}

	return y
}

// chordalRotations solves the anchored chordal relaxation for the
// rotational states: pose 0 is fixed at the identity, the remaining
// vectorized rotations solve the normal equations of the rotational
// residual operator, and each d×d block is projected to SO(d). The
// result is the d×(n·d) horizontal stack R_0 | R_1 | … | R_{n−1}.
func (p *Problem) chordalRotations() (*mat.Dense, error) {
	d, n := p.d, p.n
	d2 := d * d

	// Right-hand side: the residual contribution of the anchored block,
	// −B3redᵀ·(B3[:, :d²]·vec(I_d)).
	vecID := make([]float64, d2)
	for k := 0; k < d; k++ {
		vecID[d*k+k] = 1
	}
	cvec := mustMulVec(mustSliceCols(p.dm.b3, 0, d2), vecID)

	red := mustSliceCols(p.dm.b3, d2, d2*n)
	rhs := mustMulVec(red.Transpose(), cvec)
	floats.Scale(-1, rhs)

	chol, err := spmat.NewCholesky(red.Gram())
	if err != nil {
		return nil, fmt.Errorf("chordal rotations: %w", err)
	}
	x, err := chol.SolveVec(rhs)
	if err != nil {
		return nil, fmt.Errorf("chordal rotations: %w", err)
	}

	rot := mat.NewDense(d, n*d, nil)
	for k := 0; k < d; k++ {
		rot.Set(k, k, 1) // anchored pose
	}
	block := mat.NewDense(d, d, nil)
	for i := 1; i < n; i++ {
		// vec is column-major: entry (r,c) of block i sits at d²(i−1)+d·c+r.
		for c := 0; c < d; c++ {
			for r := 0; r < d; r++ {
				block.Set(r, c, x[d2*(i-1)+d*c+r])
			}
		}
		rot.Slice(0, d, i*d, (i+1)*d).(*mat.Dense).Copy(stiefel.ProjectToSO(block))
	}

	return rot, nil
}

// recoverTranslations returns the d×n translation stack minimizing the
// translational residual for the given d×(n·d) rotation stack, with
// t_0 = 0 pinned as the gauge choice.
func (p *Problem) recoverTranslations(rot *mat.Dense) (*mat.Dense, error) {
	d, n := p.d, p.n

	// vec(R) over all blocks, column-major within each block.
	vecR := make([]float64, d*d*n)
	for i := 0; i < n; i++ {
		for c := 0; c < d; c++ {
			for r := 0; r < d; r++ {
				vecR[d*d*i+d*c+r] = rot.At(r, i*d+c)
			}
		}
	}

	// min over t of ‖B1·t + B2·vec(R)‖² with the first pose's columns
	// dropped from B1.
	b2v := mustMulVec(p.dm.b2, vecR)
	b1red := mustSliceCols(p.dm.b1, d, d*n)
	rhs := mustMulVec(b1red.Transpose(), b2v)
	floats.Scale(-1, rhs)

	chol, err := spmat.NewCholesky(b1red.Gram())
	if err != nil {
		return nil, fmt.Errorf("recover translations: %w", err)
	}
	t, err := chol.SolveVec(rhs)
	if err != nil {
		return nil, fmt.Errorf("recover translations: %w", err)
	}

	out := mat.NewDense(d, n, nil) // column 0 stays zero
	for i := 1; i < n; i++ {
		for k := 0; k < d; k++ {
			out.Set(k, i, t[(i-1)*d+k])
		}
	}

	return out, nil
}

// ChordalInitialization computes a feasible starting point from the
// chordal relaxation: anchored linear least squares for the rotations,
// per-block projection to SO(d), and, in the explicit formulation,
// translation recovery. The d-dimensional solution is lifted to the
// current relaxation rank by zero padding. The required factorizations
// are built locally, so the call is safe alongside concurrent readers.
func (p *Problem) ChordalInitialization() (*mat.Dense, error) {
	rot, err := p.chordalRotations()
	if err != nil {
		return nil, fmt.Errorf("ChordalInitialization: %w", err)
	}

	y := mat.NewDense(p.r, p.ambientCols(), nil)
	p.rotCols(y).Slice(0, p.d, 0, p.n*p.d).(*mat.Dense).Copy(rot)

	if p.form == FormulationExplicit {
		t, err := p.recoverTranslations(rot)
		if err != nil {
			return nil, fmt.Errorf("ChordalInitialization: %w", err)
		}
		y.Slice(0, p.d, 0, p.n).(*mat.Dense).Copy(t)
	}

	return y, nil
}

// RoundSolution maps a point of the rank-r relaxation to an SE(d)
// estimate: a thin SVD truncates Y to its best rank-d alignment, a
// majority vote over block determinants fixes the orientation sheet,
// each rotational block is projected to SO(d), and translations are
// recovered (implicit formulation) or read off the truncation (explicit
// formulation). Returns the d×(n·d) rotation stack and the d×n
// translation stack.
func (p *Problem) RoundSolution(y *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	p.checkPoint("RoundSolution", y)
	d, n := p.d, p.n

	var svd mat.SVD
	if !svd.Factorize(y, mat.SVDThin) {
		return nil, nil, fmt.Errorf("RoundSolution: %w", ErrSVDFailed)
	}
	var v mat.Dense
	svd.VTo(&v)
	sv := svd.Values(nil)

	// Best rank-d alignment Σ_d·V_dᵀ, as d rows over the ambient columns.
	xd := mat.NewDense(d, p.ambientCols(), nil)
	for k := 0; k < d; k++ {
		for j := 0; j < p.ambientCols(); j++ {
			xd.Set(k, j, sv[k]*v.At(j, k))
		}
	}

	// Majority vote over the rotational block determinants; a losing
	// vote means the alignment landed on the reflection sheet, fixed by
	// negating the last row.
	rotW := p.rotCols(xd)
	positive := 0
	for i := 0; i < n; i++ {
		if mat.Det(rotW.Slice(0, d, i*d, (i+1)*d)) > 0 {
			positive++
		}
	}
	if 2*positive < n {
		row := xd.RawRowView(d - 1)
		floats.Scale(-1, row)
	}

	rot := mat.NewDense(d, n*d, nil)
	for i := 0; i < n; i++ {
		rot.Slice(0, d, i*d, (i+1)*d).(*mat.Dense).
			Copy(stiefel.ProjectToSO(rotW.Slice(0, d, i*d, (i+1)*d)))
	}

	if p.form == FormulationExplicit {
		t := mat.NewDense(d, n, nil)
		t.Copy(xd.Slice(0, d, 0, n))

		return rot, t, nil
	}

	t, err := p.recoverTranslations(rot)
	if err != nil {
		return nil, nil, fmt.Errorf("RoundSolution: %w", err)
	}

	return rot, t, nil
}
