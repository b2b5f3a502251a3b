// SPDX-License-Identifier: MIT
// Package sesync — one-shot assembly of every cached sparse data matrix.
//
// Contract:
//   - assemble runs exactly once per construction, AFTER measure.Validate
//     has accepted the list: every index below is known to be in range,
//     every precision positive. A Builder error past that gate is a
//     programmer error and panics.
//   - All output dimensions are fixed functions of (n, m, d) and the
//     produced matrices are never mutated again.
//   - The reference pose for translation elimination is pose n−1: its row
//     is the one removed from the oriented incidence matrix, which gives
//     the reduced matrix full row rank on a connected graph.
//
// Complexity: O(m·d²) triplets plus the CSR compilation sorts.

package sesync

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/measure"
	"github.com/katalvlaran/sesync/spmat"
)

// dataMatrices bundles the construction-time sparse matrices. Which
// fields are populated depends on the formulation; the Problem accessors
// and solve paths only ever touch the fields their variant owns.
type dataMatrices struct {
	// incidence is the oriented incidence matrix A (n×m): column e holds
	// −1 at the tail pose and +1 at the head pose.
	incidence *spmat.CSR
	// lGrho is the rotational connection Laplacian (nd×nd).
	lGrho *spmat.CSR

	// Implicit-formulation matrices.
	aredSqrtOmega  *spmat.CSR // Ared·Ω^(1/2), (n−1)×m
	sqrtOmegaAredT *spmat.CSR // transpose cache of the above, m×(n−1)
	sqrtOmegaT     *spmat.CSR // Ω^(1/2)·T, m×nd
	tTSqrtOmega    *spmat.CSR // transpose cache, nd×m
	// redLaplacian is Ared·Ω·Aredᵀ — the Gram matrix of the reduced
	// weighted incidence, the Cholesky target of the projection operator.
	redLaplacian *spmat.CSR

	// Explicit-formulation matrix: the combined quadratic form M,
	// (n+nd)×(n+nd), over stacked translation columns then rotations.
	quadM *spmat.CSR

	// Residual operators shared by chordal initialization and
	// translation recovery.
	b1 *spmat.CSR // dm×dn, translational incidence
	b2 *spmat.CSR // dm×d²n, rotation-to-translation coupling
	b3 *spmat.CSR // d²m×d²n, rotational residual operator
}

// mustAdd inserts a pre-validated triplet; failure is a programmer error.
func mustAdd(b *spmat.Builder, i, j int, v float64) {
	if err := b.Add(i, j, v); err != nil {
		panic(fmt.Sprintf("sesync: assemble: %v", err))
	}
}

// mustAddBlock inserts a pre-validated scaled dense block.
func mustAddBlock(b *spmat.Builder, i, j int, block mat.Matrix, alpha float64) {
	if err := b.AddBlock(i, j, block, alpha); err != nil {
		panic(fmt.Sprintf("sesync: assemble: %v", err))
	}
}

// mustBuilder allocates a builder for pre-validated dimensions.
func mustBuilder(rows, cols int) *spmat.Builder {
	b, err := spmat.NewBuilder(rows, cols)
	if err != nil {
		panic(fmt.Sprintf("sesync: assemble: %v", err))
	}

	return b
}

// connected reports whether the measurement graph is weakly connected,
// via union-find over the edge list.
func connected(ms []measure.RelativePoseMeasurement, n int) bool {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	comps := n
	for k := range ms {
		ri, rj := find(ms[k].I), find(ms[k].J)
		if ri != rj {
			parent[ri] = rj
			comps--
		}
	}

	return comps == 1
}

// assemble builds every data matrix the chosen formulation needs.
func assemble(ms []measure.RelativePoseMeasurement, n, d int, form Formulation) (*dataMatrices, error) {
	if !connected(ms, n) {
		return nil, fmt.Errorf("assemble: %w", ErrDisconnectedGraph)
	}
	m := len(ms)
	dm := &dataMatrices{}

	// Oriented incidence A (n×m): −1 at tail, +1 at head.
	ab := mustBuilder(n, m)
	for e := range ms {
		mustAdd(ab, ms[e].I, e, -1)
		mustAdd(ab, ms[e].J, e, +1)
	}
	dm.incidence = ab.ToCSR()

	// Rotational connection Laplacian (nd×nd): κ-weighted identity blocks
	// on the diagonal, −κ·R_e couplings off it.
	lb := mustBuilder(n*d, n*d)
	for e := range ms {
		i, j, kappa := ms[e].I, ms[e].J, ms[e].Kappa
		for k := 0; k < d; k++ {
			mustAdd(lb, i*d+k, i*d+k, kappa)
			mustAdd(lb, j*d+k, j*d+k, kappa)
		}
		mustAddBlock(lb, i*d, j*d, ms[e].R, -kappa)
		mustAddBlock(lb, j*d, i*d, ms[e].R.T(), -kappa)
	}
	dm.lGrho = lb.ToCSR()

	switch form {
	case FormulationImplicit:
		assembleImplicit(ms, n, d, dm)
	case FormulationExplicit:
		assembleExplicit(ms, n, d, dm)
	default:
		return nil, fmt.Errorf("assemble: formulation %s: %w", form, ErrUnsupportedFormulation)
	}

	assembleResidualOperators(ms, n, d, dm)

	return dm, nil
}

// assembleImplicit builds the translation-elimination matrices: the
// reduced weighted incidence, the weighted translational data matrix,
// their transpose caches, and the reduced weighted graph Laplacian.
func assembleImplicit(ms []measure.RelativePoseMeasurement, n, d int, dm *dataMatrices) {
	m := len(ms)
	ref := n - 1 // reference pose row removed from the incidence

	wb := mustBuilder(n-1, m)
	tb := mustBuilder(m, n*d)
	rb := mustBuilder(n-1, n-1)
	for e := range ms {
		i, j, tau := ms[e].I, ms[e].J, ms[e].Tau
		st := math.Sqrt(tau)
		if i != ref {
			mustAdd(wb, i, e, -st)
		}
		if j != ref {
			mustAdd(wb, j, e, +st)
		}
		// Translational data row e: −t_e in the tail pose's block.
		for k := 0; k < d; k++ {
			if v := ms[e].T[k]; v != 0 {
				mustAdd(tb, e, i*d+k, -st*v)
			}
		}
		// Reduced weighted Laplacian Ared·Ω·Aredᵀ, assembled directly
		// from the graph rather than by a sparse-sparse product.
		if i != ref {
			mustAdd(rb, i, i, tau)
		}
		if j != ref {
			mustAdd(rb, j, j, tau)
		}
		if i != ref && j != ref {
			mustAdd(rb, i, j, -tau)
			mustAdd(rb, j, i, -tau)
		}
	}
	dm.aredSqrtOmega = wb.ToCSR()
	dm.sqrtOmegaAredT = dm.aredSqrtOmega.Transpose()
	dm.sqrtOmegaT = tb.ToCSR()
	dm.tTSqrtOmega = dm.sqrtOmegaT.Transpose()
	dm.redLaplacian = rb.ToCSR()
}

// assembleExplicit builds the combined quadratic form M over the stacked
// unknowns [t_0..t_{n−1} | R_0..R_{n−1}].
func assembleExplicit(ms []measure.RelativePoseMeasurement, n, d int, dm *dataMatrices) {
	off := n // rotation columns start after the n translation columns
	mb := mustBuilder(n+n*d, n+n*d)
	for e := range ms {
		i, j := ms[e].I, ms[e].J
		tau, kappa := ms[e].Tau, ms[e].Kappa
		t := ms[e].T

		// Translation-translation weight Laplacian.
		mustAdd(mb, i, i, tau)
		mustAdd(mb, j, j, tau)
		mustAdd(mb, i, j, -tau)
		mustAdd(mb, j, i, -tau)

		// Translation-rotation coupling and the rotation-rotation term
		// contributed by the translational residual t_j − t_i − R_i·t_e.
		for k := 0; k < d; k++ {
			if t[k] != 0 {
				mustAdd(mb, i, off+i*d+k, tau*t[k])
				mustAdd(mb, off+i*d+k, i, tau*t[k])
				mustAdd(mb, j, off+i*d+k, -tau*t[k])
				mustAdd(mb, off+i*d+k, j, -tau*t[k])
			}
			for l := 0; l < d; l++ {
				if v := tau * t[k] * t[l]; v != 0 {
					mustAdd(mb, off+i*d+k, off+i*d+l, v)
				}
			}
		}

		// Rotational connection Laplacian block, shifted by the offset.
		for k := 0; k < d; k++ {
			mustAdd(mb, off+i*d+k, off+i*d+k, kappa)
			mustAdd(mb, off+j*d+k, off+j*d+k, kappa)
		}
		mustAddBlock(mb, off+i*d, off+j*d, ms[e].R, -kappa)
		mustAddBlock(mb, off+j*d, off+i*d, ms[e].R.T(), -kappa)
	}
	dm.quadM = mb.ToCSR()
}

// assembleResidualOperators builds B1, B2, B3: the white-noise-scaled
// linear residual operators over stacked translations and vectorized
// rotations. Chordal initialization solves against B3; translation
// recovery solves against (B1, B2).
func assembleResidualOperators(ms []measure.RelativePoseMeasurement, n, d int, dm *dataMatrices) {
	m := len(ms)
	d2 := d * d
	b1 := mustBuilder(d*m, d*n)
	b2 := mustBuilder(d*m, d2*n)
	b3 := mustBuilder(d2*m, d2*n)
	for e := range ms {
		i, j := ms[e].I, ms[e].J
		st := math.Sqrt(ms[e].Tau)
		sk := math.Sqrt(ms[e].Kappa)

		// √τ·(t_j − t_i − R_i·t_e): identity pair into B1, the −t_e
		// coupling into B2 (vec is column-major: entry (r,c) ↦ d·c+r).
		for r := 0; r < d; r++ {
			mustAdd(b1, e*d+r, i*d+r, -st)
			mustAdd(b1, e*d+r, j*d+r, +st)
			for c := 0; c < d; c++ {
				if v := ms[e].T[c]; v != 0 {
					mustAdd(b2, e*d+r, d2*i+d*c+r, -st*v)
				}
			}
		}

		// √κ·vec(R_j − R_i·R_e): identity into the head block, the
		// transposed-Kronecker coupling into the tail block.
		for c := 0; c < d; c++ {
			for r := 0; r < d; r++ {
				mustAdd(b3, d2*e+d*c+r, d2*j+d*c+r, sk)
				for k := 0; k < d; k++ {
					if v := ms[e].R.At(k, c); v != 0 {
						mustAdd(b3, d2*e+d*c+r, d2*i+d*k+r, -sk*v)
					}
				}
			}
		}
	}
	dm.b1 = b1.ToCSR()
	dm.b2 = b2.ToCSR()
	dm.b3 = b3.ToCSR()
}
