// SPDX-License-Identifier: MIT
// Package speig — Lanczos iteration for the largest-magnitude eigenpair.
//
// Contract:
//   - The operator MUST be symmetric; symmetry is assumed, not verified
//     (verification would cost a dense pass the matrix-free design
//     exists to avoid).
//   - Full reorthogonalization inside each restart cycle keeps the basis
//     numerically orthogonal at subspace sizes used here (tens).
//
// Complexity per restart cycle: ncv matrix-vector products plus
// O(n·ncv²) reorthogonalization and an O(ncv³) dense tridiagonal
// eigendecomposition.

package speig

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNilOperator indicates a nil Op was passed to the driver.
var ErrNilOperator = errors.New("speig: nil operator")

// ErrBadOperator indicates an operator with a non-positive dimension.
var ErrBadOperator = errors.New("speig: operator dimension must be > 0")

// ErrBadInitialVector indicates an initial vector whose length does not
// match the operator dimension, or one with zero norm.
var ErrBadInitialVector = errors.New("speig: invalid initial vector")

// Op is a matrix-free symmetric linear operator.
type Op interface {
	// Dim returns the order of the operator.
	Dim() int
	// Apply computes y = A·x. Implementations must not retain x or y.
	Apply(x, y []float64)
}

// Result carries the best Ritz pair found by the driver.
type Result struct {
	// Value is the eigenvalue estimate of largest magnitude.
	Value float64
	// Vector is the unit-norm eigenvector estimate, length Dim().
	Vector []float64
	// Iterations counts matrix-vector products consumed.
	Iterations int
	// Converged reports whether the residual bound was met within the
	// iteration budget. A false value is advisory, never fatal.
	Converged bool
}

// LargestMagnitude estimates the eigenvalue of largest absolute value of
// the symmetric operator op, restarting Lanczos cycles until convergence
// or budget exhaustion. See package docs for semantics.
func LargestMagnitude(op Op, opts ...Option) (Result, error) {
	if op == nil {
		return Result{}, fmt.Errorf("LargestMagnitude: %w", ErrNilOperator)
	}
	n := op.Dim()
	if n <= 0 {
		return Result{}, fmt.Errorf("LargestMagnitude: dim=%d: %w", n, ErrBadOperator)
	}
	cfg := newConfig(opts...)
	ncv := cfg.numVectors
	if ncv > n {
		ncv = n
	}

	// Starting vector: pinned or random, always unit norm.
	v0 := make([]float64, n)
	if cfg.initial != nil {
		if len(cfg.initial) != n {
			return Result{}, fmt.Errorf("LargestMagnitude: initial length %d, want %d: %w", len(cfg.initial), n, ErrBadInitialVector)
		}
		copy(v0, cfg.initial)
	} else {
		for i := range v0 {
			v0[i] = cfg.rng.NormFloat64()
		}
	}
	if nrm := floats.Norm(v0, 2); nrm == 0 {
		return Result{}, fmt.Errorf("LargestMagnitude: zero start vector: %w", ErrBadInitialVector)
	} else {
		floats.Scale(1/nrm, v0)
	}

	var best Result
	matvecs := 0
	// basis rows: v_j stored contiguously (row j holds the j-th vector).
	basis := make([][]float64, ncv+1)
	for i := range basis {
		basis[i] = make([]float64, n)
	}
	alpha := make([]float64, ncv)
	beta := make([]float64, ncv)
	w := make([]float64, n)

	for matvecs < cfg.maxIterations {
		copy(basis[0], v0)
		k := 0 // built subspace size
		exact := false
		for j := 0; j < ncv && matvecs < cfg.maxIterations; j++ {
			op.Apply(basis[j], w)
			matvecs++
			alpha[j] = floats.Dot(basis[j], w)
			floats.AddScaled(w, -alpha[j], basis[j])
			if j > 0 {
				floats.AddScaled(w, -beta[j-1], basis[j-1])
			}
			// Full reorthogonalization (two-pass classical Gram-Schmidt).
			for pass := 0; pass < 2; pass++ {
				for i := 0; i <= j; i++ {
					c := floats.Dot(basis[i], w)
					floats.AddScaled(w, -c, basis[i])
				}
			}
			beta[j] = floats.Norm(w, 2)
			k = j + 1
			if beta[j] <= 1e-14*math.Max(1, math.Abs(alpha[j])) {
				// Invariant subspace: the Ritz pairs are exact.
				exact = true
				break
			}
			floats.Scale(1/beta[j], w)
			copy(basis[j+1], w)
		}
		if k == 0 {
			break
		}

		// Ritz extraction from the k×k tridiagonal projection.
		tri := mat.NewSymDense(k, nil)
		for i := 0; i < k; i++ {
			tri.SetSym(i, i, alpha[i])
			if i+1 < k {
				tri.SetSym(i, i+1, beta[i])
			}
		}
		var es mat.EigenSym
		if ok := es.Factorize(tri, true); !ok {
			// Dense tridiagonal factorization failing is effectively
			// impossible; report the best pair so far as unconverged.
			return best, nil
		}
		vals := es.Values(nil)
		var vecs mat.Dense
		es.VectorsTo(&vecs)
		pick := 0
		for i := 1; i < k; i++ {
			if math.Abs(vals[i]) > math.Abs(vals[pick]) {
				pick = i
			}
		}
		theta := vals[pick]

		// Assemble the Ritz vector x = V·s and its residual bound
		// ‖A·x − θ·x‖ = |β_k · s_k|.
		x := make([]float64, n)
		for i := 0; i < k; i++ {
			floats.AddScaled(x, vecs.At(i, pick), basis[i])
		}
		if nrm := floats.Norm(x, 2); nrm > 0 {
			floats.Scale(1/nrm, x)
		}
		resid := 0.0
		if !exact && k > 0 {
			resid = math.Abs(beta[k-1] * vecs.At(k-1, pick))
		}

		best = Result{Value: theta, Vector: x, Iterations: matvecs}
		if exact || resid <= cfg.tolerance*math.Max(math.Abs(theta), 1) {
			best.Converged = true
			return best, nil
		}
		// Restart from the best Ritz vector.
		copy(v0, x)
	}

	return best, nil
}
