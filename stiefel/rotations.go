// SPDX-License-Identifier: MIT
// Package stiefel — special-orthogonal projection helpers.
//
// Contract:
//   - ProjectToSO maps an arbitrary square matrix to the NEAREST rotation,
//     i.e. the orthogonal matrix of determinant +1 minimizing the
//     Frobenius distance. This is the polar projection with a handedness
//     fix on the smallest singular direction.
//   - RandomRotation draws from the Haar-like distribution obtained by
//     projecting a Gaussian matrix; adequate for fixtures and sampling.
//
// Both helpers panic on contract violations (non-square input, nil rng),
// consistent with the rest of the package.

package stiefel

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ProjectToSO returns the nearest matrix in SO(d) to the square matrix a.
func ProjectToSO(a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	if r != c {
		panic(fmt.Sprintf("stiefel: ProjectToSO: got %dx%d, want square", r, c))
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		panic("stiefel: ProjectToSO: SVD failed to converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	var out mat.Dense
	out.Mul(&u, v.T())
	if mat.Det(&out) < 0 {
		// Flip the direction of the smallest singular value (last column
		// of U); this yields the nearest proper rotation.
		for i := 0; i < r; i++ {
			u.Set(i, c-1, -u.At(i, c-1))
		}
		out.Mul(&u, v.T())
	}

	return &out
}

// RandomRotation draws a random d×d rotation by projecting a standard
// Gaussian matrix onto SO(d).
func RandomRotation(d int, rng *rand.Rand) *mat.Dense {
	if rng == nil {
		panic("stiefel: RandomRotation(nil rng)")
	}
	if d < 1 {
		panic(fmt.Sprintf("stiefel: RandomRotation(d=%d)", d))
	}
	g := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			g.Set(i, j, rng.NormFloat64())
		}
	}

	return ProjectToSO(g)
}
