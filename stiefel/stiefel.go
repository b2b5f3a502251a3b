// SPDX-License-Identifier: MIT
// Package stiefel — product-of-Stiefel manifold primitive.
//
// Contract:
//   - A point Y and tangent/ambient arguments are r×(n·d) dense matrices;
//     block i occupies columns [i·d, (i+1)·d).
//   - All methods are pure: fresh outputs, no retained references.
//   - Wrong-shaped arguments panic (caller contract violation).
//
// Complexity: Proj and SymBlockDiagProduct are O(n·r·d²); Retract,
// ProjectToManifold and RandomSample add an O(d²·r) SVD per block.

package stiefel

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrBadDimension indicates invalid constructor parameters: the manifold
// needs n >= 1 blocks of d >= 1 orthonormal columns embedded in rank
// r >= d.
var ErrBadDimension = errors.New("stiefel: invalid manifold dimensions")

// Product is the manifold St(d, r)^n. Immutable after construction;
// resizing the relaxation rank means constructing a new Product.
type Product struct {
	r, d, n int
}

// NewProduct constructs St(d, r)^n. Returns ErrBadDimension unless
// n >= 1, d >= 1 and r >= d (fewer rows than columns cannot carry
// orthonormal columns).
func NewProduct(r, d, n int) (*Product, error) {
	if n < 1 || d < 1 || r < d {
		return nil, fmt.Errorf("NewProduct(r=%d,d=%d,n=%d): %w", r, d, n, ErrBadDimension)
	}

	return &Product{r: r, d: d, n: n}, nil
}

// Rank returns the embedding rank r (rows of a point).
func (p *Product) Rank() int { return p.r }

// BlockDim returns the per-block column count d.
func (p *Product) BlockDim() int { return p.d }

// NumBlocks returns the number of blocks n.
func (p *Product) NumBlocks() int { return p.n }

// AmbientCols returns n·d, the column count of a packed point.
func (p *Product) AmbientCols() int { return p.n * p.d }

// checkShape panics when m is not r×(n·d). Shape misuse is a programmer
// error, kept out of every method signature on purpose.
func (p *Product) checkShape(method string, m mat.Matrix) {
	r, c := m.Dims()
	if r != p.r || c != p.n*p.d {
		panic(fmt.Sprintf("stiefel: %s: got %dx%d, want %dx%d", method, r, c, p.r, p.n*p.d))
	}
}

// block returns the i-th r×d column block of m as a view.
func (p *Product) block(m *mat.Dense, i int) mat.Matrix {
	return m.Slice(0, p.r, i*p.d, (i+1)*p.d)
}

// symmetrize writes (M + Mᵀ)/2 into dst.
func symmetrize(dst *mat.Dense, m mat.Matrix) {
	var t mat.Dense
	t.CloneFrom(m.T())
	dst.Add(m, &t)
	dst.Scale(0.5, dst)
}

// Proj returns the orthogonal projection of the ambient matrix V onto the
// tangent space of the manifold at Y: blockwise V_i − Y_i·sym(Y_iᵀV_i).
func (p *Product) Proj(y, v *mat.Dense) *mat.Dense {
	p.checkShape("Proj", y)
	p.checkShape("Proj", v)
	out := mat.NewDense(p.r, p.n*p.d, nil)
	out.Copy(v)
	var ytv, sym, corr mat.Dense
	for i := 0; i < p.n; i++ {
		yb := p.block(y, i)
		ytv.Mul(yb.T(), p.block(v, i))
		symmetrize(&sym, &ytv)
		corr.Mul(yb, &sym)
		dst := out.Slice(0, p.r, i*p.d, (i+1)*p.d).(*mat.Dense)
		dst.Sub(dst, &corr)
	}

	return out
}

// SymBlockDiagProduct returns the blockwise product A_i·sym(B_iᵀC_i).
// This is the Weingarten-map term subtracted inside the Riemannian
// Hessian-vector product.
func (p *Product) SymBlockDiagProduct(a, b, c *mat.Dense) *mat.Dense {
	p.checkShape("SymBlockDiagProduct", a)
	p.checkShape("SymBlockDiagProduct", b)
	p.checkShape("SymBlockDiagProduct", c)
	out := mat.NewDense(p.r, p.n*p.d, nil)
	var btc, sym mat.Dense
	for i := 0; i < p.n; i++ {
		btc.Mul(p.block(b, i).T(), p.block(c, i))
		symmetrize(&sym, &btc)
		dst := out.Slice(0, p.r, i*p.d, (i+1)*p.d).(*mat.Dense)
		dst.Mul(p.block(a, i), &sym)
	}

	return out
}

// ProjectToManifold maps an arbitrary ambient r×(n·d) matrix to the
// nearest point of the manifold: each block is replaced by the polar
// factor U·Vᵀ of its thin SVD.
func (p *Product) ProjectToManifold(a *mat.Dense) *mat.Dense {
	p.checkShape("ProjectToManifold", a)
	out := mat.NewDense(p.r, p.n*p.d, nil)
	var svd mat.SVD
	var u, v mat.Dense
	for i := 0; i < p.n; i++ {
		if ok := svd.Factorize(p.block(a, i), mat.SVDThin); !ok {
			panic("stiefel: ProjectToManifold: SVD failed to converge")
		}
		svd.UTo(&u)
		svd.VTo(&v)
		dst := out.Slice(0, p.r, i*p.d, (i+1)*p.d).(*mat.Dense)
		dst.Mul(&u, v.T())
	}

	return out
}

// Retract maps the tangent vector V at Y back onto the manifold via the
// polar retraction: ProjectToManifold(Y + V).
func (p *Product) Retract(y, v *mat.Dense) *mat.Dense {
	p.checkShape("Retract", y)
	p.checkShape("Retract", v)
	var sum mat.Dense
	sum.Add(y, v)

	return p.ProjectToManifold(&sum)
}

// RandomSample draws a uniformly distributed point: each block is a
// standard Gaussian matrix projected to its polar factor. The caller owns
// the RNG; a nil rng panics (determinism must be an explicit choice).
func (p *Product) RandomSample(rng *rand.Rand) *mat.Dense {
	if rng == nil {
		panic("stiefel: RandomSample(nil rng)")
	}
	g := mat.NewDense(p.r, p.n*p.d, nil)
	for i := 0; i < p.r; i++ {
		for j := 0; j < p.n*p.d; j++ {
			g.Set(i, j, rng.NormFloat64())
		}
	}

	return p.ProjectToManifold(g)
}
