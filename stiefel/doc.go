// SPDX-License-Identifier: MIT

// Package stiefel implements the product manifold St(d, r)^n of n
// "generalized orientation" blocks: each block is an r×d matrix with
// orthonormal columns, and a point packs the n blocks side by side into a
// dense r×(n·d) matrix.
//
// This is the reusable manifold-geometry provider injected into the sesync
// problem object. It supplies exactly the primitives a Riemannian
// optimizer needs from the feasible set:
//
//   - Proj: orthogonal projection of an ambient matrix onto the tangent
//     space at a point, blockwise V_i − Y_i·sym(Y_iᵀV_i).
//   - SymBlockDiagProduct: the blockwise A_i·sym(B_iᵀC_i) product that
//     carries the Weingarten-map (curvature) correction of the Riemannian
//     Hessian.
//   - Retract: the polar (SVD-based) retraction, mapping Y + V back onto
//     the constraint set blockwise.
//   - ProjectToManifold: nearest-orthonormal-frame projection of an
//     arbitrary ambient matrix (the polar factor of each block).
//   - RandomSample: blockwise uniform draw (Gaussian matrix followed by
//     polar projection).
//
// All operations are pure functions of their arguments: they allocate
// fresh outputs, never retain or mutate caller storage, and a Product is
// immutable after construction — safe for concurrent readers.
//
// Caller contract: matrix arguments must be r×(n·d). A wrong-shaped
// argument is a programmer error and panics; it is never reported as a
// recoverable runtime condition.
package stiefel
