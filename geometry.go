// SPDX-License-Identifier: MIT
// Package sesync — manifold geometry at problem level: retraction and
// random sampling over the full variable, translations included.

package sesync

import (
	"gonum.org/v1/gonum/mat"
)

// Retract maps the tangent vector v at the point y back onto the
// feasible set. Rotational blocks use the projection retraction of the
// Stiefel product; translation columns of the explicit formulation live
// in a flat space and simply add.
func (p *Problem) Retract(y, v *mat.Dense) *mat.Dense {
	p.checkPoint("Retract", y)
	p.checkPoint("Retract", v)
	if p.form != FormulationExplicit {
		return p.mani.Retract(y, v)
	}
	out := mat.NewDense(p.r, p.ambientCols(), nil)
	out.Add(y, v)
	rot := p.mani.Retract(p.rotCols(y), p.rotCols(v))
	p.rotCols(out).Copy(rot)

	return out
}

// RandomSample draws a uniformly random feasible point: i.i.d. random
// Stiefel blocks, plus standard Gaussian translation columns in the
// explicit formulation. Draws consume the problem RNG and serialize on
// an internal mutex, so concurrent calls are safe (and deterministic
// only in aggregate).
func (p *Problem) RandomSample() *mat.Dense {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	if p.form != FormulationExplicit {
		return p.mani.RandomSample(p.rng)
	}
	out := mat.NewDense(p.r, p.ambientCols(), nil)
	for i := 0; i < p.r; i++ {
		for j := 0; j < p.n; j++ {
			out.Set(i, j, p.rng.NormFloat64())
		}
	}
	p.rotCols(out).Copy(p.mani.RandomSample(p.rng))

	return out
}
