// SPDX-License-Identifier: MIT
// Package sesync — functional options for NewProblem.
//
// Contract (strict):
//   - Options are functional (Option func(*config)).
//   - Option constructors VALIDATE and PANIC on meaningless inputs
//     (nil RNG, non-positive rank); enum range checks that depend on the
//     measurement data (rank >= d) are deferred to NewProblem, which
//     returns sentinels.
//   - Determinism is explicit: seed via WithSeed or WithRand. Unseeded
//     problems use a fixed default seed, not the clock.

package sesync

import "math/rand"

// Deterministic defaults (named, no magic numbers).
const (
	defaultSeed = int64(1)
	// defaultRankFromDim marks "use the group dimension d as the rank".
	defaultRankFromDim = 0
)

// config aggregates all constructor knobs.
type config struct {
	form       Formulation
	projMethod ProjectionMethod
	precon     Preconditioner
	rank       int // 0 means "d, once d is known"
	rng        *rand.Rand
}

// Option customizes NewProblem.
type Option func(*config)

// newConfig applies options in order over deterministic defaults.
func newConfig(opts ...Option) config {
	cfg := config{
		form:       FormulationImplicit,
		projMethod: ProjectionCholesky,
		precon:     PreconditionerIncompleteCholesky,
		rank:       defaultRankFromDim,
		rng:        rand.New(rand.NewSource(defaultSeed)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithFormulation selects the algebraic formulation. Range is validated
// by NewProblem (ErrUnsupportedFormulation), not here, so that the error
// taxonomy stays uniform for configuration failures.
func WithFormulation(f Formulation) Option {
	return func(c *config) { c.form = f }
}

// WithProjectionMethod selects the projection solve path (implicit
// formulation only; ignored by the explicit form, which never projects).
func WithProjectionMethod(m ProjectionMethod) Option {
	return func(c *config) { c.projMethod = m }
}

// WithPreconditioner selects the preconditioning strategy.
func WithPreconditioner(p Preconditioner) Option {
	return func(c *config) { c.precon = p }
}

// WithRelaxationRank sets the initial relaxation rank r. Panics on
// non-positive values; r < d is reported by NewProblem as ErrInvalidRank
// once d is known.
func WithRelaxationRank(r int) Option {
	if r <= 0 {
		panic("sesync: WithRelaxationRank(non-positive)")
	}
	return func(c *config) { c.rank = r }
}

// WithRand provides an explicit RNG for RandomSample and certification
// start vectors. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("sesync: WithRand(nil)")
	}
	return func(c *config) { c.rng = r }
}

// WithSeed seeds a fresh RNG (deterministic sampling and certification).
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewSource(seed)) }
}
