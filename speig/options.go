// SPDX-License-Identifier: MIT
// Package speig — functional options for the Lanczos driver.
//
// Contract (strict):
//   - Options are functional (Option func(*config)).
//   - Option constructors VALIDATE and PANIC on meaningless inputs;
//     the driver itself never panics on user-triggered conditions.
//   - Determinism is explicit: seed via WithSeed or WithRand, or pin the
//     start vector with WithInitialVector.

package speig

import "math/rand"

// Deterministic defaults (named, no magic numbers).
const (
	// DefaultMaxIterations bounds the total matrix-vector product count.
	DefaultMaxIterations = 10000
	// DefaultTolerance is the relative residual bound for Ritz acceptance.
	DefaultTolerance = 1e-6
	// DefaultNumVectors is the Lanczos subspace size per restart cycle.
	DefaultNumVectors = 20
	// defaultSeed keeps unseeded runs reproducible rather than clock-driven.
	defaultSeed = int64(1)
)

// config aggregates all driver knobs; passed by value to the iteration.
type config struct {
	maxIterations int
	tolerance     float64
	numVectors    int
	rng           *rand.Rand
	initial       []float64
}

// Option customizes the Lanczos driver.
type Option func(*config)

// newConfig applies options in order over deterministic defaults.
func newConfig(opts ...Option) config {
	cfg := config{
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		numVectors:    DefaultNumVectors,
		rng:           rand.New(rand.NewSource(defaultSeed)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithMaxIterations bounds the number of matrix-vector products.
// Panics on non-positive budgets.
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic("speig: WithMaxIterations(non-positive)")
	}
	return func(c *config) { c.maxIterations = n }
}

// WithTolerance sets the relative residual bound for Ritz acceptance.
// Panics on non-positive tolerances.
func WithTolerance(tol float64) Option {
	if tol <= 0 {
		panic("speig: WithTolerance(non-positive)")
	}
	return func(c *config) { c.tolerance = tol }
}

// WithNumVectors sets the Lanczos subspace size (clamped to the operator
// dimension by the driver). Panics when fewer than 2 vectors are asked
// for; a single vector cannot carry a tridiagonal projection.
func WithNumVectors(ncv int) Option {
	if ncv < 2 {
		panic("speig: WithNumVectors(<2)")
	}
	return func(c *config) { c.numVectors = ncv }
}

// WithRand provides an explicit RNG for the starting vector.
// Panics on nil; prefer WithSeed for reproducible runs.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("speig: WithRand(nil)")
	}
	return func(c *config) { c.rng = r }
}

// WithSeed seeds a fresh RNG for the starting vector (deterministic).
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithInitialVector pins the starting vector (copied by the driver, not
// retained). Panics on an empty slice; a wrong length surfaces as an
// error from the driver, since the operator is not known here.
func WithInitialVector(v []float64) Option {
	if len(v) == 0 {
		panic("speig: WithInitialVector(empty)")
	}
	return func(c *config) { c.initial = v }
}
