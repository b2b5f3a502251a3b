// SPDX-License-Identifier: MIT
// Package measure — deterministic synthetic pose-graph generators.
//
// Contract:
//   - Cycle(n, d): poses 0..n-1 on a ring, edges i -> (i+1) mod n emitted
//     in ascending i (stable order). Requires n >= 3, d >= 2.
//   - Grid(rows, cols, d): poses in row-major order, right- and
//     down-neighbor edges emitted row by row. Requires rows, cols >= 2.
//   - With zero noise the measurements are EXACT functions of the ground
//     truth: R_ij = R_iᵀ·R_j, t_ij = R_iᵀ·(t_j − t_i). Noise options
//     perturb rotations by projection back onto SO(d) and translations
//     additively.
//
// Determinism:
//   - All randomness flows through the configured RNG; a fixed seed
//     reproduces ground truth and measurements exactly.

package measure

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/stiefel"
)

// Deterministic defaults (named, no magic numbers).
const (
	defaultKappa     = 1.0
	defaultTau       = 1.0
	defaultSeed      = int64(1)
	defaultTransSpan = 1.0 // scale of ground-truth translations
	minCyclePoses    = 3
	minGridSide      = 2
)

// GroundTruth holds the poses a generator sampled before producing
// measurements; tests compare recovered solutions against it.
type GroundTruth struct {
	// D is the group dimension.
	D int
	// Rotations holds n proper rotations, one d×d block per pose.
	Rotations []*mat.Dense
	// Translations holds n translation vectors of length d.
	Translations [][]float64
}

// config aggregates generator knobs; passed by value to generators.
type config struct {
	kappa, tau float64
	rotNoise   float64
	transNoise float64
	rng        *rand.Rand
}

// Option customizes a generator.
type Option func(*config)

func newConfig(opts ...Option) config {
	cfg := config{
		kappa: defaultKappa,
		tau:   defaultTau,
		rng:   rand.New(rand.NewSource(defaultSeed)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithKappa sets the rotational precision attached to every measurement.
// Panics on non-positive values (option constructors validate and panic).
func WithKappa(kappa float64) Option {
	if kappa <= 0 {
		panic("measure: WithKappa(non-positive)")
	}
	return func(c *config) { c.kappa = kappa }
}

// WithTau sets the translational precision attached to every measurement.
// Panics on non-positive values.
func WithTau(tau float64) Option {
	if tau <= 0 {
		panic("measure: WithTau(non-positive)")
	}
	return func(c *config) { c.tau = tau }
}

// WithRotationNoise sets the rotational perturbation scale (0 = exact).
// Panics on negative values.
func WithRotationNoise(sigma float64) Option {
	if sigma < 0 {
		panic("measure: WithRotationNoise(negative)")
	}
	return func(c *config) { c.rotNoise = sigma }
}

// WithTranslationNoise sets the additive translation noise scale.
// Panics on negative values.
func WithTranslationNoise(sigma float64) Option {
	if sigma < 0 {
		panic("measure: WithTranslationNoise(negative)")
	}
	return func(c *config) { c.transNoise = sigma }
}

// WithRand provides an explicit RNG. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("measure: WithRand(nil)")
	}
	return func(c *config) { c.rng = r }
}

// WithSeed seeds a fresh RNG (deterministic fixtures).
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rand.New(rand.NewSource(seed)) }
}

// Cycle generates a ground-truth pose set on an n-cycle in SE(d) and one
// measurement per ring edge. Returns ErrTooFewPoses or ErrBadDimension on
// invalid sizes.
func Cycle(n, d int, opts ...Option) ([]RelativePoseMeasurement, *GroundTruth, error) {
	if n < minCyclePoses {
		return nil, nil, fmt.Errorf("Cycle: n=%d < min=%d: %w", n, minCyclePoses, ErrTooFewPoses)
	}
	if d < 2 {
		return nil, nil, fmt.Errorf("Cycle: d=%d: %w", d, ErrBadDimension)
	}
	cfg := newConfig(opts...)
	gt := randomGroundTruth(n, d, cfg.rng)

	ms := make([]RelativePoseMeasurement, 0, n)
	for i := 0; i < n; i++ {
		ms = append(ms, edgeMeasurement(gt, i, (i+1)%n, cfg))
	}

	return ms, gt, nil
}

// Grid generates a rows×cols lattice of poses (row-major indices) with
// right- and down-neighbor measurements. Returns ErrTooFewPoses or
// ErrBadDimension on invalid sizes.
func Grid(rows, cols, d int, opts ...Option) ([]RelativePoseMeasurement, *GroundTruth, error) {
	if rows < minGridSide || cols < minGridSide {
		return nil, nil, fmt.Errorf("Grid: %dx%d < min side %d: %w", rows, cols, minGridSide, ErrTooFewPoses)
	}
	if d < 2 {
		return nil, nil, fmt.Errorf("Grid: d=%d: %w", d, ErrBadDimension)
	}
	cfg := newConfig(opts...)
	gt := randomGroundTruth(rows*cols, d, cfg.rng)

	var ms []RelativePoseMeasurement
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if c+1 < cols {
				ms = append(ms, edgeMeasurement(gt, i, i+1, cfg))
			}
			if r+1 < rows {
				ms = append(ms, edgeMeasurement(gt, i, i+cols, cfg))
			}
		}
	}

	return ms, gt, nil
}

// randomGroundTruth samples n random poses; pose 0 is pinned to the
// identity frame so recovered solutions align without extra bookkeeping.
func randomGroundTruth(n, d int, rng *rand.Rand) *GroundTruth {
	gt := &GroundTruth{
		D:            d,
		Rotations:    make([]*mat.Dense, n),
		Translations: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		if i == 0 {
			eye := mat.NewDense(d, d, nil)
			for k := 0; k < d; k++ {
				eye.Set(k, k, 1)
			}
			gt.Rotations[0] = eye
			gt.Translations[0] = make([]float64, d)
			continue
		}
		gt.Rotations[i] = stiefel.RandomRotation(d, rng)
		t := make([]float64, d)
		for k := range t {
			t[k] = defaultTransSpan * rng.NormFloat64()
		}
		gt.Translations[i] = t
	}

	return gt
}

// edgeMeasurement produces the (possibly noise-perturbed) relative
// measurement for the ordered edge (i, j).
func edgeMeasurement(gt *GroundTruth, i, j int, cfg config) RelativePoseMeasurement {
	d := gt.D
	// Exact relative rotation R_iᵀ·R_j.
	var rel mat.Dense
	rel.Mul(gt.Rotations[i].T(), gt.Rotations[j])
	if cfg.rotNoise > 0 {
		// Perturb and project back to SO(d); the perturbation scale sets
		// the expected geodesic deviation, not an exact angle.
		pert := mat.NewDense(d, d, nil)
		for r := 0; r < d; r++ {
			for c := 0; c < d; c++ {
				pert.Set(r, c, rel.At(r, c)+cfg.rotNoise*cfg.rng.NormFloat64())
			}
		}
		rel.CloneFrom(stiefel.ProjectToSO(pert))
	}

	// Exact relative translation R_iᵀ·(t_j − t_i), then additive noise.
	t := make([]float64, d)
	for r := 0; r < d; r++ {
		s := 0.0
		for c := 0; c < d; c++ {
			s += gt.Rotations[i].At(c, r) * (gt.Translations[j][c] - gt.Translations[i][c])
		}
		t[r] = s + cfg.transNoise*cfg.rng.NormFloat64()
	}

	return RelativePoseMeasurement{I: i, J: j, R: &rel, T: t, Kappa: cfg.kappa, Tau: cfg.tau}
}
