// SPDX-License-Identifier: MIT
// Package measure — measurement type and list validation.
//
// Contract:
//   - Validate is the single gate between raw measurement lists and the
//     assembler: after it returns nil error, every downstream loop may
//     index poses in [0, n) and dimensions d without re-checking.
//   - The pose count is inferred as max(I, J)+1 over the list, matching
//     the original system's convention of densely numbered poses.
//
// Complexity: Validate is O(m·d²).

package measure

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RelativePoseMeasurement is one noisy edge of the measurement graph: the
// observed transform of pose J's frame expressed in pose I's frame.
// Immutable once given; consumers copy, never mutate.
type RelativePoseMeasurement struct {
	// I, J are the ordered pose indices (tail, head) of the edge.
	I, J int
	// R is the measured relative rotation, a d×d orthogonal matrix.
	R *mat.Dense
	// T is the measured relative translation, length d.
	T []float64
	// Kappa is the rotational precision (concentration) weight.
	Kappa float64
	// Tau is the translational precision weight.
	Tau float64
}

// Validate checks a measurement list and infers (numPoses, dimension).
// Returns ErrNoMeasurements, ErrBadPoseIndex, ErrDimensionMismatch or
// ErrBadPrecision on the first offending measurement.
func Validate(ms []RelativePoseMeasurement) (n, d int, err error) {
	if len(ms) == 0 {
		return 0, 0, fmt.Errorf("Validate: %w", ErrNoMeasurements)
	}
	// Dimension is fixed by the first measurement's rotation block.
	r0, c0 := ms[0].R.Dims()
	if r0 != c0 || r0 < 2 {
		return 0, 0, fmt.Errorf("Validate: measurement 0 rotation %dx%d: %w", r0, c0, ErrDimensionMismatch)
	}
	d = r0
	for k := range ms {
		m := &ms[k]
		if m.I < 0 || m.J < 0 || m.I == m.J {
			return 0, 0, fmt.Errorf("Validate: measurement %d (%d,%d): %w", k, m.I, m.J, ErrBadPoseIndex)
		}
		rr, rc := m.R.Dims()
		if rr != d || rc != d || len(m.T) != d {
			return 0, 0, fmt.Errorf("Validate: measurement %d shapes R=%dx%d |t|=%d want d=%d: %w", k, rr, rc, len(m.T), d, ErrDimensionMismatch)
		}
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				if !isFinite(m.R.At(i, j)) {
					return 0, 0, fmt.Errorf("Validate: measurement %d R(%d,%d) not finite: %w", k, i, j, ErrDimensionMismatch)
				}
			}
			if !isFinite(m.T[i]) {
				return 0, 0, fmt.Errorf("Validate: measurement %d t[%d] not finite: %w", k, i, ErrDimensionMismatch)
			}
		}
		if !(m.Kappa > 0) || !isFinite(m.Kappa) || !(m.Tau > 0) || !isFinite(m.Tau) {
			return 0, 0, fmt.Errorf("Validate: measurement %d kappa=%v tau=%v: %w", k, m.Kappa, m.Tau, ErrBadPrecision)
		}
		if m.I >= n {
			n = m.I + 1
		}
		if m.J >= n {
			n = m.J + 1
		}
	}

	return n, d, nil
}

// isFinite reports whether v is neither NaN nor ±Inf.
func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
