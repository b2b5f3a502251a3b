// SPDX-License-Identifier: MIT

package measure_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync/measure"
)

func TestValidate_InfersShape(t *testing.T) {
	ms, _, err := measure.Cycle(5, 3, measure.WithSeed(1))
	require.NoError(t, err)
	n, d, err := measure.Validate(ms)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 3, d)
}

func TestValidate_Sentinels(t *testing.T) {
	good := func() []measure.RelativePoseMeasurement {
		ms, _, err := measure.Cycle(4, 2, measure.WithSeed(2))
		require.NoError(t, err)
		return ms
	}

	t.Run("empty list", func(t *testing.T) {
		_, _, err := measure.Validate(nil)
		require.ErrorIs(t, err, measure.ErrNoMeasurements)
	})

	t.Run("self loop", func(t *testing.T) {
		ms := good()
		ms[1].J = ms[1].I
		_, _, err := measure.Validate(ms)
		require.ErrorIs(t, err, measure.ErrBadPoseIndex)
	})

	t.Run("negative index", func(t *testing.T) {
		ms := good()
		ms[0].I = -1
		_, _, err := measure.Validate(ms)
		require.ErrorIs(t, err, measure.ErrBadPoseIndex)
	})

	t.Run("rotation shape", func(t *testing.T) {
		ms := good()
		ms[2].R = mat.NewDense(3, 3, nil)
		_, _, err := measure.Validate(ms)
		require.ErrorIs(t, err, measure.ErrDimensionMismatch)
	})

	t.Run("translation length", func(t *testing.T) {
		ms := good()
		ms[2].T = []float64{1}
		_, _, err := measure.Validate(ms)
		require.ErrorIs(t, err, measure.ErrDimensionMismatch)
	})

	t.Run("non-positive precision", func(t *testing.T) {
		ms := good()
		ms[3].Kappa = 0
		_, _, err := measure.Validate(ms)
		require.ErrorIs(t, err, measure.ErrBadPrecision)

		ms = good()
		ms[3].Tau = math.Inf(1)
		_, _, err = measure.Validate(ms)
		require.ErrorIs(t, err, measure.ErrBadPrecision)
	})
}

func TestCycle_NoiselessConsistency(t *testing.T) {
	ms, gt, err := measure.Cycle(6, 3, measure.WithSeed(3))
	require.NoError(t, err)
	require.Len(t, ms, 6)

	for k, m := range ms {
		// R_ij must equal R_iᵀ·R_j exactly (no noise requested).
		var want mat.Dense
		want.Mul(gt.Rotations[m.I].T(), gt.Rotations[m.J])
		require.True(t, mat.EqualApprox(&want, m.R, 1e-12), "edge %d rotation", k)

		// t_ij must equal R_iᵀ·(t_j − t_i).
		for r := 0; r < 3; r++ {
			s := 0.0
			for c := 0; c < 3; c++ {
				s += gt.Rotations[m.I].At(c, r) * (gt.Translations[m.J][c] - gt.Translations[m.I][c])
			}
			require.InDelta(t, s, m.T[r], 1e-12, "edge %d t[%d]", k, r)
		}

		// Rotation measurements stay proper rotations.
		require.InDelta(t, 1, mat.Det(m.R), 1e-10)
	}
}

func TestCycle_DeterministicUnderSeed(t *testing.T) {
	a, _, err := measure.Cycle(5, 2, measure.WithSeed(7), measure.WithRotationNoise(0.05), measure.WithTranslationNoise(0.02))
	require.NoError(t, err)
	b, _, err := measure.Cycle(5, 2, measure.WithSeed(7), measure.WithRotationNoise(0.05), measure.WithTranslationNoise(0.02))
	require.NoError(t, err)
	for k := range a {
		require.True(t, mat.Equal(a[k].R, b[k].R), "edge %d", k)
		require.Equal(t, a[k].T, b[k].T, "edge %d", k)
	}
}

func TestGrid_TopologyAndValidation(t *testing.T) {
	ms, gt, err := measure.Grid(3, 4, 2, measure.WithSeed(4))
	require.NoError(t, err)
	// 3x4 lattice: 3*(4-1) horizontal + (3-1)*4 vertical edges.
	require.Len(t, ms, 17)
	require.Len(t, gt.Rotations, 12)

	n, d, err := measure.Validate(ms)
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.Equal(t, 2, d)

	_, _, err = measure.Grid(1, 4, 2)
	require.ErrorIs(t, err, measure.ErrTooFewPoses)
	_, _, err = measure.Cycle(2, 2)
	require.ErrorIs(t, err, measure.ErrTooFewPoses)
	_, _, err = measure.Cycle(4, 1)
	require.ErrorIs(t, err, measure.ErrBadDimension)
}

func TestOptionConstructors_Panic(t *testing.T) {
	require.Panics(t, func() { measure.WithKappa(0) })
	require.Panics(t, func() { measure.WithTau(-1) })
	require.Panics(t, func() { measure.WithRotationNoise(-0.1) })
	require.Panics(t, func() { measure.WithTranslationNoise(-0.1) })
	require.Panics(t, func() { measure.WithRand(nil) })
}
