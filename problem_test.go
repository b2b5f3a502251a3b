// SPDX-License-Identifier: MIT

package sesync_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sesync"
	"github.com/katalvlaran/sesync/measure"
)

// cycleProblem builds a noiseless n-pose cycle problem, returning the
// problem and the ground truth the measurements were generated from.
func cycleProblem(t *testing.T, n, d int, opts ...sesync.Option) (*sesync.Problem, *measure.GroundTruth) {
	t.Helper()
	ms, gt, err := measure.Cycle(n, d, measure.WithSeed(7))
	require.NoError(t, err)
	p, err := sesync.NewProblem(ms, opts...)
	require.NoError(t, err)

	return p, gt
}

// ambientCols mirrors the point width of the problem's formulation.
func ambientCols(p *sesync.Problem) int {
	if p.Formulation() == sesync.FormulationExplicit {
		return p.NumPoses() + p.NumPoses()*p.Dimension()
	}

	return p.NumPoses() * p.Dimension()
}

// liftGroundTruth embeds the ground-truth poses as a rank-r point: the
// top d rows carry the rotation blocks (and, in the explicit
// formulation, the translation columns), the remaining rows are zero.
func liftGroundTruth(p *sesync.Problem, gt *measure.GroundTruth) *mat.Dense {
	n, d, r := p.NumPoses(), p.Dimension(), p.RelaxationRank()
	y := mat.NewDense(r, ambientCols(p), nil)
	off := 0
	if p.Formulation() == sesync.FormulationExplicit {
		off = n
		for j := 0; j < n; j++ {
			for k := 0; k < d; k++ {
				y.Set(k, j, gt.Translations[j][k])
			}
		}
	}
	for i := 0; i < n; i++ {
		for rr := 0; rr < d; rr++ {
			for c := 0; c < d; c++ {
				y.Set(rr, off+i*d+c, gt.Rotations[i].At(rr, c))
			}
		}
	}

	return y
}

func TestNewProblem_Validation(t *testing.T) {
	ms, _, err := measure.Cycle(4, 2, measure.WithSeed(3))
	require.NoError(t, err)

	t.Run("empty measurement list", func(t *testing.T) {
		_, err := sesync.NewProblem(nil)
		require.ErrorIs(t, err, measure.ErrNoMeasurements)
	})

	t.Run("rank below dimension", func(t *testing.T) {
		_, err := sesync.NewProblem(ms, sesync.WithRelaxationRank(1))
		require.ErrorIs(t, err, sesync.ErrInvalidRank)
	})

	t.Run("robust formulation unsupported", func(t *testing.T) {
		_, err := sesync.NewProblem(ms, sesync.WithFormulation(sesync.FormulationRobust))
		require.ErrorIs(t, err, sesync.ErrUnsupportedFormulation)
	})

	t.Run("disconnected graph", func(t *testing.T) {
		a, _, err := measure.Cycle(3, 2, measure.WithSeed(1))
		require.NoError(t, err)
		b, _, err := measure.Cycle(3, 2, measure.WithSeed(2))
		require.NoError(t, err)
		split := make([]measure.RelativePoseMeasurement, 0, len(a)+len(b))
		split = append(split, a...)
		for _, e := range b {
			e.I += 3
			e.J += 3
			split = append(split, e)
		}
		_, err = sesync.NewProblem(split)
		require.ErrorIs(t, err, sesync.ErrDisconnectedGraph)
	})
}

func TestProblem_Accessors(t *testing.T) {
	p, _ := cycleProblem(t, 5, 3)

	require.Equal(t, sesync.FormulationImplicit, p.Formulation())
	require.Equal(t, 5, p.NumPoses())
	require.Equal(t, 5, p.NumMeasurements())
	require.Equal(t, 3, p.Dimension())
	require.Equal(t, 3, p.RelaxationRank())

	a := p.OrientedIncidenceMatrix()
	require.Equal(t, 5, a.Rows())
	require.Equal(t, 5, a.Cols())
	// Every column is one −1/+1 pair.
	for e := 0; e < a.Cols(); e++ {
		var sum, abs float64
		for i := 0; i < a.Rows(); i++ {
			v, err := a.At(i, e)
			require.NoError(t, err)
			sum += v
			if v < 0 {
				abs -= v
			} else {
				abs += v
			}
		}
		require.InDelta(t, 0, sum, 1e-15)
		require.InDelta(t, 2, abs, 1e-15)
	}

	m := p.Manifold()
	require.Equal(t, 3, m.Rank())
	require.Equal(t, 3, m.BlockDim())
	require.Equal(t, 5, m.NumBlocks())
}

func TestSetRelaxationRank(t *testing.T) {
	p, gt := cycleProblem(t, 4, 2)

	require.ErrorIs(t, p.SetRelaxationRank(1), sesync.ErrInvalidRank)
	require.Equal(t, 2, p.RelaxationRank())

	require.NoError(t, p.SetRelaxationRank(5))
	require.Equal(t, 5, p.RelaxationRank())
	require.Equal(t, 5, p.Manifold().Rank())

	// The lifted ground truth is still a zero of the noiseless objective
	// at the larger rank.
	y := liftGroundTruth(p, gt)
	require.InDelta(t, 0, p.EvaluateObjective(y), 1e-10)

	s := p.RandomSample()
	r, c := s.Dims()
	require.Equal(t, 5, r)
	require.Equal(t, 8, c)
}

func TestShapePanics(t *testing.T) {
	p, _ := cycleProblem(t, 4, 2)
	bad := mat.NewDense(2, 3, nil)

	require.Panics(t, func() { p.EvaluateObjective(bad) })
	require.Panics(t, func() { p.DataMatrixProduct(bad) })
	require.Panics(t, func() { p.RiemannianGradient(bad) })
	require.Panics(t, func() { p.RoundSolution(bad) })
}

func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { sesync.WithRelaxationRank(0) })
	require.Panics(t, func() { sesync.WithRand(nil) })
	require.Panics(t, func() { sesync.WithCertMaxIterations(0) })
	require.Panics(t, func() { sesync.WithCertTolerance(0) })
	require.Panics(t, func() { sesync.WithCertNumVectors(1) })
}
