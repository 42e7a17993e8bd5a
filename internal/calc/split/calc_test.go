package split_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"Drivecalc/internal/calc"
	"Drivecalc/internal/calc/split"
)

func TestCalculateSatisfiesResidual(t *testing.T) {
	testCases := []struct {
		name string
		in   split.Input
	}{
		{name: "defaults", in: split.Input{ReducerRatio: 14, Kbe: 0.27, CK: 1.05, PsiBdMax: 0.6}},
		{name: "low ratio", in: split.Input{ReducerRatio: 8, Kbe: 0.25, CK: 1.0, PsiBdMax: 0.6}},
		{name: "high ratio", in: split.Input{ReducerRatio: 20, Kbe: 0.3, CK: 1.1, PsiBdMax: 0.8}},
		{name: "fractional ratio", in: split.Input{ReducerRatio: 0.5, Kbe: 0.27, CK: 1.05, PsiBdMax: 0.6}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			res, err := split.Calculate(tc.in)
			rq.NoError(err)
			rq.Greater(res.U1, 0.0)
			rq.Less(math.Abs(split.Residual(tc.in)(res.U1)), 1e-6)
			rq.Less(math.Abs(res.Residual), 1e-6)
			rq.InDelta(tc.in.ReducerRatio/res.U1, res.U2, 1e-12)
		})
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	rq := require.New(t)
	in := split.Input{ReducerRatio: 14, Kbe: 0.27, CK: 1.05, PsiBdMax: 0.6}

	a, err := split.Calculate(in)
	rq.NoError(err)
	b, err := split.Calculate(in)
	rq.NoError(err)
	rq.Equal(a, b)
}

func TestBisectRejectsMissingBracket(t *testing.T) {
	rq := require.New(t)

	_, err := split.Bisect(func(x float64) float64 { return x + 1 }, 1, 2, 50)
	rq.ErrorIs(err, split.ErrNoBracket)

	_, err = split.Bisect(func(float64) float64 { return math.NaN() }, 1, 2, 50)
	rq.ErrorIs(err, split.ErrNoBracket)
}

func TestBisectRunsFixedIterations(t *testing.T) {
	rq := require.New(t)

	calls := 0
	root, err := split.Bisect(func(x float64) float64 {
		calls++
		return x - 2
	}, 0, 8, 10)
	rq.NoError(err)
	// Two bracket probes plus one evaluation per halving, even though the
	// first midpoint is an exact root.
	rq.Equal(12, calls)
	rq.InDelta(2, root, 8.0/1024)
}

func TestCalculateUnbracketedIsPreconditionFailure(t *testing.T) {
	rq := require.New(t)

	// λ·c_K is so small that f stays negative over the whole interval.
	in := split.Input{ReducerRatio: 20, Kbe: 0.5, CK: 1e-12, PsiBdMax: 1e-12}
	_, err := split.Calculate(in)
	rq.Error(err)
	rq.True(errors.Is(err, split.ErrNoBracket))
	rq.False(calc.IsValidation(err))
}

func TestCalculateValidation(t *testing.T) {
	testCases := []struct {
		name string
		in   split.Input
	}{
		{name: "zero ratio", in: split.Input{ReducerRatio: 0, Kbe: 0.27, CK: 1.05, PsiBdMax: 0.6}},
		{name: "K_be zero", in: split.Input{ReducerRatio: 14, Kbe: 0, CK: 1.05, PsiBdMax: 0.6}},
		{name: "K_be one", in: split.Input{ReducerRatio: 14, Kbe: 1, CK: 1.05, PsiBdMax: 0.6}},
		{name: "negative c_K", in: split.Input{ReducerRatio: 14, Kbe: 0.27, CK: -1, PsiBdMax: 0.6}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := split.Calculate(tc.in)
			require.True(t, calc.IsValidation(err))
		})
	}
}
