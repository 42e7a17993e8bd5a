package bevel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"Drivecalc/internal/calc"
	"Drivecalc/internal/calc/bevel"
	"Drivecalc/internal/catalog"
)

func TestCalculate(t *testing.T) {
	rq := require.New(t)

	res, err := bevel.Calculate(bevel.Input{
		Driver:    catalog.Steel40XH,
		Driven:    catalog.Steel50X,
		HB1:       250,
		HB2:       230,
		LifeYears: 5,
		U1:        4,
	})
	rq.NoError(err)

	rq.Equal(570.0, res.Pinion.SigmaHLimMPa)
	rq.Equal(450.0, res.Pinion.SigmaFLimMPa)
	rq.Equal(530.0, res.Wheel.SigmaHLimMPa)
	rq.InDelta(414.0, res.Wheel.SigmaFLimMPa, 1e-12)

	nhe1 := 60.0 * 5 * 300 * 8 * 2 * 1500
	rq.Equal(nhe1, res.Pinion.NHE)
	rq.Equal(nhe1/4, res.Wheel.NHE)
	rq.InDelta(30*math.Pow(250, 2.4), res.Pinion.NHO, 1e-6)
	rq.InDelta(math.Pow(res.Pinion.NHO/nhe1, 1.0/6), res.Pinion.KHL, 1e-12)
	rq.InDelta(math.Pow(res.Wheel.NHO/(nhe1/4), 1.0/6), res.Wheel.KHL, 1e-12)
}

func TestCalculateValidation(t *testing.T) {
	valid := bevel.Input{
		Driver:    catalog.Steel40XH,
		Driven:    catalog.Steel50X,
		HB1:       250,
		HB2:       230,
		LifeYears: 5,
		U1:        4,
	}

	testCases := []struct {
		name   string
		mutate func(*bevel.Input)
	}{
		{name: "equal hardness", mutate: func(in *bevel.Input) { in.HB1, in.HB2 = 230, 230 }},
		{name: "gap below ten", mutate: func(in *bevel.Input) { in.HB1, in.HB2 = 239, 230 }},
		{name: "missing driver", mutate: func(in *bevel.Input) { in.Driver = "" }},
		{name: "missing driven", mutate: func(in *bevel.Input) { in.Driven = "" }},
		{name: "unknown material", mutate: func(in *bevel.Input) { in.Driven = "steel45" }},
		{name: "hardness out of band", mutate: func(in *bevel.Input) { in.HB1, in.HB2 = 360, 300 }},
		{name: "no design life", mutate: func(in *bevel.Input) { in.LifeYears = 0 }},
		{name: "u1 unsolved", mutate: func(in *bevel.Input) { in.U1 = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := bevel.Calculate(in)
			require.True(t, calc.IsValidation(err), "got %v", err)
		})
	}
}
