package bevel

import (
	"math"

	"Drivecalc/internal/calc"
	"Drivecalc/internal/catalog"
)

// Duty cycle behind the equivalent cycle count: 300 days a year, two
// eight-hour shifts, pinion shaft at the reference 1500 rev/min.
const (
	workDaysPerYear = 300
	hoursPerShift   = 8
	shiftsPerDay    = 2
	pinionSpeedRPM  = 1500
)

// MinHardnessGap is how much harder the pinion must be than the wheel.
const MinHardnessGap = 10.0

type Input struct {
	Driver    catalog.MaterialID `json:"driver" validate:"required"`
	Driven    catalog.MaterialID `json:"driven" validate:"required"`
	HB1       float64            `json:"hb1" validate:"gt=0"`
	HB2       float64            `json:"hb2" validate:"gt=0"`
	LifeYears float64            `json:"life_years" validate:"gt=0"`
	U1        float64            `json:"u1" validate:"gt=0"`
}

type Member struct {
	SigmaHLimMPa float64 `json:"sigma_h_lim_mpa"`
	SigmaFLimMPa float64 `json:"sigma_f_lim_mpa"`
	NHO          float64 `json:"n_ho"`
	NHE          float64 `json:"n_he"`
	KHL          float64 `json:"k_hl"`
}

type Result struct {
	Pinion Member `json:"pinion"`
	Wheel  Member `json:"wheel"`
}

func Calculate(in Input) (Result, error) {
	if in.Driver == "" || in.Driven == "" {
		return Result{}, calc.Invalid("select materials for both bevel gears")
	}
	m1, ok := catalog.Material(in.Driver)
	if !ok {
		return Result{}, calc.Invalid("unknown material %q", in.Driver)
	}
	m2, ok := catalog.Material(in.Driven)
	if !ok {
		return Result{}, calc.Invalid("unknown material %q", in.Driven)
	}
	if in.HB1 < in.HB2+MinHardnessGap {
		return Result{}, calc.Invalid("HB1 must be at least HB2+%g (HB1=%g, HB2=%g)", MinHardnessGap, in.HB1, in.HB2)
	}
	if !m1.Hardness.Contains(in.HB1) {
		return Result{}, calc.Invalid("HB1=%g is outside %s range %s", in.HB1, m1.Label, m1.Hardness)
	}
	if !m2.Hardness.Contains(in.HB2) {
		return Result{}, calc.Invalid("HB2=%g is outside %s range %s", in.HB2, m2.Label, m2.Hardness)
	}
	if in.LifeYears <= 0 {
		return Result{}, calc.Invalid("design life L must be positive")
	}
	if in.U1 <= 0 {
		return Result{}, calc.Invalid("ratio u1 is not solved yet")
	}

	nhe1 := EquivalentCycles(in.LifeYears)
	return Result{
		Pinion: member(in.HB1, nhe1),
		Wheel:  member(in.HB2, nhe1/in.U1),
	}, nil
}

// EquivalentCycles is N_HE for the pinion over the design life.
func EquivalentCycles(lifeYears float64) float64 {
	return 60 * lifeYears * workDaysPerYear * hoursPerShift * shiftsPerDay * pinionSpeedRPM
}

func member(hb, nhe float64) Member {
	nho := 30 * math.Pow(hb, 2.4)
	return Member{
		SigmaHLimMPa: 2*hb + 70,
		SigmaFLimMPa: 1.8 * hb,
		NHO:          nho,
		NHE:          nhe,
		KHL:          math.Pow(nho/nhe, 1.0/6),
	}
}
