package chain

import (
	"math"

	"Drivecalc/internal/calc"
)

type Input struct {
	Ratio float64 `json:"ratio" validate:"gt=0"`
}

type Result struct {
	DriveTeeth  int     `json:"z1"`
	DrivenTeeth int     `json:"z2"`
	Ratio       float64 `json:"ratio"`
}

// Calculate picks sprocket tooth counts: z1 = ⌊29 − 2·u⌋, z2 = round(z1·u).
func Calculate(in Input) (Result, error) {
	if in.Ratio <= 0 {
		return Result{}, calc.Invalid("chain ratio must be positive")
	}
	z1 := math.Floor(29 - 2*in.Ratio)
	if z1 < 1 {
		return Result{}, calc.Invalid("chain ratio %g leaves no teeth on the drive sprocket", in.Ratio)
	}
	z2 := math.Round(z1 * in.Ratio)
	return Result{DriveTeeth: int(z1), DrivenTeeth: int(z2), Ratio: in.Ratio}, nil
}
