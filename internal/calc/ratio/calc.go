package ratio

import "Drivecalc/internal/calc"

type Stage struct {
	Label string  `json:"label" validate:"required"`
	Value float64 `json:"value" validate:"gt=0"`
}

type Input struct {
	SpeedRPM float64 `json:"speed_rpm" validate:"gte=0"`
	Stages   []Stage `json:"stages" validate:"required,min=1,dive"`
}

type Result struct {
	Stages         []Stage `json:"stages"`
	OverallRatio   float64 `json:"overall_ratio"`
	OutputSpeedRPM float64 `json:"output_speed_rpm"`
}

// Calculate multiplies the stage ratios into the overall chain ratio u_ch
// and scales the working-member speed by it.
func Calculate(in Input) (Result, error) {
	if len(in.Stages) == 0 {
		return Result{}, calc.Invalid("no transmission ratio rows")
	}
	u := 1.0
	for _, s := range in.Stages {
		if s.Value <= 0 {
			return Result{}, calc.Invalid("ratio %q must be positive", s.Label)
		}
		u *= s.Value
	}
	stages := make([]Stage, len(in.Stages))
	copy(stages, in.Stages)
	return Result{
		Stages:         stages,
		OverallRatio:   u,
		OutputSpeedRPM: in.SpeedRPM * u,
	}, nil
}
