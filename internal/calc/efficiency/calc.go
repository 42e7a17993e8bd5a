package efficiency

import (
	"Drivecalc/internal/calc"
	"Drivecalc/internal/catalog"
)

type Factor struct {
	Label   string          `json:"label" validate:"required"`
	Element catalog.Element `json:"element"`
	Value   float64         `json:"value" validate:"gte=0,lte=1"`
}

type Input struct {
	PowerKW float64  `json:"power_kw" validate:"gte=0"`
	Factors []Factor `json:"factors" validate:"required,min=1,dive"`
}

type Result struct {
	// Factors holds each row value as multiplied in, bearing pairs already cubed.
	Factors          []Factor `json:"factors"`
	Eta              float64  `json:"eta"`
	CorrectedPowerKW float64  `json:"corrected_power_kw"`
	// Unbounded is set when eta is not positive; CorrectedPowerKW is then meaningless.
	Unbounded bool `json:"unbounded"`
}

func Calculate(in Input) (Result, error) {
	if len(in.Factors) == 0 {
		return Result{}, calc.Invalid("no efficiency rows")
	}
	if in.PowerKW < 0 {
		return Result{}, calc.Invalid("power must not be negative")
	}

	eta := 1.0
	out := make([]Factor, 0, len(in.Factors))
	for _, f := range in.Factors {
		v := f.Value
		if f.Element.IsBearingPair() {
			v = v * v * v // три пары подшипников последовательно
		}
		eta *= v
		out = append(out, Factor{Label: f.Label, Element: f.Element, Value: v})
	}

	res := Result{Factors: out, Eta: eta}
	if eta <= 0 {
		res.Unbounded = true
		return res, nil
	}
	res.CorrectedPowerKW = in.PowerKW / eta
	return res, nil
}
