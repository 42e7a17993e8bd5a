package spur

import (
	"Drivecalc/internal/calc"
	"Drivecalc/internal/catalog"
)

type Input struct {
	Driver catalog.MaterialID `json:"driver" validate:"required"`
	Driven catalog.MaterialID `json:"driven" validate:"required"`
}

type Result struct {
	Driver catalog.MaterialEntry `json:"driver"`
	Driven catalog.MaterialEntry `json:"driven"`
}

// Calculate only resolves the material pair.
// TODO: size the cylindrical stage (contact and bending checks) once the
// allowable-stress formulas for it are documented.
func Calculate(in Input) (Result, error) {
	if in.Driver == "" || in.Driven == "" {
		return Result{}, calc.Invalid("select materials for both spur gears")
	}
	m1, ok := catalog.Material(in.Driver)
	if !ok {
		return Result{}, calc.Invalid("unknown material %q", in.Driver)
	}
	m2, ok := catalog.Material(in.Driven)
	if !ok {
		return Result{}, calc.Invalid("unknown material %q", in.Driven)
	}
	return Result{Driver: m1, Driven: m2}, nil
}
