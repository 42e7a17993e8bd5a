// Package split divides the overall reducer ratio u_H between the bevel and
// cylindrical stages so that both stages carry a balanced contact load.
//
// The first-stage ratio m = u1 is the root of
//
//	f(m) = λ·c_K·m³ / (4·u_H²·(u_H+m)) − 1,   λ = 2.25·ψ_bd / ((1−K_be)·K_be)
//
// found by bisection. For positive coefficients f is strictly increasing
// in m, so a sign change across the search interval brackets exactly one
// root. Bisect refuses to run without that sign change.
package split

import (
	"math"

	"github.com/pkg/errors"

	"Drivecalc/internal/calc"
)

const (
	Lo         = 1e-3
	Hi         = 1e3
	Iterations = 50
)

// ErrNoBracket means f does not change sign over the search interval, so
// any midpoint bisection returned would be meaningless.
var ErrNoBracket = errors.New("root is not bracketed by the search interval")

type Input struct {
	ReducerRatio float64 `json:"reducer_ratio" validate:"gt=0"`
	Kbe          float64 `json:"k_be" validate:"gt=0,lt=1"`
	CK           float64 `json:"c_k" validate:"gt=0"`
	PsiBdMax     float64 `json:"psi_bd_max" validate:"gt=0"`
}

type Result struct {
	Lambda float64 `json:"lambda"`
	U1     float64 `json:"u1"`
	U2     float64 `json:"u2"`
	// Residual is f(U1).
	Residual float64 `json:"residual"`
}

// Bisect halves [lo, hi] exactly iterations times and returns the last
// midpoint. It requires f(lo) < 0 < f(hi).
func Bisect(f func(float64) float64, lo, hi float64, iterations int) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) || !(flo < 0 && fhi > 0) {
		return 0, errors.Wrapf(ErrNoBracket, "f(%g)=%g, f(%g)=%g", lo, flo, hi, fhi)
	}
	m := lo
	for i := 0; i < iterations; i++ {
		m = (lo + hi) / 2
		if f(m) > 0 {
			hi = m
		} else {
			lo = m
		}
	}
	return m, nil
}

// Lambda is the load-distribution coefficient λ.
func Lambda(kbe, psiBdMax float64) float64 {
	return 2.25 * psiBdMax / ((1 - kbe) * kbe)
}

// Residual builds f for the given inputs.
func Residual(in Input) func(float64) float64 {
	lambda := Lambda(in.Kbe, in.PsiBdMax)
	uH := in.ReducerRatio
	return func(m float64) float64 {
		return lambda*in.CK*m*m*m/(4*uH*uH*(uH+m)) - 1
	}
}

func Calculate(in Input) (Result, error) {
	if in.ReducerRatio <= 0 {
		return Result{}, calc.Invalid("reducer ratio u_H must be positive")
	}
	if in.Kbe <= 0 || in.Kbe >= 1 {
		return Result{}, calc.Invalid("K_be must lie in (0, 1)")
	}
	if in.CK <= 0 || in.PsiBdMax <= 0 {
		return Result{}, calc.Invalid("c_K and psi_bd_max must be positive")
	}

	f := Residual(in)
	m, err := Bisect(f, Lo, Hi, Iterations)
	if err != nil {
		return Result{}, errors.Wrapf(err, "split u_H=%g", in.ReducerRatio)
	}
	return Result{
		Lambda:   Lambda(in.Kbe, in.PsiBdMax),
		U1:       m,
		U2:       in.ReducerRatio / m,
		Residual: f(m),
	}, nil
}
