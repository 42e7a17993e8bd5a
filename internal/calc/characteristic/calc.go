package characteristic

import (
	"math"

	"Drivecalc/internal/calc"
)

// MotorSpeedRPM is the reference speed of shaft I.
const MotorSpeedRPM = 1500.0

var Fields = []string{"Shaft", "P", "n", "T"}

type Efficiencies struct {
	CylindricalGear float64 `json:"cylindrical_gear" validate:"gt=0,lte=1"`
	BevelGear       float64 `json:"bevel_gear" validate:"gt=0,lte=1"`
	ChainDrive      float64 `json:"chain_drive" validate:"gt=0,lte=1"`
	// BearingPair is the raw per-pair factor; it is cubed here.
	BearingPair float64 `json:"bearing_pair" validate:"gt=0,lte=1"`
}

type Input struct {
	PowerKW      float64      `json:"power_kw" validate:"gte=0"`
	SpeedRPM     float64      `json:"speed_rpm" validate:"gte=0"`
	Efficiencies Efficiencies `json:"efficiencies"`
	// U1 and U2 are nil until the ratio split has been solved.
	U1 *float64 `json:"u1,omitempty"`
	U2 *float64 `json:"u2,omitempty"`
}

type Row struct {
	Shaft     string  `json:"shaft"`
	PowerKW   float64 `json:"power_kw"`
	SpeedRPM  float64 `json:"speed_rpm"`
	TorqueNmm int64   `json:"torque_nmm"`
}

type Result struct {
	Fields []string `json:"fields"`
	Rows   []Row    `json:"rows"`
}

// Torque returns round(9.55e6·P/n) in N·mm, or 0 for a stopped shaft.
func Torque(powerKW, speedRPM float64) int64 {
	if speedRPM == 0 {
		return 0
	}
	return int64(math.Round(9.55e6 * powerKW / speedRPM))
}

// Calculate builds the four-row shaft table in the fixed order I, II, III, Load.
func Calculate(in Input) (Result, error) {
	e := in.Efficiencies
	if e.CylindricalGear <= 0 || e.BevelGear <= 0 || e.ChainDrive <= 0 || e.BearingPair <= 0 {
		return Result{}, calc.Invalid("efficiency factors must be positive")
	}
	if in.PowerKW < 0 || in.SpeedRPM < 0 {
		return Result{}, calc.Invalid("power and speed must not be negative")
	}

	bearings := e.BearingPair * e.BearingPair * e.BearingPair
	p3 := in.PowerKW / (e.ChainDrive * bearings)
	p2 := p3 / (e.CylindricalGear * bearings)
	p1 := p2 / (e.BevelGear * bearings)

	n1 := MotorSpeedRPM
	n2 := 0.0
	if in.U1 != nil && *in.U1 > 0 {
		n2 = n1 / *in.U1
	}
	n3 := 0.0
	if in.U2 != nil && *in.U2 > 0 {
		n3 = n2 / *in.U2
	}

	rows := []Row{
		{Shaft: "I", PowerKW: p1, SpeedRPM: n1, TorqueNmm: Torque(p1, n1)},
		{Shaft: "II", PowerKW: p2, SpeedRPM: n2, TorqueNmm: Torque(p2, n2)},
		{Shaft: "III", PowerKW: p3, SpeedRPM: n3, TorqueNmm: Torque(p3, n3)},
		{Shaft: "Load", PowerKW: in.PowerKW, SpeedRPM: in.SpeedRPM, TorqueNmm: Torque(in.PowerKW, in.SpeedRPM)},
	}
	return Result{Fields: append([]string(nil), Fields...), Rows: rows}, nil
}
