// Package session holds the state of one drivetrain calculation and the
// stage machine that walks it through the eight design steps.
package session

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"Drivecalc/internal/calc/bevel"
	"Drivecalc/internal/calc/characteristic"
	"Drivecalc/internal/catalog"
)

type Stage int

const (
	StageInputs Stage = iota + 1
	StageEfficiency
	StageRatioSplit
	StageTuningParams
	StageCharacteristics
	StageBevelDesign
	StageSpurDesign
	StageChainDesign
)

const (
	FirstStage = StageInputs
	LastStage  = StageChainDesign
	StageCount = int(LastStage)
)

var stageNames = [...]string{
	StageInputs:          "Inputs",
	StageEfficiency:      "Efficiency",
	StageRatioSplit:      "RatioSplit",
	StageTuningParams:    "TuningParams",
	StageCharacteristics: "Characteristics",
	StageBevelDesign:     "BevelDesign",
	StageSpurDesign:      "SpurDesign",
	StageChainDesign:     "ChainDesign",
}

var stageTitles = [...]string{
	StageInputs:          "Input data",
	StageEfficiency:      "Efficiency",
	StageRatioSplit:      "Transmission ratio",
	StageTuningParams:    "K and ψ",
	StageCharacteristics: "Characteristic table",
	StageBevelDesign:     "Bevel gear design",
	StageSpurDesign:      "Spur gear design",
	StageChainDesign:     "Chain design",
}

func (s Stage) Valid() bool {
	return s >= FirstStage && s <= LastStage
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) Title() string {
	if !s.Valid() {
		return ""
	}
	return stageTitles[s]
}

func ParseStage(name string) (Stage, bool) {
	for s := FirstStage; s <= LastStage; s++ {
		if stageNames[s] == name {
			return s, true
		}
	}
	return 0, false
}

type InputField string

const (
	InputPower InputField = "P"
	InputSpeed InputField = "n"
	InputLife  InputField = "L"
)

type Table string

const (
	TableEfficiency Table = "efficiency"
	TableRatio      Table = "ratio"
)

type TuningParam string

const (
	ParamKbe      TuningParam = "K_be"
	ParamCK       TuningParam = "c_K"
	ParamPsiBa    TuningParam = "psi_ba"
	ParamPsiBdMax TuningParam = "psi_bd_max"
)

type Slot string

const (
	SlotDriver Slot = "driver"
	SlotDriven Slot = "driven"
)

// WorkingRow is an editable value drawn from a catalog entry. Value always
// lies within Bounds.
type WorkingRow struct {
	Entry     int            `json:"entry"`
	Label     string         `json:"label"`
	Bounds    catalog.Range  `json:"bounds"`
	Reference *catalog.Range `json:"reference,omitempty"`
	Value     float64        `json:"value"`
}

type Tuning struct {
	Kbe      float64 `json:"K_be"`
	CK       float64 `json:"c_K"`
	PsiBa    float64 `json:"psi_ba"`
	PsiBdMax float64 `json:"psi_bd_max"`
}

var DefaultTuning = Tuning{Kbe: 0.27, CK: 1.05, PsiBa: 0.3, PsiBdMax: 0.6}

type MaterialPair struct {
	Driver catalog.MaterialID `json:"driver,omitempty"`
	Driven catalog.MaterialID `json:"driven,omitempty"`
}

func (p MaterialPair) get(slot Slot) catalog.MaterialID {
	if slot == SlotDriver {
		return p.Driver
	}
	return p.Driven
}

func (p *MaterialPair) set(slot Slot, id catalog.MaterialID) {
	if slot == SlotDriver {
		p.Driver = id
	} else {
		p.Driven = id
	}
}

type BevelSelection struct {
	MaterialPair
	HB1 float64 `json:"hb1"`
	HB2 float64 `json:"hb2"`
}

func (b *BevelSelection) hardness(slot Slot) *float64 {
	if slot == SlotDriver {
		return &b.HB1
	}
	return &b.HB2
}

// CalculatorSession is the whole persisted state of one calculation.
type CalculatorSession struct {
	Version   int     `json:"version"`
	PowerKW   float64 `json:"P"`
	SpeedRPM  float64 `json:"n"`
	LifeYears float64 `json:"L"`
	Stage     Stage   `json:"stage"`

	Efficiency []WorkingRow `json:"efficiency_rows"`
	Ratios     []WorkingRow `json:"ratio_rows"`
	Tuning     Tuning       `json:"tuning"`

	U1             *float64             `json:"u1"`
	U2             *float64             `json:"u2"`
	Characteristic []characteristic.Row `json:"characteristic"`

	Bevel       BevelSelection `json:"bevel"`
	BevelResult *bevel.Result  `json:"bevel_result,omitempty"`
	Spur        MaterialPair   `json:"spur"`
	ChainZ1     *int           `json:"chain_z1"`
	ChainZ2     *int           `json:"chain_z2"`

	Results Results `json:"results"`
}

// New returns a session at the first stage with catalog defaults.
func New() CalculatorSession {
	return CalculatorSession{
		Version:    snapshotVersion,
		Stage:      StageInputs,
		Efficiency: defaultEfficiencyRows(),
		Ratios:     defaultRatioRows(),
		Tuning:     DefaultTuning,
	}
}

func defaultEfficiencyRows() []WorkingRow {
	return lo.Map(catalog.Efficiency(), func(c catalog.EfficiencyEntry, i int) WorkingRow {
		ref := c.Enclosed
		return WorkingRow{
			Entry:     i,
			Label:     c.Label,
			Bounds:    c.Open,
			Reference: &ref,
			Value:     catalog.Round(c.Open.Mid(), 3),
		}
	})
}

func defaultRatioRows() []WorkingRow {
	return lo.Map(catalog.Ratios(), func(c catalog.RatioEntry, i int) WorkingRow {
		return WorkingRow{
			Entry:  i,
			Label:  c.Label,
			Bounds: c.Range,
			Value:  catalog.Round(c.Range.Mid(), 1),
		}
	})
}

// Clone returns a deep copy.
func (s *CalculatorSession) Clone() CalculatorSession {
	out := *s
	out.Efficiency = cloneRows(s.Efficiency)
	out.Ratios = cloneRows(s.Ratios)
	out.U1 = clonePtr(s.U1)
	out.U2 = clonePtr(s.U2)
	out.Characteristic = slices.Clone(s.Characteristic)
	out.BevelResult = clonePtr(s.BevelResult)
	out.ChainZ1 = clonePtr(s.ChainZ1)
	out.ChainZ2 = clonePtr(s.ChainZ2)
	out.Results = s.Results.Clone()
	return out
}

func cloneRows(rows []WorkingRow) []WorkingRow {
	out := slices.Clone(rows)
	for i := range out {
		out[i].Reference = clonePtr(out[i].Reference)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *CalculatorSession) rows(t Table) ([]WorkingRow, bool) {
	switch t {
	case TableEfficiency:
		return s.Efficiency, true
	case TableRatio:
		return s.Ratios, true
	}
	return nil, false
}

// efficiencyOf returns the row value for the given element.
func (s *CalculatorSession) efficiencyOf(e catalog.Element) (float64, bool) {
	return rowValue(s.Efficiency, catalog.IndexOfElement(e))
}

// ratioOf returns the row value for the given ratio kind.
func (s *CalculatorSession) ratioOf(k catalog.RatioKind) (float64, bool) {
	return rowValue(s.Ratios, catalog.IndexOfRatio(k))
}

func rowValue(rows []WorkingRow, entry int) (float64, bool) {
	if entry < 0 {
		return 0, false
	}
	for _, r := range rows {
		if r.Entry == entry {
			return r.Value, true
		}
	}
	return 0, false
}

// rowDecimals is the editing step of a table: values are kept on the same
// grid they are recorded with.
func rowDecimals(t Table) int {
	if t == TableRatio {
		return 1
	}
	return 3
}

// Complete reports whether the final chain stage has been resolved.
func (s *CalculatorSession) Complete() bool {
	return s.Stage == LastStage && s.ChainZ1 != nil
}
