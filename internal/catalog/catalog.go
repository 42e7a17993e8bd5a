// Package catalog holds the static reference tables the drivetrain
// calculation draws its selectable values from. Tables are loaded once and
// never mutated; accessors hand out copies.
package catalog

import (
	"fmt"
	"math"
	"slices"
)

type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (r Range) Mid() float64 {
	return (r.Low + r.High) / 2
}

func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("%g–%g", r.Low, r.High)
}

// Element identifies a transmission element in the efficiency chain.
type Element int

const (
	CylindricalGear Element = iota
	BevelGear
	ChainDrive
	BearingPair
)

func (e Element) String() string {
	switch e {
	case CylindricalGear:
		return "cylindrical_gear"
	case BevelGear:
		return "bevel_gear"
	case ChainDrive:
		return "chain_drive"
	case BearingPair:
		return "bearing_pair"
	}
	return fmt.Sprintf("element(%d)", int(e))
}

type EfficiencyEntry struct {
	Element  Element `json:"element"`
	Label    string  `json:"label"`
	Enclosed Range   `json:"enclosed"`
	Open     Range   `json:"open"`
}

// Three bearing pairs sit in series on the shafts, so their factor is cubed.
func (e Element) IsBearingPair() bool {
	return e == BearingPair
}

// RatioKind identifies a stage of the overall transmission ratio.
type RatioKind int

const (
	ReducerRatio RatioKind = iota
	ChainRatio
)

func (k RatioKind) String() string {
	switch k {
	case ReducerRatio:
		return "reducer"
	case ChainRatio:
		return "chain"
	}
	return fmt.Sprintf("ratio(%d)", int(k))
}

type RatioEntry struct {
	Kind  RatioKind `json:"kind"`
	Label string    `json:"label"`
	Range Range     `json:"range"`
}

type MaterialID string

const (
	Steel40XH MaterialID = "40XH"
	Steel50X  MaterialID = "50X"
)

type MaterialEntry struct {
	ID       MaterialID `json:"id"`
	Label    string     `json:"label"`
	Hardness Range      `json:"hardness"`
}

// Order matters: row indices in a session refer to positions in these tables.
var efficiency = []EfficiencyEntry{
	{Element: CylindricalGear, Label: "Cylindrical gear drive", Enclosed: Range{0.96, 0.98}, Open: Range{0.94, 0.97}},
	{Element: BevelGear, Label: "Bevel gear drive", Enclosed: Range{0.95, 0.97}, Open: Range{0.93, 0.96}},
	{Element: ChainDrive, Label: "Chain drive", Enclosed: Range{0.92, 0.96}, Open: Range{0.90, 0.94}},
	{Element: BearingPair, Label: "Rolling bearing pair", Enclosed: Range{0.97, 0.99}, Open: Range{0.97, 0.99}},
}

var ratios = []RatioEntry{
	{Kind: ReducerRatio, Label: "Two-stage bevel-cylindrical reducer", Range: Range{8, 20}},
	{Kind: ChainRatio, Label: "Chain transmission", Range: Range{3, 6}},
}

var materials = []MaterialEntry{
	{ID: Steel40XH, Label: "Steel 40XH", Hardness: Range{200, 350}},
	{ID: Steel50X, Label: "Steel 50X", Hardness: Range{180, 330}},
}

func Efficiency() []EfficiencyEntry { return slices.Clone(efficiency) }

func Ratios() []RatioEntry { return slices.Clone(ratios) }

// Materials lists the gear steels; bevel and spur stages share it.
func Materials() []MaterialEntry { return slices.Clone(materials) }

func EfficiencyAt(i int) (EfficiencyEntry, bool) {
	if i < 0 || i >= len(efficiency) {
		return EfficiencyEntry{}, false
	}
	return efficiency[i], true
}

func RatioAt(i int) (RatioEntry, bool) {
	if i < 0 || i >= len(ratios) {
		return RatioEntry{}, false
	}
	return ratios[i], true
}

// IndexOfElement returns the efficiency table position of e, or -1.
func IndexOfElement(e Element) int {
	return slices.IndexFunc(efficiency, func(c EfficiencyEntry) bool { return c.Element == e })
}

// IndexOfRatio returns the ratio table position of k, or -1.
func IndexOfRatio(k RatioKind) int {
	return slices.IndexFunc(ratios, func(c RatioEntry) bool { return c.Kind == k })
}

func Material(id MaterialID) (MaterialEntry, bool) {
	i := slices.IndexFunc(materials, func(m MaterialEntry) bool { return m.ID == id })
	if i < 0 {
		return MaterialEntry{}, false
	}
	return materials[i], true
}

// Round rounds v to the given number of decimals, matching how default
// row values are displayed.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
