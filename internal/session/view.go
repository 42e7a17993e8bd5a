package session

import (
	"fmt"

	"github.com/samber/lo"

	"Drivecalc/internal/catalog"
)

// View is what a host renders for one session: the stored state plus the
// derived labels of the current stage.
type View struct {
	Code       string `json:"code"`
	StageName  string `json:"stage_name"`
	StageTitle string `json:"stage_title"`
	Progress   string `json:"progress"`
	Complete   bool   `json:"complete"`
	// Materials lists the selectable catalog materials with their hardness
	// bands; it is only filled on the bevel and spur stages.
	Materials []catalog.MaterialEntry `json:"materials,omitempty"`
	CalculatorSession
}

func NewView(code string, s CalculatorSession) View {
	v := View{
		Code:              code,
		StageName:         s.Stage.String(),
		StageTitle:        s.Stage.Title(),
		Progress:          fmt.Sprintf("%d/%d", int(s.Stage), StageCount),
		Complete:          s.Complete(),
		CalculatorSession: s,
	}
	if lo.Contains([]Stage{StageBevelDesign, StageSpurDesign}, s.Stage) {
		v.Materials = catalog.Materials()
	}
	return v
}
