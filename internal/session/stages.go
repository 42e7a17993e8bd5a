package session

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"Drivecalc/internal/calc"
	"Drivecalc/internal/calc/bevel"
	"Drivecalc/internal/calc/chain"
	"Drivecalc/internal/calc/characteristic"
	"Drivecalc/internal/calc/efficiency"
	"Drivecalc/internal/calc/ratio"
	"Drivecalc/internal/calc/split"
	"Drivecalc/internal/calc/spur"
	"Drivecalc/internal/catalog"
)

// outcome is what leaving a stage produces. Nothing is applied until the
// whole calculation has succeeded.
type outcome struct {
	records []ResultEntry
	apply   func(s *CalculatorSession)
}

func (o *outcome) record(name, data string) {
	o.records = append(o.records, ResultEntry{Name: name, Data: data})
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

// evaluate runs the calculator bound to stage against the current state.
func (s *CalculatorSession) evaluate(stage Stage) (outcome, error) {
	var (
		out outcome
		err error
	)
	switch stage {
	case StageInputs:
	case StageEfficiency:
		err = s.evalEfficiency(&out)
	case StageRatioSplit:
		err = s.evalRatio(&out)
	case StageTuningParams:
		err = s.evalSplit(&out)
	case StageCharacteristics:
		err = s.evalCharacteristic(&out)
	case StageBevelDesign:
		err = s.evalBevel(&out)
	case StageSpurDesign:
		err = s.evalSpur(&out)
	case StageChainDesign:
		err = s.evalChain(&out)
	default:
		return outcome{}, errors.Errorf("unknown stage %d", int(stage))
	}
	if err != nil {
		var v *calc.ValidationError
		if errors.As(err, &v) {
			return outcome{}, &ValidationError{Stage: stage, Msg: v.Msg}
		}
		return outcome{}, errors.Wrapf(err, "stage %s", stage)
	}
	return out, nil
}

func (s *CalculatorSession) evalEfficiency(out *outcome) error {
	factors := lo.Map(s.Efficiency, func(r WorkingRow, _ int) efficiency.Factor {
		c, _ := catalog.EfficiencyAt(r.Entry)
		return efficiency.Factor{Label: r.Label, Element: c.Element, Value: r.Value}
	})
	res, err := efficiency.Calculate(efficiency.Input{PowerKW: s.PowerKW, Factors: factors})
	if err != nil {
		return err
	}
	for _, f := range res.Factors {
		out.record(f.Label, f3(f.Value))
	}
	out.record("eta_sys", f3(res.Eta))
	if res.Unbounded {
		out.record("P_ct", "∞")
	} else {
		out.record("P_ct", f3(res.CorrectedPowerKW))
	}
	return nil
}

func (s *CalculatorSession) evalRatio(out *outcome) error {
	stages := lo.Map(s.Ratios, func(r WorkingRow, _ int) ratio.Stage {
		return ratio.Stage{Label: r.Label, Value: r.Value}
	})
	res, err := ratio.Calculate(ratio.Input{SpeedRPM: s.SpeedRPM, Stages: stages})
	if err != nil {
		return err
	}
	for _, st := range res.Stages {
		out.record(st.Label, f1(st.Value))
	}
	out.record("u_ch", f3(res.OverallRatio))
	out.record("n_sb", f3(res.OutputSpeedRPM))
	return nil
}

func (s *CalculatorSession) evalSplit(out *outcome) error {
	uH, ok := s.ratioOf(catalog.ReducerRatio)
	if !ok {
		return calc.Invalid("reducer ratio row is missing")
	}
	res, err := split.Calculate(split.Input{
		ReducerRatio: uH,
		Kbe:          s.Tuning.Kbe,
		CK:           s.Tuning.CK,
		PsiBdMax:     s.Tuning.PsiBdMax,
	})
	if err != nil {
		return err
	}
	out.record("u1", f3(res.U1))
	out.record("u2", f3(res.U2))
	out.apply = func(s *CalculatorSession) {
		s.U1 = lo.ToPtr(res.U1)
		s.U2 = lo.ToPtr(res.U2)
	}
	return nil
}

func (s *CalculatorSession) evalCharacteristic(out *outcome) error {
	var e characteristic.Efficiencies
	for _, p := range []struct {
		el  catalog.Element
		dst *float64
	}{
		{catalog.CylindricalGear, &e.CylindricalGear},
		{catalog.BevelGear, &e.BevelGear},
		{catalog.ChainDrive, &e.ChainDrive},
		{catalog.BearingPair, &e.BearingPair},
	} {
		v, ok := s.efficiencyOf(p.el)
		if !ok {
			return calc.Invalid("efficiency row %s is missing", p.el)
		}
		*p.dst = v
	}

	res, err := characteristic.Calculate(characteristic.Input{
		PowerKW:      s.PowerKW,
		SpeedRPM:     s.SpeedRPM,
		Efficiencies: e,
		U1:           s.U1,
		U2:           s.U2,
	})
	if err != nil {
		return err
	}
	for _, r := range res.Rows {
		out.record(r.Shaft, "P="+f3(r.PowerKW)+" n="+f3(r.SpeedRPM)+" T="+strconv.FormatInt(r.TorqueNmm, 10))
	}
	out.apply = func(s *CalculatorSession) {
		s.Characteristic = res.Rows
	}
	return nil
}

func (s *CalculatorSession) evalBevel(out *outcome) error {
	res, err := bevel.Calculate(bevel.Input{
		Driver:    s.Bevel.Driver,
		Driven:    s.Bevel.Driven,
		HB1:       s.Bevel.HB1,
		HB2:       s.Bevel.HB2,
		LifeYears: s.LifeYears,
		U1:        lo.FromPtr(s.U1),
	})
	if err != nil {
		return err
	}
	out.record("sigmaH_lim1", f1(res.Pinion.SigmaHLimMPa))
	out.record("sigmaH_lim2", f1(res.Wheel.SigmaHLimMPa))
	out.record("sigmaF_lim1", f1(res.Pinion.SigmaFLimMPa))
	out.record("sigmaF_lim2", f1(res.Wheel.SigmaFLimMPa))
	out.record("K_HL1", f3(res.Pinion.KHL))
	out.record("K_HL2", f3(res.Wheel.KHL))
	out.apply = func(s *CalculatorSession) {
		s.BevelResult = &res
	}
	return nil
}

func (s *CalculatorSession) evalSpur(out *outcome) error {
	res, err := spur.Calculate(spur.Input{Driver: s.Spur.Driver, Driven: s.Spur.Driven})
	if err != nil {
		return err
	}
	out.record("spur", res.Driver.Label+","+res.Driven.Label)
	return nil
}

func (s *CalculatorSession) evalChain(out *outcome) error {
	ux, ok := s.ratioOf(catalog.ChainRatio)
	if !ok {
		return calc.Invalid("chain ratio row is missing")
	}
	res, err := chain.Calculate(chain.Input{Ratio: ux})
	if err != nil {
		return err
	}
	out.record("chain_z1", strconv.Itoa(res.DriveTeeth))
	out.record("chain_z2", strconv.Itoa(res.DrivenTeeth))
	out.apply = func(s *CalculatorSession) {
		s.ChainZ1 = lo.ToPtr(res.DriveTeeth)
		s.ChainZ2 = lo.ToPtr(res.DrivenTeeth)
	}
	return nil
}
