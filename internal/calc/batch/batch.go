// Package batch runs the whole eight-stage pipeline without interaction,
// one in-memory session per input set.
package batch

import (
	"context"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"Drivecalc/internal/calc"
	"Drivecalc/internal/catalog"
	"Drivecalc/internal/session"
)

// MaxItems caps one batch request.
const MaxItems = 500

// Default material choices when an item leaves them empty.
const (
	DefaultDriver = catalog.Steel40XH
	DefaultDriven = catalog.Steel50X
)

// Item is one set of inputs. Zero hardness keeps the midpoint of the
// material's band.
type Item struct {
	PowerKW     float64            `json:"P" validate:"gte=0"`
	SpeedRPM    float64            `json:"n" validate:"gte=0"`
	LifeYears   float64            `json:"L" validate:"gte=0"`
	BevelDriver catalog.MaterialID `json:"bevel_driver,omitempty"`
	BevelDriven catalog.MaterialID `json:"bevel_driven,omitempty"`
	HB1         float64            `json:"hb1,omitempty" validate:"gte=0"`
	HB2         float64            `json:"hb2,omitempty" validate:"gte=0"`
	SpurDriver  catalog.MaterialID `json:"spur_driver,omitempty"`
	SpurDriven  catalog.MaterialID `json:"spur_driven,omitempty"`
}

type Input struct {
	Items []Item `json:"items" validate:"required,min=1,max=500,dive"`
}

type ItemResult struct {
	Index    int                   `json:"index"`
	Stage    string                `json:"stage"`
	Complete bool                  `json:"complete"`
	Results  []session.ResultEntry `json:"results"`
	Error    string                `json:"error,omitempty"`
}

type Result struct {
	Completed int          `json:"completed"`
	Items     []ItemResult `json:"items"`
}

func (it Item) withDefaults() Item {
	it.BevelDriver = lo.CoalesceOrEmpty(it.BevelDriver, DefaultDriver)
	it.BevelDriven = lo.CoalesceOrEmpty(it.BevelDriven, DefaultDriven)
	it.SpurDriver = lo.CoalesceOrEmpty(it.SpurDriver, it.BevelDriver)
	it.SpurDriven = lo.CoalesceOrEmpty(it.SpurDriven, it.BevelDriven)
	return it
}

// Pipeline fills a fresh session from it and advances until the chain stage
// is resolved or a stage refuses. The machine is returned in both cases so
// callers can show how far it got.
func Pipeline(ctx context.Context, it Item) (*session.Machine, error) {
	it = it.withDefaults()
	m := session.Open(ctx, "", nil)

	steps := []func() error{
		func() error { return m.SetInput(ctx, session.InputPower, it.PowerKW) },
		func() error { return m.SetInput(ctx, session.InputSpeed, it.SpeedRPM) },
		func() error { return m.SetInput(ctx, session.InputLife, it.LifeYears) },
		func() error {
			return m.SelectMaterial(ctx, session.StageBevelDesign, session.SlotDriver, it.BevelDriver)
		},
		func() error {
			return m.SelectMaterial(ctx, session.StageBevelDesign, session.SlotDriven, it.BevelDriven)
		},
		func() error { return m.SelectMaterial(ctx, session.StageSpurDesign, session.SlotDriver, it.SpurDriver) },
		func() error { return m.SelectMaterial(ctx, session.StageSpurDesign, session.SlotDriven, it.SpurDriven) },
	}
	if it.HB1 > 0 {
		steps = append(steps, func() error { return m.SetHardness(ctx, session.SlotDriver, it.HB1) })
	}
	if it.HB2 > 0 {
		steps = append(steps, func() error { return m.SetHardness(ctx, session.SlotDriven, it.HB2) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return m, err
		}
	}

	// seven transitions and one more to resolve the chain stage
	for range session.StageCount {
		if err := m.Advance(ctx); err != nil {
			return m, err
		}
	}
	return m, nil
}

// Run evaluates every item. A refused item is reported in its ItemResult
// and does not stop the others.
func Run(ctx context.Context, items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{}, calc.Invalid("no items")
	}
	if len(items) > MaxItems {
		return Result{}, calc.Invalid("at most %d items per batch", MaxItems)
	}

	out := make([]ItemResult, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, it := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := Pipeline(ctx, it)
			snap := m.Snapshot()
			out[i] = ItemResult{
				Index:    i,
				Stage:    snap.Stage.String(),
				Complete: snap.Complete(),
				Results:  snap.Results.Entries(),
			}
			if err != nil {
				out[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{
		Completed: lo.CountBy(out, func(r ItemResult) bool { return r.Complete }),
		Items:     out,
	}, nil
}

// Calculate is the stateless tool form of Run.
func Calculate(in Input) (Result, error) {
	return Run(context.Background(), in.Items)
}
