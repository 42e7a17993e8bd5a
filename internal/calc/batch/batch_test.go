package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"Drivecalc/internal/calc"
	"Drivecalc/internal/catalog"
	"Drivecalc/internal/session"
)

func lookup(entries []session.ResultEntry, name string) string {
	for _, e := range entries {
		if e.Name == name {
			return e.Data
		}
	}
	return ""
}

func TestPipelineDefaults(t *testing.T) {
	rq := require.New(t)
	m, err := Pipeline(context.Background(), Item{PowerKW: 5, SpeedRPM: 60, LifeYears: 5})
	rq.NoError(err)

	snap := m.Snapshot()
	rq.True(snap.Complete())
	rq.Equal(275.0, snap.Bevel.HB1)
	rq.Equal(255.0, snap.Bevel.HB2)
	rq.Equal("Steel 40XH,Steel 50X", lookup(m.Results(), "spur"))
	rq.Equal("20", lookup(m.Results(), "chain_z1"))
	rq.Equal("90", lookup(m.Results(), "chain_z2"))
}

func TestRun(t *testing.T) {
	rq := require.New(t)
	res, err := Run(context.Background(), []Item{
		{PowerKW: 5, SpeedRPM: 60, LifeYears: 5},
		{PowerKW: 5, SpeedRPM: 60, LifeYears: 5, HB1: 250, HB2: 250},
		{PowerKW: 5, SpeedRPM: 60, LifeYears: 5, BevelDriver: "45"},
		{PowerKW: 7.5, SpeedRPM: 45, LifeYears: 8, BevelDriver: catalog.Steel50X, BevelDriven: catalog.Steel40XH, HB1: 300, HB2: 260},
	})
	rq.NoError(err)
	rq.Equal(2, res.Completed)
	rq.Len(res.Items, 4)

	rq.True(res.Items[0].Complete)

	rq.False(res.Items[1].Complete)
	rq.Equal("BevelDesign", res.Items[1].Stage)
	rq.Contains(res.Items[1].Error, "HB1")

	rq.False(res.Items[2].Complete)
	rq.Equal("Inputs", res.Items[2].Stage)
	rq.Contains(res.Items[2].Error, "unknown material")

	rq.True(res.Items[3].Complete)
	rq.Equal(3, res.Items[3].Index)
}

func TestRunRejectsEmpty(t *testing.T) {
	_, err := Run(context.Background(), nil)
	require.True(t, calc.IsValidation(err))

	_, err = Run(context.Background(), make([]Item, MaxItems+1))
	require.True(t, calc.IsValidation(err))
}
