package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"Drivecalc/internal/catalog"
)

func TestTablesAreCopies(t *testing.T) {
	rq := require.New(t)

	eff := catalog.Efficiency()
	eff[0].Label = "changed"
	rq.Equal("Cylindrical gear drive", catalog.Efficiency()[0].Label)

	mats := catalog.Materials()
	mats[0].Hardness = catalog.Range{}
	m, ok := catalog.Material(catalog.Steel40XH)
	rq.True(ok)
	rq.Equal(catalog.Range{Low: 200, High: 350}, m.Hardness)
}

func TestLookups(t *testing.T) {
	rq := require.New(t)

	rq.Equal(3, catalog.IndexOfElement(catalog.BearingPair))
	rq.Equal(1, catalog.IndexOfRatio(catalog.ChainRatio))

	e, ok := catalog.EfficiencyAt(3)
	rq.True(ok)
	rq.True(e.Element.IsBearingPair())
	rq.False(catalog.ChainDrive.IsBearingPair())

	_, ok = catalog.EfficiencyAt(4)
	rq.False(ok)
	_, ok = catalog.RatioAt(-1)
	rq.False(ok)
	_, ok = catalog.Material("unknown")
	rq.False(ok)
}

func TestRange(t *testing.T) {
	rq := require.New(t)

	r := catalog.Range{Low: 0.94, High: 0.97}
	rq.InDelta(0.955, r.Mid(), 1e-12)
	rq.True(r.Contains(0.94))
	rq.True(r.Contains(0.97))
	rq.False(r.Contains(0.98))
	rq.Equal(0.955, catalog.Round(r.Mid(), 3))
	rq.Equal(4.5, catalog.Round(catalog.Range{Low: 3, High: 6}.Mid(), 1))
}
