package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"Drivecalc/internal/metrics"
)

func TestOpenSessionsFollowsCount(t *testing.T) {
	rq := require.New(t)
	reg := prometheus.NewRegistry()
	n := 2
	metrics.OpenSessions(reg, func() int { return n })

	read := func() float64 {
		families, err := reg.Gather()
		rq.NoError(err)
		rq.Len(families, 1)
		rq.Equal("drivecalc_open_sessions", families[0].GetName())
		return families[0].GetMetric()[0].GetGauge().GetValue()
	}
	rq.Equal(2.0, read())
	n = 5
	rq.Equal(5.0, read())
}
