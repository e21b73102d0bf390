package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveScan(t *testing.T) {
	m := GetPrometheusMetrics("skipstash", "node", "test")
	reg := prometheus.NewRegistry()
	m.Register(reg)

	m.ObserveScan(10, 4, 1, 3, false)
	m.ObserveScan(0, 0, 0, 0, true)
	m.FilterCacheHit()

	require.EqualValues(t, 2, testutil.ToFloat64(m.scans))
	require.EqualValues(t, 10, testutil.ToFloat64(m.rowsVisited))
	require.EqualValues(t, 4, testutil.ToFloat64(m.rowsIncluded))
	require.EqualValues(t, 1, testutil.ToFloat64(m.rowsSkipped))
	require.EqualValues(t, 3, testutil.ToFloat64(m.seeks))
	require.EqualValues(t, 1, testutil.ToFloat64(m.emptyScans))
	require.EqualValues(t, 1, testutil.ToFloat64(m.filterCacheHits))
}

func TestNilMetrics(t *testing.T) {
	m := NilMetrics()
	m.Register(prometheus.NewRegistry())
	m.ObserveScan(1, 1, 0, 0, true)
	m.FilterCacheHit()
}

func TestParseLabels(t *testing.T) {
	require.Equal(t, prometheus.Labels{"a": "1"}, parseLabels("a", "1"))
	require.Panics(t, func() { parseLabels("a") })
}
