package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics represents the skip scan metrics
type Metrics struct {
	// Scans served
	scans prometheus.Counter
	// Rows shown to a filter
	rowsVisited prometheus.Counter
	// Rows sent to clients
	rowsIncluded prometheus.Counter
	// Rows dropped without a seek
	rowsSkipped prometheus.Counter
	// Seeks issued from a filter hint
	seeks prometheus.Counter
	// Filters clipped to an empty predicate
	emptyScans prometheus.Counter
	// Decoded filters served from the cache
	filterCacheHits prometheus.Counter
}

func (m *Metrics) Register(registerer prometheus.Registerer) {
	for _, c := range []prometheus.Counter{
		m.scans, m.rowsVisited, m.rowsIncluded, m.rowsSkipped, m.seeks, m.emptyScans, m.filterCacheHits,
	} {
		if c != nil {
			registerer.MustRegister(c)
		}
	}
}

// ObserveScan records the outcome of one scan.
func (m *Metrics) ObserveScan(visited, included, skipped, seeks int, empty bool) {
	counterInc(m.scans)
	addCounter(m.rowsVisited, float64(visited))
	addCounter(m.rowsIncluded, float64(included))
	addCounter(m.rowsSkipped, float64(skipped))
	addCounter(m.seeks, float64(seeks))
	if empty {
		counterInc(m.emptyScans)
	}
}

func (m *Metrics) FilterCacheHit() {
	counterInc(m.filterCacheHits)
}

// GetPrometheusMetrics return the skip scan metrics instance
func GetPrometheusMetrics(namespace string, labelsWithValues ...string) *Metrics {
	constLabels := parseLabels(labelsWithValues...)
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "skipscan",
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}

	return &Metrics{
		scans:           counter("scans_total", "Scans served"),
		rowsVisited:     counter("rows_visited_total", "Rows shown to a skip scan filter"),
		rowsIncluded:    counter("rows_included_total", "Rows included by a skip scan filter"),
		rowsSkipped:     counter("rows_skipped_total", "Rows skipped without a seek"),
		seeks:           counter("seeks_total", "Seeks issued from a filter hint"),
		emptyScans:      counter("empty_scans_total", "Scans whose filter was clipped to nothing"),
		filterCacheHits: counter("filter_cache_hits_total", "Decoded filters served from the cache"),
	}
}

// NilMetrics will return the non operational metrics
func NilMetrics() *Metrics {
	return &Metrics{}
}

func parseLabels(labelsWithValues ...string) prometheus.Labels {
	if len(labelsWithValues)%2 != 0 {
		panic("invalid labels")
	}
	constLabels := prometheus.Labels{}
	for i := 1; i < len(labelsWithValues); i += 2 {
		constLabels[labelsWithValues[i-1]] = labelsWithValues[i]
	}
	return constLabels
}

func counterInc(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

func addCounter(counter prometheus.Counter, v float64) {
	if counter == nil {
		return
	}
	counter.Add(v)
}
