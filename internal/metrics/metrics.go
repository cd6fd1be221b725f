// Package metrics holds the Prometheus collectors of the listing service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics are registered once on the default registry.
//
//   - listing_parses_total{source} - parses served, source is "engine" or "cache"
//   - listing_fields_extracted_total{field} - populated record fields
//   - listing_parse_duration_seconds - engine time per listing
//   - listing_cache_errors_total{op} - cache failures that were ignored
//   - listing_jobs_total{status} - finished batch jobs
//   - listing_jobs_running - batch jobs in flight
//   - listing_dictionary_updates_total - accepted dictionary replacements
type Metrics struct {
	ParsesTotal       *prometheus.CounterVec
	FieldsTotal       *prometheus.CounterVec
	ParseDuration     prometheus.Histogram
	CacheErrorsTotal  *prometheus.CounterVec
	JobsTotal         *prometheus.CounterVec
	JobsRunning       prometheus.Gauge
	DictionaryUpdates prometheus.Counter
}

// New returns the process-wide collectors, registering them on first use.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ParsesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "listing_parses_total",
					Help: "Total number of listings parsed",
				},
				[]string{"source"},
			),
			FieldsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "listing_fields_extracted_total",
					Help: "Total number of populated record fields by field name",
				},
				[]string{"field"},
			),
			ParseDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "listing_parse_duration_seconds",
					Help:    "Engine time spent on one listing",
					Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
				},
			),
			CacheErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "listing_cache_errors_total",
					Help: "Cache operations that failed and were skipped",
				},
				[]string{"op"},
			),
			JobsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "listing_jobs_total",
					Help: "Finished batch jobs by final status",
				},
				[]string{"status"},
			),
			JobsRunning: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "listing_jobs_running",
					Help: "Batch jobs currently running",
				},
			),
			DictionaryUpdates: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "listing_dictionary_updates_total",
					Help: "Accepted society dictionary or alias table replacements",
				},
			),
		}
	})
	return globalMetrics
}

// ObserveParse records one parse and the fields it populated.
func (m *Metrics) ObserveParse(source string, elapsed time.Duration, fields []string) {
	if m == nil {
		return
	}
	m.ParsesTotal.WithLabelValues(source).Inc()
	if source == "engine" {
		m.ParseDuration.Observe(elapsed.Seconds())
	}
	for _, f := range fields {
		m.FieldsTotal.WithLabelValues(f).Inc()
	}
}

// CacheError counts a skipped cache failure.
func (m *Metrics) CacheError(op string) {
	if m == nil {
		return
	}
	m.CacheErrorsTotal.WithLabelValues(op).Inc()
}
