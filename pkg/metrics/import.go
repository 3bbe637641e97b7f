package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records per-run counts for the import pipeline, labeled
// by source schema. All methods are nil-safe so services can run without
// a registry in tests.
type ImportMetrics struct {
	duration   *prometheus.HistogramVec
	records    *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	skipped    *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

// NewImportMetrics registers the import pipeline metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Duration of import runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"schema"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_records_total",
		Help: "Transactions and holdings written by imports.",
	}, []string{"schema"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_duplicates_skipped_total",
		Help: "Records skipped as exact duplicates of stored transactions.",
	}, []string{"schema"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_skipped_total",
		Help: "Malformed rows skipped during parsing.",
	}, []string{"schema"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_failures_total",
		Help: "Import runs that ended in the failed status.",
	}, []string{"schema"})
	reg.MustRegister(duration, records, duplicates, skipped, failures)
	return &ImportMetrics{
		duration:   duration,
		records:    records,
		duplicates: duplicates,
		skipped:    skipped,
		failures:   failures,
	}
}

// ObserveRun records one finished run's duration and counts.
func (m *ImportMetrics) ObserveRun(schema string, duration time.Duration, records, duplicates, skipped int) {
	if m == nil || m.duration == nil {
		return
	}
	label := normalizeLabel(schema)
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
	m.records.WithLabelValues(label).Add(float64(records))
	m.duplicates.WithLabelValues(label).Add(float64(duplicates))
	m.skipped.WithLabelValues(label).Add(float64(skipped))
}

// IncFailure counts a run that ended failed.
func (m *ImportMetrics) IncFailure(schema string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(schema)).Inc()
}
