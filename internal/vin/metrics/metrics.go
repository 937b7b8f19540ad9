package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the VIN decode path.
type Metrics struct {
	// Cache outcomes on the lookup path
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Decode failures by reason ("provider", "storage")
	DecodeFailures *prometheus.CounterVec

	// Latency of the remote decode including normalization
	DecodeLatency prometheus.Histogram

	// Records written by the last export
	ExportedRecords prometheus.Gauge
}

// New creates a Metrics instance with all VIN module metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vindex_cache_hits_total",
			Help: "Total lookups served from the store without a remote call",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vindex_cache_misses_total",
			Help: "Total lookups that required a remote decode",
		}),
		DecodeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vindex_decode_failures_total",
			Help: "Total failed lookups by reason",
		}, []string{"reason"}),
		DecodeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vindex_decode_duration_seconds",
			Help:    "Duration of remote decode calls including normalization",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ExportedRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vindex_exported_records",
			Help: "Number of records written by the most recent export",
		}),
	}
}

// IncrementHit records a lookup served from the store.
func (m *Metrics) IncrementHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// IncrementMiss records a lookup that went to the provider.
func (m *Metrics) IncrementMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

// IncrementFailure records a failed lookup.
func (m *Metrics) IncrementFailure(reason string) {
	if m != nil {
		m.DecodeFailures.WithLabelValues(reason).Inc()
	}
}

// ObserveDecodeLatency records the duration of a remote decode.
func (m *Metrics) ObserveDecodeLatency(d time.Duration) {
	if m != nil {
		m.DecodeLatency.Observe(d.Seconds())
	}
}

// SetExportedRecords records the size of the latest export.
func (m *Metrics) SetExportedRecords(count int) {
	if m != nil {
		m.ExportedRecords.Set(float64(count))
	}
}
