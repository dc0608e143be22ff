// Package prometheus contains the Prometheus implementations of the metric
// interfaces defined by the collector packages. Importing it (usually with a
// blank import from the binary) wires the implementations into pkg/metrics.
package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
	"github.com/Dualog-students/GridFSCleaner/pkg/metrics"
)

func init() {
	metrics.RegisterGCMetricsConstructor(NewGCMetrics)
}

// gcMetrics is the Prometheus implementation of gc.Metrics.
type gcMetrics struct {
	chunksScanned          prometheus.Counter
	classifications        *prometheus.CounterVec
	classificationDuration prometheus.Histogram
	reconcileOperations    *prometheus.CounterVec
	reconcileDuration      prometheus.Histogram
	orphanChunks           prometheus.Counter
}

var (
	gcOnce     sync.Once
	gcInstance *gcMetrics
)

// NewGCMetrics returns the Prometheus-backed gc.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Collectors can only be registered once per process, so every call after
// the first returns the same instance; scheduled runs accumulate into the
// same counters.
func NewGCMetrics() gc.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	gcOnce.Do(func() {
		gcInstance = newGCMetrics(metrics.GetRegistry())
	})
	return gcInstance
}

func newGCMetrics(reg *prometheus.Registry) *gcMetrics {
	return &gcMetrics{
		chunksScanned: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gridfs_cleaner_chunks_scanned_total",
				Help: "Total number of chunk documents seen by the scanner",
			},
		),
		classifications: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridfs_cleaner_classifications_total",
				Help: "Total number of file classifications by result",
			},
			[]string{"result"}, // "valid", "orphan"
		),
		classificationDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "gridfs_cleaner_classification_duration_milliseconds",
				Help: "Duration of file-existence lookups in milliseconds",
				Buckets: []float64{
					0.5,  // 500us - local replica
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms - cross-region
					500,  // 500ms
					1000, // 1s
				},
			},
		),
		reconcileOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridfs_cleaner_reconcile_operations_total",
				Help: "Total number of per-file reconcile operations by status",
			},
			[]string{"status"}, // "success", "error"
		),
		reconcileDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "gridfs_cleaner_reconcile_duration_milliseconds",
				Help: "Duration of per-file reconcile operations in milliseconds",
				Buckets: []float64{
					1,     // 1ms
					5,     // 5ms
					10,    // 10ms
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s - files with many chunks
					5000,  // 5s
					10000, // 10s
				},
			},
		),
		orphanChunks: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gridfs_cleaner_orphan_chunks_total",
				Help: "Total number of orphan chunks counted or deleted",
			},
		),
	}
}

func (m *gcMetrics) AddChunksScanned(n int64) {
	if m == nil {
		return
	}
	m.chunksScanned.Add(float64(n))
}

func (m *gcMetrics) ObserveClassification(valid bool, duration time.Duration) {
	if m == nil {
		return
	}

	result := "orphan"
	if valid {
		result = "valid"
	}
	m.classifications.WithLabelValues(result).Inc()
	m.classificationDuration.Observe(duration.Seconds() * 1000)
}

func (m *gcMetrics) ObserveReconcile(chunks int64, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.reconcileOperations.WithLabelValues(status).Inc()
	m.reconcileDuration.Observe(duration.Seconds() * 1000)

	if err == nil && chunks > 0 {
		m.orphanChunks.Add(float64(chunks))
	}
}
