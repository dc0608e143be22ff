package metrics

import (
	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
)

// NewGCMetrics creates a new Prometheus-backed gc.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers pass nil to gc.Collect, which results in
// zero overhead.
//
// Example usage:
//
//	metrics.InitRegistry()
//	opts := gc.Options{Metrics: metrics.NewGCMetrics()}
func NewGCMetrics() gc.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusGCMetrics()
}

// newPrometheusGCMetrics is implemented in pkg/metrics/prometheus/gc.go.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusGCMetrics func() gc.Metrics

// RegisterGCMetricsConstructor registers the Prometheus GC metrics
// constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterGCMetricsConstructor(constructor func() gc.Metrics) {
	newPrometheusGCMetrics = constructor
}
