package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dualog-students/GridFSCleaner/pkg/metrics"
)

// TestNewGCMetricsLifecycle covers the full enable/construct sequence in one
// test because the registry is process-wide: disabled first, then enabled,
// then repeated construction as a resident scheduled process performs on
// every tick.
func TestNewGCMetricsLifecycle(t *testing.T) {
	// Before InitRegistry the constructor must return nil (zero overhead).
	require.False(t, metrics.IsEnabled())
	assert.Nil(t, metrics.NewGCMetrics())

	metrics.InitRegistry()
	require.True(t, metrics.IsEnabled())

	first := metrics.NewGCMetrics()
	require.NotNil(t, first)

	// A second construction must not re-register the collectors: it returns
	// the same instance instead of panicking on duplicate registration.
	var second any
	require.NotPanics(t, func() {
		second = metrics.NewGCMetrics()
	})
	assert.Same(t, first, second)

	// The shared instance keeps accumulating across runs.
	first.AddChunksScanned(10)
	first.ObserveClassification(true, time.Millisecond)
	first.ObserveClassification(false, time.Millisecond)
	first.ObserveReconcile(4, time.Millisecond, nil)
	first.ObserveReconcile(0, time.Millisecond, errors.New("write conflict"))

	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	assert.True(t, found["gridfs_cleaner_chunks_scanned_total"])
	assert.True(t, found["gridfs_cleaner_classifications_total"])
	assert.True(t, found["gridfs_cleaner_reconcile_operations_total"])
	assert.True(t, found["gridfs_cleaner_orphan_chunks_total"])
}
