package gc_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
	"github.com/Dualog-students/GridFSCleaner/pkg/store/memory"
)

func fid(b byte) gc.FileID {
	var id gc.FileID
	id[11] = b
	return id
}

// countingFiles wraps a gc.FileStore and counts existence lookups. Used to
// verify the one-lookup-per-identifier guarantee.
type countingFiles struct {
	inner   gc.FileStore
	lookups atomic.Int64

	// cancelAfter, when set, cancels the context once that many lookups
	// have completed. Simulates an operator interrupt mid-scan.
	cancelAfter int64
	cancel      context.CancelFunc
}

func (c *countingFiles) FileExists(ctx context.Context, id gc.FileID) (bool, error) {
	n := c.lookups.Add(1)
	if c.cancelAfter > 0 && n == c.cancelAfter && c.cancel != nil {
		c.cancel()
	}
	return c.inner.FileExists(ctx, id)
}

// recordingMetrics is an in-memory gc.Metrics implementation.
type recordingMetrics struct {
	mu              sync.Mutex
	chunksScanned   int64
	classifications int
	reconciles      int
	reconcileErrs   int
}

func (m *recordingMetrics) AddChunksScanned(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunksScanned += n
}

func (m *recordingMetrics) ObserveClassification(valid bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifications++
}

func (m *recordingMetrics) ObserveReconcile(_ int64, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciles++
	if err != nil {
		m.reconcileErrs++
	}
}

// mixedStore builds a store with two valid files and two orphans:
//
//	valid:  1 (3 chunks), 2 (4 chunks)
//	orphan: 3 (2 chunks), 4 (5 chunks)
func mixedStore() *memory.Store {
	s := memory.New()
	s.PutFile(fid(1))
	s.PutFile(fid(2))
	s.PutChunks(fid(1), 3)
	s.PutChunks(fid(2), 4)
	s.PutChunks(fid(3), 2)
	s.PutChunks(fid(4), 5)
	return s
}

func TestCollectEmptyStore(t *testing.T) {
	s := memory.New()

	stats, err := gc.Collect(context.Background(), s, s, nil)
	require.NoError(t, err)

	assert.Zero(t, stats.ChunksScanned)
	assert.Zero(t, stats.DistinctFiles)
	assert.Zero(t, stats.OrphanFiles)
	assert.Zero(t, stats.FilesProcessed)
	assert.Empty(t, stats.FailedFiles)
}

func TestCollectAllValid(t *testing.T) {
	s := memory.New()
	s.PutFile(fid(1))
	s.PutFile(fid(2))
	s.PutChunks(fid(1), 3)
	s.PutChunks(fid(2), 4)

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.ChunksScanned)
	assert.Equal(t, int64(2), stats.DistinctFiles)
	assert.Equal(t, int64(2), stats.ValidFiles)
	assert.Zero(t, stats.OrphanFiles)
	assert.Zero(t, stats.OrphanChunks)
	assert.Zero(t, stats.FilesProcessed)
	assert.Equal(t, 7, s.ChunkCount())
}

func TestCollectDryRunReportsWithoutDeleting(t *testing.T) {
	s := mixedStore()

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, int64(14), stats.ChunksScanned)
	assert.Equal(t, int64(4), stats.DistinctFiles)
	assert.Equal(t, int64(2), stats.ValidFiles)
	assert.Equal(t, int64(2), stats.OrphanFiles)
	assert.Equal(t, int64(7), stats.OrphanChunks)
	assert.Equal(t, int64(2), stats.FilesProcessed)
	assert.True(t, stats.DryRun)

	// Disjointness: every distinct file landed in exactly one set.
	assert.Equal(t, stats.DistinctFiles, stats.ValidFiles+stats.OrphanFiles)

	// Preview mode must not mutate the store.
	assert.Equal(t, 14, s.ChunkCount())
}

func TestCollectExecuteDeletesOrphans(t *testing.T) {
	s := mixedStore()

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: false})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.OrphanFiles)
	assert.Equal(t, int64(7), stats.OrphanChunks)
	assert.Equal(t, int64(2), stats.FilesProcessed)
	assert.False(t, stats.DryRun)

	// Only the orphans' chunks are gone.
	assert.Equal(t, 7, s.ChunkCount())
	n, err := s.CountChunks(context.Background(), fid(1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = s.CountChunks(context.Background(), fid(3))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollectExecuteIsIdempotent(t *testing.T) {
	s := mixedStore()

	_, err := gc.Collect(context.Background(), s, s, &gc.Options{})
	require.NoError(t, err)

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.ChunksScanned)
	assert.Zero(t, stats.OrphanFiles)
	assert.Zero(t, stats.OrphanChunks)
	assert.Equal(t, 7, s.ChunkCount())
}

func TestCollectDedupAcrossBatches(t *testing.T) {
	s := memory.New()
	s.BatchSize = 3
	s.PutFile(fid(1))
	// 10 chunks of the same orphan interleaved with a valid file: the
	// orphan's identifier shows up in every batch.
	for i := 0; i < 5; i++ {
		s.PutChunks(fid(9), 2)
		s.PutChunks(fid(1), 1)
	}

	files := &countingFiles{inner: s}
	stats, err := gc.Collect(context.Background(), s, files, &gc.Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, int64(15), stats.ChunksScanned)
	assert.Equal(t, int64(2), stats.DistinctFiles)
	assert.Equal(t, int64(1), stats.OrphanFiles)
	assert.Equal(t, int64(10), stats.OrphanChunks)
	assert.Equal(t, int64(2), files.lookups.Load(), "one existence lookup per distinct file")
}

func TestCollectParallelWorkers(t *testing.T) {
	s := memory.New()
	s.BatchSize = 16
	var wantOrphanChunks int64
	for i := byte(1); i <= 50; i++ {
		if i%2 == 0 {
			s.PutFile(fid(i))
		} else {
			wantOrphanChunks += int64(i % 5)
		}
		s.PutChunks(fid(i), int(i%5))
	}

	serial, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: true, Workers: 1})
	require.NoError(t, err)

	parallel, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: true, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, serial.DistinctFiles, parallel.DistinctFiles)
	assert.Equal(t, serial.ValidFiles, parallel.ValidFiles)
	assert.Equal(t, serial.OrphanFiles, parallel.OrphanFiles)
	assert.Equal(t, serial.OrphanChunks, parallel.OrphanChunks)
	assert.Equal(t, wantOrphanChunks, parallel.OrphanChunks)
}

func TestCollectScanFailureDiscardsSets(t *testing.T) {
	s := mixedStore()
	s.BatchSize = 4
	s.ScanErrAfter = 2
	s.ScanErr = errors.New("cursor died")

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: false})
	require.Error(t, err)
	assert.ErrorContains(t, err, "cursor died")

	// The partial classification must never reach the reconciler.
	assert.Zero(t, stats.DistinctFiles)
	assert.Zero(t, stats.OrphanFiles)
	assert.Zero(t, stats.FilesProcessed)
	assert.Equal(t, int64(8), stats.ChunksScanned)
	assert.Equal(t, 14, s.ChunkCount(), "nothing deleted after an aborted scan")
}

func TestCollectClassifyFailureAborts(t *testing.T) {
	s := mixedStore()
	s.ExistsErr = errors.New("primary stepped down")

	_, err := gc.Collect(context.Background(), s, s, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "check file")
	assert.Equal(t, 14, s.ChunkCount())
}

func TestCollectCancellationIsClean(t *testing.T) {
	s := memory.New()
	s.BatchSize = 2
	for i := byte(1); i <= 20; i++ {
		s.PutChunks(fid(i), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	files := &countingFiles{inner: s, cancelAfter: 3, cancel: cancel}

	stats, err := gc.Collect(ctx, s, files, &gc.Options{DryRun: false})
	require.NoError(t, err, "cancellation is a clean outcome, not an error")

	// The run stopped at a batch boundary: some chunks were scanned, none
	// of the would-be orphans were deleted.
	assert.Less(t, stats.ChunksScanned, int64(20))
	assert.Zero(t, stats.FilesProcessed)
	assert.Equal(t, 20, s.ChunkCount())
}

func TestCollectCancelledBeforeStart(t *testing.T) {
	s := mixedStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := gc.Collect(ctx, s, s, &gc.Options{DryRun: false})
	require.NoError(t, err)
	assert.Zero(t, stats.FilesProcessed)
	assert.Equal(t, 14, s.ChunkCount())
}

func TestCollectPerFileFailureIsolated(t *testing.T) {
	s := mixedStore()
	s.DeleteErr = map[gc.FileID]error{
		fid(3): errors.New("write conflict"),
	}

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: false})
	require.NoError(t, err, "a per-file failure does not fail the run")

	require.Len(t, stats.FailedFiles, 1)
	assert.Equal(t, fid(3), stats.FailedFiles[0])

	// The other orphan was still deleted.
	assert.Equal(t, int64(1), stats.FilesProcessed)
	assert.Equal(t, int64(5), stats.OrphanChunks)
	n, err := s.CountChunks(context.Background(), fid(4))
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.CountChunks(context.Background(), fid(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "failed file's chunks remain for the retry run")
}

func TestCollectMetrics(t *testing.T) {
	s := mixedStore()
	m := &recordingMetrics{}

	_, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: true, Metrics: m})
	require.NoError(t, err)

	assert.Equal(t, int64(14), m.chunksScanned)
	assert.Equal(t, 4, m.classifications)
	assert.Equal(t, 2, m.reconciles)
	assert.Zero(t, m.reconcileErrs)
}

func TestCollectElapsedPopulated(t *testing.T) {
	s := mixedStore()

	stats, err := gc.Collect(context.Background(), s, s, &gc.Options{DryRun: true, ProgressInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Greater(t, stats.Elapsed, time.Duration(0))
}
