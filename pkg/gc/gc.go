package gc

import (
	"context"
	"errors"
	"time"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
)

// Collect scans the chunk collection and removes (or, in dry-run mode,
// reports) chunks whose parent file document no longer exists.
//
// The scan and classification are interleaved with implicit backpressure:
// each cursor batch is fully classified before the next one is requested.
// Reconciliation starts only after the cursor is exhausted and closed —
// deleting chunks while the scan cursor is open could invalidate it under
// the storage engine's consistency model.
//
// Returns partial Stats and a nil error on clean cancellation: the run stops
// at the next batch or file boundary and proceeds to reporting. A cursor or
// lookup failure during the scan aborts the run; the accumulated sets are
// discarded (a partial orphan set must never reach the reconciler) and the
// error is returned alongside the scan counters gathered so far.
func Collect(ctx context.Context, chunks ChunkStore, files FileStore, opts *Options) (*Stats, error) {
	if opts == nil {
		opts = &Options{}
	}

	start := time.Now()
	cnt := &counters{}
	idx := newIndex()

	if opts.ProgressInterval > 0 {
		stop := startProgressReporter(cnt, opts.ProgressInterval)
		defer stop()
	}

	cl := newClassifier(files, idx, cnt, opts.Metrics, opts.Workers)
	sc := newScanner(chunks, cl, cnt, opts.Metrics)

	if err := sc.run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			stats := cnt.snapshot()
			stats.DryRun = opts.DryRun
			stats.Elapsed = time.Since(start)
			logger.Info("scan cancelled",
				logger.KeyChunksScanned, stats.ChunksScanned,
				logger.KeyDistinctFiles, stats.DistinctFiles)
			return &stats, nil
		}

		// Classification is all-or-nothing: a scan that did not finish must
		// not hand its orphan set to the reconciler.
		stats := &Stats{
			ChunksScanned: cnt.chunksScanned.Load(),
			DryRun:        opts.DryRun,
			Elapsed:       time.Since(start),
		}
		return stats, err
	}

	valid, orphans := idx.counts()
	logger.Info("scan complete",
		logger.KeyChunksScanned, cnt.chunksScanned.Load(),
		logger.KeyDistinctFiles, cnt.distinctFiles.Load(),
		logger.KeyValidFiles, valid,
		logger.KeyOrphanFiles, orphans)

	rec := newReconciler(chunks, cnt, opts.Metrics, opts.DryRun)
	failed := rec.run(ctx, idx.orphanList())

	stats := cnt.snapshot()
	stats.FailedFiles = failed
	stats.DryRun = opts.DryRun
	stats.Elapsed = time.Since(start)

	if len(failed) > 0 {
		ids := make([]string, len(failed))
		for i, id := range failed {
			ids[i] = id.Hex()
		}
		logger.Warn("some orphan files could not be reconciled; rerun to retry",
			logger.KeyFailedFiles, ids)
	}

	return &stats, nil
}
