package gc

import (
	"context"
	"time"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
)

// reconciler drains the final orphan set. Each file is handled independently:
// one bulk delete (or, in dry-run mode, one count) per identifier, so a
// partial run is always safe to retry — already-deleted orphans simply never
// reappear in the next scan.
type reconciler struct {
	chunks   ChunkStore
	counters *counters
	metrics  Metrics
	dryRun   bool
}

func newReconciler(chunks ChunkStore, c *counters, m Metrics, dryRun bool) *reconciler {
	return &reconciler{
		chunks:   chunks,
		counters: c,
		metrics:  m,
		dryRun:   dryRun,
	}
}

// run processes every orphan and returns the identifiers whose delete (or
// count) failed. A failed file does not stop the remaining ones; the caller
// reports the failures for a retry run. Cancellation is observed between
// files: an in-flight store command completes, no new one starts.
func (r *reconciler) run(ctx context.Context, orphans []FileID) (failed []FileID) {
	for _, id := range orphans {
		if ctx.Err() != nil {
			logger.Info("reconciliation cancelled",
				logger.KeyFilesProcessed, r.counters.filesProcessed.Load())
			return failed
		}

		start := time.Now()
		var chunks int64
		var err error
		if r.dryRun {
			chunks, err = r.chunks.CountChunks(ctx, id)
		} else {
			chunks, err = r.chunks.DeleteChunks(ctx, id)
		}
		if r.metrics != nil {
			r.metrics.ObserveReconcile(chunks, time.Since(start), err)
		}

		if err != nil {
			logger.Error("failed to reconcile orphan file",
				logger.KeyFileID, id.Hex(),
				logger.KeyError, err)
			failed = append(failed, id)
			continue
		}

		r.counters.orphanChunks.Add(chunks)
		r.counters.filesProcessed.Add(1)

		if r.dryRun {
			logger.Info("would delete orphan chunks",
				logger.KeyFileID, id.Hex(),
				logger.KeyChunks, chunks)
		} else {
			logger.Info("deleted orphan chunks",
				logger.KeyFileID, id.Hex(),
				logger.KeyChunks, chunks)
		}
	}
	return failed
}
