package gc

import (
	"sync/atomic"
	"time"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
)

// counters is the shared mutable state of one run. The pipeline goroutines
// write, the progress reporter only reads; all fields are atomic so the
// reporter never needs coordination with the pipeline.
type counters struct {
	chunksScanned  atomic.Int64
	distinctFiles  atomic.Int64
	validFiles     atomic.Int64
	orphanFiles    atomic.Int64
	orphanChunks   atomic.Int64
	filesProcessed atomic.Int64
}

// snapshot copies the counters into a Stats value.
func (c *counters) snapshot() Stats {
	return Stats{
		ChunksScanned:  c.chunksScanned.Load(),
		DistinctFiles:  c.distinctFiles.Load(),
		ValidFiles:     c.validFiles.Load(),
		OrphanFiles:    c.orphanFiles.Load(),
		OrphanChunks:   c.orphanChunks.Load(),
		FilesProcessed: c.filesProcessed.Load(),
	}
}

// startProgressReporter launches a background goroutine that periodically
// logs the accumulated counters. The returned stop function terminates the
// reporter and waits for it to exit.
func startProgressReporter(c *counters, interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				logger.Info("progress",
					logger.KeyChunksScanned, c.chunksScanned.Load(),
					logger.KeyDistinctFiles, c.distinctFiles.Load(),
					logger.KeyValidFiles, c.validFiles.Load(),
					logger.KeyOrphanFiles, c.orphanFiles.Load(),
					logger.KeyFilesProcessed, c.filesProcessed.Load())
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
