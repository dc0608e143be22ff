package gc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
)

// scanner drives the scan phase: it consumes the chunk cursor batch by batch
// and hands each batch's distinct identifiers to the classifier before the
// next batch is requested. The classifier never runs ahead of the cursor, so
// memory stays bounded to one batch plus the accumulating sets.
type scanner struct {
	chunks     ChunkStore
	classifier *classifier
	counters   *counters
	metrics    Metrics

	// logEvery throttles the per-batch debug line; a busy scan delivers
	// thousands of batches per minute.
	logEvery rate.Sometimes
}

func newScanner(chunks ChunkStore, cl *classifier, c *counters, m Metrics) *scanner {
	return &scanner{
		chunks:     chunks,
		classifier: cl,
		counters:   c,
		metrics:    m,
		logEvery:   rate.Sometimes{Interval: 10 * time.Second},
	}
}

// run consumes the full chunk cursor. It returns ctx.Err() when cancellation
// is observed at a batch boundary and a wrapped store error when the cursor
// fails; either way the cursor is closed before run returns, so deletions may
// safely start afterwards.
func (s *scanner) run(ctx context.Context) error {
	err := s.chunks.ScanFileIDs(ctx, func(batch []FileID, chunkCount int) error {
		// Cancellation is observed here, between batches. The batch that was
		// already delivered is dropped; its identifiers reappear on rerun.
		if err := ctx.Err(); err != nil {
			return err
		}

		s.counters.chunksScanned.Add(int64(chunkCount))
		if s.metrics != nil {
			s.metrics.AddChunksScanned(int64(chunkCount))
		}

		if err := s.classifier.classifyBatch(ctx, batch); err != nil {
			return err
		}

		s.logEvery.Do(func() {
			logger.Debug("scan batch classified",
				logger.KeyChunksScanned, s.counters.chunksScanned.Load(),
				logger.KeyDistinctFiles, s.counters.distinctFiles.Load())
		})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("chunk scan: %w", err)
	}
	return nil
}
