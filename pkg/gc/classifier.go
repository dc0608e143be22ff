package gc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// classifier resolves each distinct FileID into the valid or orphan set with
// at most one existence lookup per identifier. The already-classified
// short-circuit is what keeps the run cheap: without it every chunk of a
// large orphaned file would trigger a redundant lookup.
type classifier struct {
	files    FileStore
	idx      *index
	counters *counters
	metrics  Metrics
	workers  int
}

func newClassifier(files FileStore, idx *index, c *counters, m Metrics, workers int) *classifier {
	return &classifier{
		files:    files,
		idx:      idx,
		counters: c,
		metrics:  m,
		workers:  workers,
	}
}

// classifyBatch classifies the distinct identifiers of one scan batch.
// Batches are deduped by the store, so the identifiers here are unique and
// lookups within a batch are independent; with Workers > 1 they run
// concurrently, bounded by the worker limit. Set mutations are serialized by
// the index mutex.
func (c *classifier) classifyBatch(ctx context.Context, ids []FileID) error {
	if c.workers <= 1 || len(ids) == 1 {
		for _, id := range ids {
			if err := c.classify(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return c.classify(gctx, id)
		})
	}
	return g.Wait()
}

// classify resolves a single identifier. Identifiers already classified in a
// previous batch return without touching the store.
func (c *classifier) classify(ctx context.Context, id FileID) error {
	if c.idx.seen(id) {
		return nil
	}

	start := time.Now()
	found, err := c.files.FileExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check file %s: %w", id, err)
	}
	if c.metrics != nil {
		c.metrics.ObserveClassification(found, time.Since(start))
	}

	if found {
		c.idx.markValid(id)
		c.counters.validFiles.Add(1)
	} else {
		c.idx.markOrphan(id)
		c.counters.orphanFiles.Add(1)
	}
	c.counters.distinctFiles.Add(1)
	return nil
}
