// Package gc implements garbage collection for orphan chunks in a GridFS bucket.
//
// Orphan chunks are chunk documents whose parent file document no longer
// exists. This can happen when an upload is interrupted after chunks are
// written but before the file document is committed, or when a delete removes
// the file document but fails before removing its chunks.
//
// Collect runs in two phases. The scan phase streams the parent file
// identifier of every chunk (a covering projection, never the chunk payload)
// and classifies each distinct identifier exactly once against the files
// collection, accumulating a valid set and an orphan set. The reconcile phase
// starts only after the scan cursor is fully drained and closed, and deletes
// (or, in dry-run mode, counts) all chunks of each orphaned file.
//
// Memory is bounded by one cursor batch plus the two identifier sets; chunk
// payloads are never fetched. Cancellation is observed at batch boundaries
// during the scan and at per-file boundaries during reconciliation.
//
// Usage:
//
//	// Dry run first
//	stats, err := gc.Collect(ctx, chunks, files, &gc.Options{DryRun: true})
//	logger.Info("would delete", "orphan_chunks", stats.OrphanChunks)
//
//	// Then actually delete
//	stats, err = gc.Collect(ctx, chunks, files, &gc.Options{})
package gc
