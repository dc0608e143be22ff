package gc

import (
	"bytes"
	"context"
	"encoding/hex"
	"time"
)

// FileID is the identifier of a file document in the files collection, used
// as the join key between chunks and file metadata. GridFS assigns ObjectIDs
// to uploads, so the key is a fixed 12-byte value. It is opaque to this
// package: IDs are only compared, hashed, and passed back to the store.
type FileID [12]byte

// Hex returns the identifier in the canonical 24-character hex form.
func (id FileID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id FileID) String() string {
	return id.Hex()
}

// Less reports whether id sorts before other in byte order.
func (id FileID) Less(other FileID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// ChunkStore provides the chunk-collection operations the collector needs.
// Implemented by store/mongo (GridFS fs.chunks) and store/memory (tests).
type ChunkStore interface {
	// ScanFileIDs streams the parent file identifier of every chunk document
	// using a covering projection. The callback receives the distinct
	// identifiers of one cursor batch plus the batch's raw chunk count, in
	// cursor order; the same identifier may reappear in later batches.
	// Returning an error from the callback stops the scan and closes the
	// cursor before ScanFileIDs returns.
	ScanFileIDs(ctx context.Context, fn func(batch []FileID, chunkCount int) error) error

	// CountChunks returns the number of chunk documents belonging to id.
	CountChunks(ctx context.Context, id FileID) (int64, error)

	// DeleteChunks removes all chunk documents belonging to id in a single
	// command and returns the number deleted.
	DeleteChunks(ctx context.Context, id FileID) (int64, error)
}

// FileStore provides the existence lookup against the files collection.
type FileStore interface {
	// FileExists reports whether a file document with the given identifier
	// exists. A single round trip per call; no document body is fetched.
	FileExists(ctx context.Context, id FileID) (bool, error)
}

// Metrics provides observability for collector runs. Optional: a nil Metrics
// skips collection entirely.
//
// Implemented by pkg/metrics/prometheus; in-memory counters work for testing.
type Metrics interface {
	// AddChunksScanned records chunk documents observed by the scan
	AddChunksScanned(n int64)

	// ObserveClassification records one existence lookup and its outcome
	ObserveClassification(valid bool, duration time.Duration)

	// ObserveReconcile records one per-file delete (or dry-run count)
	ObserveReconcile(chunks int64, duration time.Duration, err error)
}

// Options configures the garbage collection behavior.
type Options struct {
	// DryRun if true, only reports orphans without deleting.
	DryRun bool

	// Workers bounds parallel existence lookups within one scan batch.
	// Values <= 1 classify serially.
	Workers int

	// ProgressInterval is how often the background progress reporter logs
	// accumulated counters. 0 disables periodic progress.
	ProgressInterval time.Duration

	// Metrics receives counters for the run. May be nil.
	Metrics Metrics
}

// Stats holds statistics about one garbage collection run.
//
// OrphanChunks counts deleted chunks in execute mode and would-delete chunks
// in dry-run mode.
type Stats struct {
	ChunksScanned  int64
	DistinctFiles  int64
	ValidFiles     int64
	OrphanFiles    int64
	OrphanChunks   int64
	FilesProcessed int64
	FailedFiles    []FileID
	DryRun         bool
	Elapsed        time.Duration
}
