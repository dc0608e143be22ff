// Package memory provides an in-memory chunk and file store for testing.
package memory

import (
	"context"
	"sync"

	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
)

// DefaultBatchSize is the cursor batch size the scan simulates. Real stores
// determine this themselves; tests can shrink it to force multi-batch scans.
const DefaultBatchSize = 101

// Store is an in-memory implementation of gc.ChunkStore and gc.FileStore.
//
// Chunks keep insertion order so scans resemble a collection cursor: the
// same file's chunks may span batches, and interleaved files exercise the
// classifier's dedup.
type Store struct {
	mu     sync.RWMutex
	files  map[gc.FileID]struct{}
	chunks []gc.FileID // one entry per chunk document, parent id only

	// BatchSize is the number of chunk records per simulated cursor batch.
	BatchSize int

	// Fault injection for tests.
	ScanErrAfter int   // fail the scan after this many batches (0 = never)
	ScanErr      error // error returned when ScanErrAfter triggers
	ExistsErr    error // returned by every FileExists call
	DeleteErr    map[gc.FileID]error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		files:     make(map[gc.FileID]struct{}),
		BatchSize: DefaultBatchSize,
	}
}

// PutFile records a file document with the given identifier.
func (s *Store) PutFile(id gc.FileID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = struct{}{}
}

// PutChunks appends n chunk documents owned by id.
func (s *Store) PutChunks(id gc.FileID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.chunks = append(s.chunks, id)
	}
}

// ChunkCount returns the total number of chunk documents in the store.
func (s *Store) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// ScanFileIDs implements gc.ChunkStore. It iterates a snapshot of the chunk
// list in batches, deduplicating identifiers within each batch.
func (s *Store) ScanFileIDs(ctx context.Context, fn func(batch []gc.FileID, chunkCount int) error) error {
	s.mu.RLock()
	snapshot := make([]gc.FileID, len(s.chunks))
	copy(snapshot, s.chunks)
	batchSize := s.BatchSize
	s.mu.RUnlock()

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	batches := 0
	for start := 0; start < len(snapshot); start += batchSize {
		end := min(start+batchSize, len(snapshot))

		if s.ScanErrAfter > 0 && batches >= s.ScanErrAfter {
			return s.ScanErr
		}
		batches++

		seen := make(map[gc.FileID]struct{})
		var distinct []gc.FileID
		for _, id := range snapshot[start:end] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			distinct = append(distinct, id)
		}

		if err := fn(distinct, end-start); err != nil {
			return err
		}
	}
	return nil
}

// CountChunks implements gc.ChunkStore.
func (s *Store) CountChunks(ctx context.Context, id gc.FileID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, owner := range s.chunks {
		if owner == id {
			n++
		}
	}
	return n, nil
}

// DeleteChunks implements gc.ChunkStore.
func (s *Store) DeleteChunks(ctx context.Context, id gc.FileID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.DeleteErr[id]; ok {
		return 0, err
	}

	var kept []gc.FileID
	var deleted int64
	for _, owner := range s.chunks {
		if owner == id {
			deleted++
			continue
		}
		kept = append(kept, owner)
	}
	s.chunks = kept
	return deleted, nil
}

// FileExists implements gc.FileStore.
func (s *Store) FileExists(ctx context.Context, id gc.FileID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	_, ok := s.files[id]
	return ok, nil
}
