package gc

import (
	"sort"
	"sync"
)

// index is the classification index: every distinct FileID observed by the
// scan ends up in exactly one of the two sets. The sets only grow during a
// run and are discarded with the run.
//
// All access goes through the mutex so classification may be parallelized
// within a batch. Disjointness holds by construction: an identifier is
// claimed by the caller that first finds it unseen, and batches are deduped,
// so no identifier is ever inserted twice.
type index struct {
	mu      sync.Mutex
	valid   map[FileID]struct{}
	orphans map[FileID]struct{}
}

func newIndex() *index {
	return &index{
		valid:   make(map[FileID]struct{}),
		orphans: make(map[FileID]struct{}),
	}
}

// seen reports whether id has already been classified into either set.
func (x *index) seen(id FileID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.valid[id]; ok {
		return true
	}
	_, ok := x.orphans[id]
	return ok
}

// markValid records id as having a live file document.
func (x *index) markValid(id FileID) {
	x.mu.Lock()
	x.valid[id] = struct{}{}
	x.mu.Unlock()
}

// markOrphan records id as having no file document.
func (x *index) markOrphan(id FileID) {
	x.mu.Lock()
	x.orphans[id] = struct{}{}
	x.mu.Unlock()
}

// orphanList returns the orphan set as a sorted slice. Sorting makes
// reconciliation order and log output deterministic.
func (x *index) orphanList() []FileID {
	x.mu.Lock()
	ids := make([]FileID, 0, len(x.orphans))
	for id := range x.orphans {
		ids = append(ids, id)
	}
	x.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// counts returns the current size of both sets.
func (x *index) counts() (valid, orphans int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.valid), len(x.orphans)
}
