// Package scheduler runs the cleaner on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Dualog-students/GridFSCleaner/internal/logger"
)

// Scheduler wraps robfig/cron and tracks the next scheduled run.
//
// Runs never overlap: if a collection is still in progress when the next
// tick fires, the tick is skipped and logged. A GridFS scan can take hours
// on a large bucket, so overlap is a real possibility with tight schedules.
type Scheduler struct {
	mu       sync.RWMutex
	c        *cron.Cron
	entryID  cron.EntryID
	cronExpr string
	running  atomic.Bool
}

// New creates a stopped Scheduler. Call Run to activate it.
func New() *Scheduler {
	return &Scheduler{
		c: cron.New(),
	}
}

// SetJob sets the collection job with the given cron expression. The
// callback receives the context passed to Run.
func (s *Scheduler) SetJob(ctx context.Context, expr string, fn func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.c.Remove(s.entryID)
	}

	id, err := s.c.AddFunc(expr, func() {
		if !s.running.CompareAndSwap(false, true) {
			logger.Warn("previous run still in progress, skipping scheduled run", "cron", s.CronExpr())
			return
		}
		defer s.running.Store(false)

		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	s.entryID = id
	s.cronExpr = expr
	return nil
}

// Run starts the cron loop and blocks until the context is cancelled. It
// waits for an in-flight job before returning.
func (s *Scheduler) Run(ctx context.Context) {
	s.c.Start()

	if next := s.NextRunAt(); next != nil {
		logger.Info("scheduler started", "cron", s.CronExpr(), "next_run", next.Format(time.RFC3339))
	}

	<-ctx.Done()

	// cron's Stop returns a context that completes when running jobs finish.
	stopCtx := s.c.Stop()
	<-stopCtx.Done()
}

// NextRunAt returns the next scheduled time, or nil if no job is set.
func (s *Scheduler) NextRunAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entryID == 0 {
		return nil
	}
	entry := s.c.Entry(s.entryID)
	if entry.ID == 0 {
		return nil
	}
	t := entry.Next
	return &t
}

// CronExpr returns the current cron expression.
func (s *Scheduler) CronExpr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cronExpr
}
