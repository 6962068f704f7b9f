// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// OrphanSweeper removes images no parent references any more.
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, maxAge time.Duration) (int, error)
}

// Scheduler wraps a cron instance with the application's jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a scheduler. Each job run is bounded by timeout.
func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
	}
}

// AddOrphanSweep schedules sweeper on the standard five-field spec. Only
// images older than maxAge are considered, so uploads staged by an editor
// that has not been submitted yet are left alone.
func (s *Scheduler) AddOrphanSweep(spec string, sweeper OrphanSweeper, maxAge time.Duration) error {
	if _, err := s.cron.AddFunc(spec, s.orphanSweepJob(sweeper, maxAge)); err != nil {
		return fmt.Errorf("schedule orphan sweep %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) orphanSweepJob(sweeper OrphanSweeper, maxAge time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		n, err := sweeper.SweepOrphans(ctx, maxAge)
		if err != nil {
			s.logger.Error("orphan image sweep failed", "error", err, "removed", n)
			return
		}
		s.logger.Info("orphan image sweep finished", "removed", n, "duration", time.Since(start))
	}
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", s.Jobs())
}

// Stop halts scheduling and waits for running jobs, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
