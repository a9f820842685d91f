// Package scheduler runs source sync periodically.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/sync"
)

// Runner syncs every configured source.
type Runner interface {
	RunAll(ctx context.Context) ([]sync.Result, error)
}

// Scheduler manages the periodic sync job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a scheduler that runs runner every interval.
func New(runner Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	// A slow sync must not overlap with the next tick.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sync job, running it once immediately, and returns
// without blocking.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid sync interval %s", s.interval)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.scheduler.Every(s.interval).Do(s.syncAll); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("periodic sync scheduled", zap.Duration("interval", s.interval))
	return nil
}

// Stop terminates the scheduled job and cancels a sync in progress.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
}

func (s *Scheduler) syncAll() {
	results, err := s.runner.RunAll(s.ctx)
	if err != nil {
		s.logger.Error("scheduled sync failed", zap.Error(err))
		return
	}
	failed := 0
	for _, r := range results {
		if len(r.Errors) > 0 {
			failed++
		}
	}
	s.logger.Info("scheduled sync finished", zap.Int("sources", len(results)), zap.Int("failed", failed))
}
