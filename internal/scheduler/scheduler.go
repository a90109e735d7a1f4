// Package scheduler runs the retention sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"go-content-retention/internal/service"
)

type SweepScheduler struct {
	sweep    *service.SweepService
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

// New creates a scheduler that triggers sweep.Run per the cron expression.
// An empty expression disables scheduling.
func New(sweep *service.SweepService, schedule string) *SweepScheduler {
	return &SweepScheduler{
		sweep:    sweep,
		schedule: schedule,
		cron:     cron.New(),
	}
}

func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		slog.Info("sweep schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	slog.Info("sweep scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *SweepScheduler) runSweep(ctx context.Context) {
	slog.Info("starting scheduled sweep")

	deleted, err := s.sweep.Run(ctx)
	if err != nil {
		slog.Error("scheduled sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		slog.Info("scheduled sweep completed", "deleted_count", deleted)
	} else {
		slog.Debug("scheduled sweep completed, nothing to delete")
	}
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		slog.Info("sweep scheduler stopped")
	}
}

func (s *SweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
