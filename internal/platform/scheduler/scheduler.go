// Package scheduler runs periodic housekeeping for the HTTP server.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"stock_predictor/internal/platform/metrics"
)

// ExpiredModelCleaner removes session models whose TTL has passed.
// Only the SQL store needs it; Redis expires keys itself.
type ExpiredModelCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// LimiterSweeper drops idle rate limiter entries.
type LimiterSweeper interface {
	Sweep(idle time.Duration) int
}

// Scheduler manages the cleanup cron task.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	models  ExpiredModelCleaner
	limiter LimiterSweeper
	idle    time.Duration
}

// NewScheduler creates a new Scheduler. models and limiter may be nil.
func NewScheduler(ctx context.Context, models ExpiredModelCleaner, limiter LimiterSweeper, limiterIdle time.Duration) *Scheduler {
	if limiterIdle <= 0 {
		limiterIdle = 10 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		ctx:     ctx,
		models:  models,
		limiter: limiter,
		idle:    limiterIdle,
	}
}

// Register registers the cleanup task with a six-field cron expression (seconds first).
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.RunCleanupNow); err != nil {
		return fmt.Errorf("register cleanup task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunCleanupNow executes the cleanup task immediately.
func (s *Scheduler) RunCleanupNow() {
	if s.models != nil {
		n, err := s.models.DeleteExpired(s.ctx)
		if err != nil {
			slog.Error("failed to delete expired models", "error", err)
		} else if n > 0 {
			metrics.ExpiredModelsDeletedTotal.Add(float64(n))
			slog.Info("expired models deleted", "count", n)
		}
	}
	if s.limiter != nil {
		if n := s.limiter.Sweep(s.idle); n > 0 {
			slog.Debug("idle rate limiters swept", "count", n)
		}
	}
}
