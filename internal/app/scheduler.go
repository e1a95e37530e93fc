package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
)

// Cycler runs one reconciliation cycle.
type Cycler interface {
	RunCycle(ctx context.Context) (*CycleResult, error)
}

// SchedulerConfig configures the periodic sync trigger.
type SchedulerConfig struct {
	Cycler   Cycler
	Interval time.Duration

	// AllowOverlap lets a tick start a cycle while another is still running.
	// When false such ticks are skipped.
	AllowOverlap bool

	Metrics *telemetry.SyncMetrics
	Logger  *slog.Logger
}

// Scheduler fires a cycle immediately and then on a fixed interval,
// with no backoff or jitter, until its context is cancelled.
type Scheduler struct {
	cycler       Cycler
	interval     time.Duration
	allowOverlap bool
	metrics      *telemetry.SyncMetrics
	logger       *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. Panics if Cycler is nil or Interval is not positive.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Cycler == nil {
		panic("Scheduler: Cycler is required")
	}

	if cfg.Interval <= 0 {
		panic("Scheduler: Interval must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cycler:       cfg.Cycler,
		interval:     cfg.Interval,
		allowOverlap: cfg.AllowOverlap,
		metrics:      cfg.Metrics,
		logger:       logger.With(slog.String("component", "app.Scheduler")),
	}
}

// Run blocks until ctx is cancelled, then waits for in-flight cycles to return.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logging.WithContext(ctx, s.logger)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "scheduler started",
		slog.Duration("interval", s.interval),
		slog.Bool("allow_overlap", s.allowOverlap),
	)

	s.Trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.InfoContext(ctx, "scheduler stopped")

			return nil
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger starts a cycle in the background. It reports false when the tick
// was skipped because a cycle is already running and overlap is disabled.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.allowOverlap && !s.running.CompareAndSwap(false, true) {
		s.logger.WarnContext(ctx, "sync cycle still running, skipping tick")
		s.metrics.ObserveCycle(telemetry.OutcomeOverlap, 0)

		return false
	}

	s.wg.Go(func() {
		if !s.allowOverlap {
			defer s.running.Store(false)
		}

		if _, err := s.cycler.RunCycle(ctx); err != nil {
			s.logger.WarnContext(ctx, "sync cycle failed", slog.Any("error", err))
		}
	})

	return true
}

// Wait blocks until every started cycle has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
