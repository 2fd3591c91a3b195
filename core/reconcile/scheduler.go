package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler triggers engine runs on a fixed interval. A tick that lands
// while a run is still in progress is a no-op; read traffic is never
// affected by a failed run.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler for the engine.
func NewScheduler(engine *Engine, cfg Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		interval: cfg.Interval(),
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, triggering one run immediately and one
// per interval after that.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.engine.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Debug("skipping tick, run already in progress")
	case errors.Is(err, context.Canceled):
	case err != nil:
		s.logger.Error("scheduled reconciliation run failed", zap.Error(err))
	default:
		s.logger.Info("scheduled reconciliation run finished",
			zap.Int("applied", report.Applied),
			zap.Int("invalid", report.Invalid),
			zap.Int("skipped", report.Skipped),
		)
	}
}
