package task

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"funnelforge/pkg/config"
)

// Scheduler enqueues the daily commission release run. It is the only
// component that starts a run on its own; the schedule never overlaps
// itself, which is what lets the engine assume a single runner.
type Scheduler struct {
	service *Service
	hour    int
	minute  int
}

func NewScheduler(svc *Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		service: svc,
		hour:    cfg.Commission.ReleaseHour,
		minute:  cfg.Commission.ReleaseMinute,
	}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.run(ctx)
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("commission release scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
	)

	for {
		now := time.Now()
		next := nextRunTime(now, s.hour, s.minute)

		zap.L().Info("next commission release run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", next.Sub(now)),
		)

		select {
		case <-time.After(next.Sub(now)):
			s.runDaily(ctx)
		case <-ctx.Done():
			zap.L().Warn("commission release scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	start := time.Now()

	if err := s.service.EnqueueReleaseRun(ctx); err != nil {
		zap.L().Error("failed to enqueue commission release run", zap.Error(err))
		return
	}

	zap.L().Info("daily commission release enqueued",
		zap.Duration("duration", time.Since(start)),
	)
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
