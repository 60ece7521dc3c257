package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultInterval is the time between scheduled reports.
const DefaultInterval = 8 * time.Hour

// Job is the work performed on every tick.
type Job interface {
	SendDaily(ctx context.Context) (*Result, error)
}

// Scheduler runs a Job immediately and then on a fixed interval.
type Scheduler struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler. A non-positive interval uses DefaultInterval.
func NewScheduler(job Job, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("job cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		job:      job,
		interval: interval,
		logger:   logger.With(slog.String("component", "report_scheduler")),
	}, nil
}

// Run blocks until ctx is cancelled. A failing or panicking tick is logged
// and the next tick still fires on schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("report scheduler started", slog.Duration("interval", s.interval))
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("report scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("report tick panicked", slog.Any("panic", r))
		}
	}()

	start := time.Now()
	result, err := s.job.SendDaily(ctx)
	if err != nil {
		s.logger.Error("report tick failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return
	}
	attrs := []any{slog.Duration("elapsed", time.Since(start))}
	if result != nil {
		attrs = append(attrs, slog.String("report_ref", result.Fingerprint))
	}
	s.logger.Debug("report tick completed", attrs...)
}
