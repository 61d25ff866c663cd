package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Poller is one saved search run by the watch loop.
type Poller interface {
	Poll(ctx context.Context) error
	Label() string
}

// Pruner forgets seen postings older than a retention window.
type Pruner interface {
	Cleanup(olderThan time.Duration) error
}

// CycleResult summarizes one pass over every poller.
type CycleResult struct {
	Polled  int
	Failed  int
	Elapsed time.Duration
}

// Scheduler owns the watch loop. Pollers run sequentially, gap apart, once
// per interval.
type Scheduler struct {
	pollers   []Poller
	interval  time.Duration
	gap       time.Duration
	pruner    Pruner
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler over pollers.
func NewScheduler(pollers []Poller, interval, gap time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		interval: interval,
		gap:      gap,
		logger:   logger,
	}
}

// WithCleanup prunes seen postings older than retention at the start of
// every cycle.
func (s *Scheduler) WithCleanup(p Pruner, retention time.Duration) *Scheduler {
	s.pruner = p
	s.retention = retention
	return s
}

// Run runs one immediate cycle, then one per interval. It returns nil when
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"searches", len(s.pollers),
	)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce prunes, then polls every search once. A failing poller is logged
// and the cycle moves on.
func (s *Scheduler) RunOnce(ctx context.Context) CycleResult {
	start := time.Now()
	var res CycleResult

	if s.pruner != nil && s.retention > 0 {
		if err := s.pruner.Cleanup(s.retention); err != nil {
			s.logger.Warn("pruning seen postings failed", "error", err)
		}
	}

	for i, p := range s.pollers {
		if i > 0 && !s.pause(ctx) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		res.Polled++
		if err := p.Poll(ctx); err != nil {
			res.Failed++
			s.logger.Error("poll failed", "query", p.Label(), "error", err)
		}
	}

	res.Elapsed = time.Since(start)
	s.logger.Debug("watch cycle done",
		"polled", res.Polled,
		"failed", res.Failed,
		"elapsed", res.Elapsed.String(),
	)
	return res
}

// pause waits gap between pollers; false means ctx ended first.
func (s *Scheduler) pause(ctx context.Context) bool {
	if s.gap <= 0 {
		return true
	}
	t := time.NewTimer(s.gap)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
