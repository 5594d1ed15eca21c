// Package notify dispatches daily usage digests, deduplicating sends
// per feature and day.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adpilot/internal/core/domain"
	"adpilot/internal/infra/storage"
)

// History records which digests have already gone out. The Redis client
// implements it for shared deployments; MemoryHistory covers dev and
// tests.
type History interface {
	// MarkSent claims the (feature, day) slot; false means another
	// sender got there first.
	MarkSent(ctx context.Context, feature, day string) (bool, error)
	WasSent(ctx context.Context, feature, day string) (bool, error)
}

// Sender delivers a rendered digest. The transport (email, chat
// webhook) lives outside this package.
type Sender func(ctx context.Context, feature, digest string) error

// Config holds scheduler settings.
type Config struct {
	Interval time.Duration
	Features []string
}

// Scheduler periodically builds per-feature usage digests and hands
// them to the Sender, at most once per feature per day.
type Scheduler struct {
	cfg     Config
	usage   storage.UsageRepository
	history History
	send    Sender
	now     func() time.Time
}

// NewScheduler creates a Scheduler.
func NewScheduler(cfg Config, usage storage.UsageRepository, history History, send Sender) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Scheduler{
		cfg:     cfg,
		usage:   usage,
		history: history,
		send:    send,
		now:     time.Now,
	}
}

// Start runs the scheduler loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Initial pass
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce attempts one digest dispatch for every configured feature.
func (s *Scheduler) RunOnce(ctx context.Context) {
	day := s.now().UTC().Format("2006-01-02")

	for _, feature := range s.cfg.Features {
		if err := s.dispatch(ctx, feature, day); err != nil {
			slog.Warn("Digest dispatch failed", "feature", feature, "error", err)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, feature, day string) error {
	sent, err := s.history.WasSent(ctx, feature, day)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	summary, err := s.usage.Summary(ctx, feature)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		return nil // Nothing to report yet
	}

	// Claim the slot before sending so concurrent replicas cannot
	// double-send; a failed send forfeits the day rather than risking
	// duplicates.
	claimed, err := s.history.MarkSent(ctx, feature, day)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	digest := renderDigest(day, summary[0])
	if err := s.send(ctx, feature, digest); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	slog.Info("Usage digest sent", "feature", feature, "day", day)
	return nil
}

func renderDigest(day string, u domain.FeatureUsage) string {
	return fmt.Sprintf(
		"LLM usage digest for %s (%s): %d calls, %d cache hits, %d tokens, $%.4f estimated spend",
		u.Feature, day, u.Calls, u.CacheHits, u.Tokens, u.Cost,
	)
}
