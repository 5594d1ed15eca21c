package worker

import (
	"context"
	"log/slog"
	"time"

	"adpilot/internal/infra/storage"
)

// Pruner deletes old usage events based on the retention policy.
type Pruner struct {
	retention time.Duration
	usage     storage.UsageRepository
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, usage storage.UsageRepository) *Pruner {
	return &Pruner{retention: retention, usage: usage}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval scales with retention, capped between 1m and 1h
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention)

	removed, err := p.usage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Warn("Usage prune failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Pruned usage events", "removed", removed, "cutoff", cutoff)
	}
}
