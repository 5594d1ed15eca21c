// Package storage defines the persistence contracts for usage metering.
package storage

import (
	"context"
	"time"

	"adpilot/internal/core/domain"
)

// UsageRepository persists LLM usage events.
type UsageRepository interface {
	// Record appends one usage event.
	Record(ctx context.Context, event *domain.UsageEvent) error

	// Summary aggregates events per feature. An empty feature selects
	// all features.
	Summary(ctx context.Context, feature string) ([]domain.FeatureUsage, error)

	// Recent returns the most recent events, newest first.
	Recent(ctx context.Context, limit int) ([]domain.UsageEvent, error)

	// DeleteOlderThan removes events created before the cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
