package postgres

import (
	"context"
	"fmt"
	"time"

	"adpilot/internal/core/domain"
)

// UsageRepo implements storage.UsageRepository using PostgreSQL.
type UsageRepo struct {
	db *DB
}

// NewUsageRepo creates a new PostgreSQL usage repository.
func NewUsageRepo(db *DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// Record appends one usage event.
func (r *UsageRepo) Record(ctx context.Context, event *domain.UsageEvent) error {
	query := `
		INSERT INTO usage_events (feature, model, tokens, cost, cached, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		event.Feature,
		event.Model,
		event.Tokens,
		event.Cost,
		event.Cached,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record usage event: %w", err)
	}
	return nil
}

// Summary aggregates events per feature.
func (r *UsageRepo) Summary(ctx context.Context, feature string) ([]domain.FeatureUsage, error) {
	query := `
		SELECT feature,
		       COUNT(*) FILTER (WHERE NOT cached)           AS calls,
		       COUNT(*) FILTER (WHERE cached)               AS cache_hits,
		       COALESCE(SUM(tokens), 0)                     AS tokens,
		       COALESCE(SUM(cost), 0)                       AS cost
		FROM usage_events
		WHERE ($1 = '' OR feature = $1)
		GROUP BY feature
		ORDER BY cost DESC
	`

	var out []domain.FeatureUsage
	if err := r.db.SelectContext(ctx, &out, query, feature); err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return out, nil
}

// Recent returns the most recent events, newest first.
func (r *UsageRepo) Recent(ctx context.Context, limit int) ([]domain.UsageEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, feature, model, tokens, cost, cached, created_at
		FROM usage_events
		ORDER BY created_at DESC
		LIMIT $1
	`

	var out []domain.UsageEvent
	if err := r.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load usage events: %w", err)
	}
	return out, nil
}

// DeleteOlderThan removes events created before the cutoff.
func (r *UsageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usage_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage events: %w", err)
	}
	return res.RowsAffected()
}
