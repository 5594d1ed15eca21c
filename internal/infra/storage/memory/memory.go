// Package memory provides an in-memory usage store for development and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"adpilot/internal/core/domain"
)

// UsageRepo implements storage.UsageRepository in memory.
type UsageRepo struct {
	mu     sync.RWMutex
	events []domain.UsageEvent
	nextID int64
}

// NewUsageRepo creates an empty in-memory usage repository.
func NewUsageRepo() *UsageRepo {
	return &UsageRepo{nextID: 1}
}

func (r *UsageRepo) Record(ctx context.Context, event *domain.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := *event
	e.ID = r.nextID
	r.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.events = append(r.events, e)
	return nil
}

func (r *UsageRepo) Summary(ctx context.Context, feature string) ([]domain.FeatureUsage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byFeature := make(map[string]*domain.FeatureUsage)
	for _, e := range r.events {
		if feature != "" && e.Feature != feature {
			continue
		}
		agg, ok := byFeature[e.Feature]
		if !ok {
			agg = &domain.FeatureUsage{Feature: e.Feature}
			byFeature[e.Feature] = agg
		}
		if e.Cached {
			agg.CacheHits++
		} else {
			agg.Calls++
		}
		agg.Tokens += int64(e.Tokens)
		agg.Cost += e.Cost
	}

	out := make([]domain.FeatureUsage, 0, len(byFeature))
	for _, agg := range byFeature {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	return out, nil
}

func (r *UsageRepo) Recent(ctx context.Context, limit int) ([]domain.UsageEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	out := make([]domain.UsageEvent, len(r.events))
	copy(out, r.events)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UsageRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}
