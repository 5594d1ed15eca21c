// Package budget tracks daily LLM spend per dashboard feature.
package budget

import (
	"sync"
	"time"
)

// UsageStats holds daily usage for one feature.
type UsageStats struct {
	Calls     int     `json:"calls"`
	Tokens    int     `json:"tokens"`
	Cost      float64 `json:"cost"`
	CacheHits int     `json:"cache_hits"`
}

// Snapshot is the tracker state for the admin surface.
type Snapshot struct {
	Features       map[string]UsageStats `json:"features"`
	TotalCalls     int                   `json:"total_calls"`
	TotalCost      float64               `json:"total_cost"`
	DailyCallLimit int                   `json:"daily_call_limit"`
	NextResetAt    time.Time             `json:"next_reset_at"`
}

// Tracker accumulates per-feature call counts, tokens and estimated
// cost, resetting at local midnight.
type Tracker struct {
	mu        sync.Mutex
	features  map[string]*UsageStats
	callLimit int
	resetTime time.Time
	now       func() time.Time
}

// New creates a Tracker. callLimit 0 disables the daily call cap.
func New(callLimit int) *Tracker {
	t := &Tracker{
		features:  make(map[string]*UsageStats),
		callLimit: callLimit,
		now:       time.Now,
	}
	t.resetTime = nextMidnight(t.now())
	return t
}

// RecordCall records one upstream call for a feature.
func (t *Tracker) RecordCall(feature string, tokens int, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetLocked()
	s := t.statsLocked(feature)
	s.Calls++
	s.Tokens += tokens
	s.Cost += cost
}

// RecordCacheHit records a call served from the result cache.
func (t *Tracker) RecordCacheHit(feature string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetLocked()
	t.statsLocked(feature).CacheHits++
}

// CanMakeCall reports whether the daily call cap still has headroom.
func (t *Tracker) CanMakeCall() bool {
	if t.callLimit <= 0 {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetLocked()
	total := 0
	for _, s := range t.features {
		total += s.Calls
	}
	return total < t.callLimit
}

// GetSnapshot returns a copy of the current state.
func (t *Tracker) GetSnapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeResetLocked()
	snap := Snapshot{
		Features:       make(map[string]UsageStats, len(t.features)),
		DailyCallLimit: t.callLimit,
		NextResetAt:    t.resetTime,
	}
	for f, s := range t.features {
		snap.Features[f] = *s
		snap.TotalCalls += s.Calls
		snap.TotalCost += s.Cost
	}
	return snap
}

// Reset clears all accumulated usage.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.features = make(map[string]*UsageStats)
	t.resetTime = nextMidnight(t.now())
}

func (t *Tracker) maybeResetLocked() {
	if t.now().After(t.resetTime) {
		t.features = make(map[string]*UsageStats)
		t.resetTime = nextMidnight(t.now())
	}
}

func (t *Tracker) statsLocked(feature string) *UsageStats {
	s, ok := t.features[feature]
	if !ok {
		s = &UsageStats{}
		t.features[feature] = s
	}
	return s
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
