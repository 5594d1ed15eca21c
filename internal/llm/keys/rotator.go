// Package keys manages a pool of interchangeable API keys, rotating
// round-robin and quarantining keys that repeatedly fail.
package keys

import (
	"log/slog"
	"sync"

	"adpilot/internal/infra/metrics"
)

const defaultMaxFailures = 3

type record struct {
	key            string
	failedAttempts int
	disabled       bool
}

// KeyStatus is a read-only view of one pool record. The key itself is
// masked down to a short suffix.
type KeyStatus struct {
	Suffix         string `json:"suffix"`
	FailedAttempts int    `json:"failed_attempts"`
	Disabled       bool   `json:"disabled"`
}

// Rotator distributes load across a fixed pool of API keys. Keys that
// reach the failure threshold are disabled until Reset. Records are
// matched by the key value; if the same value occurs
// twice in the pool, reports resolve to the first record.
type Rotator struct {
	mu          sync.Mutex
	pool        []*record
	next        int
	maxFailures int
}

// New builds a Rotator from the configured key list. An empty list is
// legal and makes Acquire always fail fast. maxFailures <= 0 selects the
// default threshold of 3.
func New(keyList []string, maxFailures int) *Rotator {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	pool := make([]*record, 0, len(keyList))
	for _, k := range keyList {
		if k == "" {
			continue
		}
		pool = append(pool, &record{key: k})
	}
	return &Rotator{pool: pool, maxFailures: maxFailures}
}

// HasKeys reports whether the pool is non-empty.
func (r *Rotator) HasKeys() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool) > 0
}

// Acquire returns the next enabled key, scanning at most one full
// revolution from the current rotation position. The position advances
// past the returned key so the next Acquire starts after it. Returns
// false when the pool is empty or every key is disabled.
func (r *Rotator) Acquire() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.pool)
	if n == 0 {
		return "", false
	}

	for i := 0; i < n; i++ {
		rec := r.pool[(r.next+i)%n]
		if rec.disabled {
			continue
		}
		r.next = (r.next + i + 1) % n
		metrics.KeyEventsTotal.WithLabelValues("acquired").Inc()
		slog.Debug("API key acquired", "key_suffix", suffix(rec.key))
		return rec.key, true
	}

	// All keys disabled
	return "", false
}

// ReportSuccess resets the key's failure counter. No-op for unknown keys.
func (r *Rotator) ReportSuccess(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.pool {
		if rec.key == key {
			rec.failedAttempts = 0
			return
		}
	}
}

// ReportFailure increments the key's failure counter and disables the
// key once the threshold is reached. No-op for unknown keys.
func (r *Rotator) ReportFailure(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.pool {
		if rec.key != key {
			continue
		}
		rec.failedAttempts++
		metrics.KeyEventsTotal.WithLabelValues("failure").Inc()
		slog.Warn("API key failure reported",
			"key_suffix", suffix(rec.key), "fails", rec.failedAttempts)
		if rec.failedAttempts >= r.maxFailures && !rec.disabled {
			rec.disabled = true
			metrics.KeyEventsTotal.WithLabelValues("disabled").Inc()
			slog.Warn("API key disabled", "key_suffix", suffix(rec.key))
		}
		return
	}
}

// Reset clears failure counters and disabled flags pool-wide. Pool
// membership never changes after construction.
func (r *Rotator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.pool {
		rec.failedAttempts = 0
		rec.disabled = false
	}
	slog.Info("API key pool reset", "keys", len(r.pool))
}

// Snapshot returns the masked state of every record for the admin
// surface.
func (r *Rotator) Snapshot() []KeyStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]KeyStatus, 0, len(r.pool))
	for _, rec := range r.pool {
		out = append(out, KeyStatus{
			Suffix:         suffix(rec.key),
			FailedAttempts: rec.failedAttempts,
			Disabled:       rec.disabled,
		})
	}
	return out
}

// suffix masks a key down to its last four characters.
func suffix(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "..." + key[len(key)-4:]
}
