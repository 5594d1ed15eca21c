// Package cache memoizes LLM results by a fingerprint of the operation
// name and its parameters, with TTL expiry.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value      string
	insertedAt time.Time
}

// Stats is a read-only snapshot of the cache state.
type Stats struct {
	Enabled        bool    `json:"enabled"`
	TotalEntries   int     `json:"total_entries"`
	ActiveEntries  int     `json:"active_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	TTLSeconds     float64 `json:"ttl_seconds"`
}

// Cache is a TTL-bounded in-memory result cache. A disabled cache is a
// pure pass-through: every Get misses and every Set is dropped, so call
// sites behave identically either way.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	enabled bool
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Cache. When enabled is false the cache stores nothing.
func New(enabled bool, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Enabled reports whether the cache stores results.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get returns the value for fp if present and not expired. An expired
// entry is evicted and reported as a miss.
func (c *Cache) Get(fp string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fp]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, fp)
		return "", false
	}
	return e.value, true
}

// Set stores value under fp with the current timestamp, replacing any
// previous entry wholesale. No-op when the cache is disabled.
func (c *Cache) Set(fp, value string) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = entry{value: value, insertedAt: c.now()}
}

// Clear removes all entries, regardless of the enabled flag.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// CleanupExpired evicts every expired entry and returns the count.
func (c *Cache) CleanupExpired() int {
	if !c.enabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for fp, e := range c.entries {
		if now.Sub(e.insertedAt) > c.ttl {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed
}

// Stats computes a snapshot. Expiry is checked against the TTL at call
// time rather than relying on lazily-evicted state.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := 0
	for _, e := range c.entries {
		if now.Sub(e.insertedAt) > c.ttl {
			expired++
		}
	}

	total := len(c.entries)
	return Stats{
		Enabled:        c.enabled,
		TotalEntries:   total,
		ActiveEntries:  total - expired,
		ExpiredEntries: expired,
		TTLSeconds:     c.ttl.Seconds(),
	}
}
