package cache

import (
	"testing"
	"time"
)

func newTestCache(enabled bool, ttl time.Duration) (*Cache, *time.Time) {
	c := New(enabled, ttl)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_GetBeforeAndAfterTTL(t *testing.T) {
	c, now := newTestCache(true, time.Hour)

	fp := Fingerprint("CopyGen", map[string]string{"product": "tea"})
	c.Set(fp, "result")

	if v, ok := c.Get(fp); !ok || v != "result" {
		t.Fatalf("Get = (%q, %v), want (result, true)", v, ok)
	}

	// Just inside the TTL
	*now = now.Add(time.Hour)
	if _, ok := c.Get(fp); !ok {
		t.Error("entry expired at exactly ttl, want still valid")
	}

	// Past the TTL
	*now = now.Add(time.Second)
	if _, ok := c.Get(fp); ok {
		t.Error("expected miss after TTL elapsed")
	}
	if got := c.Stats().TotalEntries; got != 0 {
		t.Errorf("expired entry not evicted on read, total = %d", got)
	}
}

func TestCache_StatsInvariant(t *testing.T) {
	c, now := newTestCache(true, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	*now = now.Add(2 * time.Minute)
	c.Set("c", "3")

	s := c.Stats()
	if s.ActiveEntries+s.ExpiredEntries != s.TotalEntries {
		t.Errorf("active(%d) + expired(%d) != total(%d)",
			s.ActiveEntries, s.ExpiredEntries, s.TotalEntries)
	}
	if s.TotalEntries != 3 || s.ExpiredEntries != 2 || s.ActiveEntries != 1 {
		t.Errorf("stats = %+v, want total=3 expired=2 active=1", s)
	}
}

func TestCache_Disabled(t *testing.T) {
	c, _ := newTestCache(false, time.Hour)

	c.Set("fp", "value")
	if _, ok := c.Get("fp"); ok {
		t.Error("disabled cache returned a hit")
	}
	if got := c.CleanupExpired(); got != 0 {
		t.Errorf("CleanupExpired on disabled cache = %d, want 0", got)
	}
	if s := c.Stats(); s.Enabled || s.TotalEntries != 0 {
		t.Errorf("stats = %+v, want disabled and empty", s)
	}
}

func TestCache_OverwriteReplacesTimestamp(t *testing.T) {
	c, now := newTestCache(true, time.Minute)

	c.Set("fp", "old")
	*now = now.Add(50 * time.Second)
	c.Set("fp", "new")
	*now = now.Add(30 * time.Second)

	// 80s since first write, 30s since the replacement
	v, ok := c.Get("fp")
	if !ok || v != "new" {
		t.Fatalf("Get = (%q, %v), want (new, true)", v, ok)
	}
}

func TestCache_CleanupExpired(t *testing.T) {
	c, now := newTestCache(true, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	*now = now.Add(2 * time.Minute)
	c.Set("c", "3")

	if got := c.CleanupExpired(); got != 2 {
		t.Errorf("CleanupExpired = %d, want 2", got)
	}
	if got := c.Stats().TotalEntries; got != 1 {
		t.Errorf("TotalEntries after cleanup = %d, want 1", got)
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(true, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Clear()
	if got := c.Stats().TotalEntries; got != 0 {
		t.Errorf("TotalEntries after clear = %d, want 0", got)
	}

	// Clear works on a disabled cache too
	d, _ := newTestCache(false, time.Hour)
	d.Clear()
}
