package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"adpilot/internal/core/domain"
	"adpilot/internal/infra/storage/memory"
)

func TestScheduler_SendsOncePerDay(t *testing.T) {
	usage := memory.NewUsageRepo()
	usage.Record(context.Background(), &domain.UsageEvent{
		Feature: "insights", Model: "m", Tokens: 100, Cost: 0.05,
	})

	var sends []string
	s := NewScheduler(
		Config{Interval: time.Hour, Features: []string{"insights"}},
		usage,
		NewMemoryHistory(),
		func(ctx context.Context, feature, digest string) error {
			sends = append(sends, digest)
			return nil
		},
	)
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	if len(sends) != 1 {
		t.Fatalf("sent %d digests for one day, want 1", len(sends))
	}
	if !strings.Contains(sends[0], "insights") || !strings.Contains(sends[0], "$0.0500") {
		t.Errorf("digest = %q, missing feature or spend", sends[0])
	}

	// A new day opens a new slot
	now = now.Add(24 * time.Hour)
	s.RunOnce(context.Background())
	if len(sends) != 2 {
		t.Errorf("sent %d digests across two days, want 2", len(sends))
	}
}

func TestScheduler_SkipsEmptyUsage(t *testing.T) {
	var sends int
	s := NewScheduler(
		Config{Features: []string{"insights"}},
		memory.NewUsageRepo(),
		NewMemoryHistory(),
		func(ctx context.Context, feature, digest string) error {
			sends++
			return nil
		},
	)

	s.RunOnce(context.Background())
	if sends != 0 {
		t.Errorf("sent %d digests with no usage recorded, want 0", sends)
	}
}
