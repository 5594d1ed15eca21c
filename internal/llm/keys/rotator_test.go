package keys

import "testing"

func TestRotator_RoundRobin(t *testing.T) {
	r := New([]string{"sk-aaa", "sk-bbb", "sk-ccc"}, 3)

	seen := make(map[string]int)
	for i := 0; i < 3; i++ {
		k, ok := r.Acquire()
		if !ok {
			t.Fatalf("Acquire %d failed", i)
		}
		seen[k]++
	}
	for _, k := range []string{"sk-aaa", "sk-bbb", "sk-ccc"} {
		if seen[k] != 1 {
			t.Errorf("key %s acquired %d times in one revolution, want 1", k, seen[k])
		}
	}

	// Fourth acquire wraps back to the first key
	k, _ := r.Acquire()
	if k != "sk-aaa" {
		t.Errorf("after full revolution got %s, want sk-aaa", k)
	}
}

func TestRotator_EmptyPool(t *testing.T) {
	r := New(nil, 0)
	if r.HasKeys() {
		t.Error("HasKeys on empty pool = true")
	}
	if _, ok := r.Acquire(); ok {
		t.Error("Acquire on empty pool succeeded")
	}
	// Reports on an empty pool are no-ops
	r.ReportSuccess("sk-missing")
	r.ReportFailure("sk-missing")
	r.Reset()
}

func TestRotator_DisableAfterThreshold(t *testing.T) {
	r := New([]string{"sk-aaa", "sk-bbb"}, 3)

	for i := 0; i < 3; i++ {
		r.ReportFailure("sk-aaa")
	}

	// sk-aaa is disabled; every acquire now lands on sk-bbb
	for i := 0; i < 4; i++ {
		k, ok := r.Acquire()
		if !ok {
			t.Fatalf("Acquire %d failed with one enabled key", i)
		}
		if k != "sk-bbb" {
			t.Errorf("Acquire %d = %s, want sk-bbb", i, k)
		}
	}
}

func TestRotator_AllDisabled(t *testing.T) {
	r := New([]string{"sk-aaa", "sk-bbb"}, 1)
	r.ReportFailure("sk-aaa")
	r.ReportFailure("sk-bbb")

	if _, ok := r.Acquire(); ok {
		t.Error("Acquire returned a key from a fully disabled pool")
	}
	if !r.HasKeys() {
		t.Error("HasKeys should still be true for a disabled but non-empty pool")
	}

	r.Reset()
	if _, ok := r.Acquire(); !ok {
		t.Error("Acquire failed after Reset")
	}
}

func TestRotator_SuccessResetsFailures(t *testing.T) {
	r := New([]string{"sk-aaa"}, 3)

	r.ReportFailure("sk-aaa")
	r.ReportFailure("sk-aaa")
	r.ReportSuccess("sk-aaa")
	r.ReportFailure("sk-aaa")
	r.ReportFailure("sk-aaa")

	// 2 failures since the success: still below threshold
	if _, ok := r.Acquire(); !ok {
		t.Error("key disabled despite success reset")
	}

	r.ReportFailure("sk-aaa")
	if _, ok := r.Acquire(); ok {
		t.Error("key enabled after reaching threshold post-reset")
	}
}

func TestRotator_Snapshot(t *testing.T) {
	r := New([]string{"sk-test-aaa", "sk"}, 2)
	r.ReportFailure("sk-test-aaa")

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}
	if snap[0].Suffix != "...-aaa" {
		t.Errorf("Suffix = %q, want %q", snap[0].Suffix, "...-aaa")
	}
	if snap[0].FailedAttempts != 1 || snap[0].Disabled {
		t.Errorf("snapshot[0] = %+v, want 1 failure, enabled", snap[0])
	}
	if snap[1].Suffix != "sk" {
		t.Errorf("short key suffix = %q, want %q", snap[1].Suffix, "sk")
	}
}
