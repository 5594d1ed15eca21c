package cache

import "testing"

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := Fingerprint("CopyGen", map[string]string{
		"product":  "tea",
		"audience": "office workers",
		"tone":     "playful",
	})
	b := Fingerprint("CopyGen", map[string]string{
		"tone":     "playful",
		"audience": "office workers",
		"product":  "tea",
	})
	if a != b {
		t.Errorf("same params hashed differently: %s vs %s", a, b)
	}
}

func TestFingerprint_Distinguishes(t *testing.T) {
	base := Fingerprint("CopyGen", map[string]string{"product": "tea"})

	cases := map[string]string{
		"different operation": Fingerprint("ReportGen", map[string]string{"product": "tea"}),
		"different value":     Fingerprint("CopyGen", map[string]string{"product": "coffee"}),
		"different key":       Fingerprint("CopyGen", map[string]string{"audience": "tea"}),
		"extra param":         Fingerprint("CopyGen", map[string]string{"product": "tea", "tone": ""}),
	}
	for name, got := range cases {
		if got == base {
			t.Errorf("%s: fingerprint collided with base", name)
		}
	}
}

func TestFingerprint_FieldBoundaries(t *testing.T) {
	// Values containing separator-looking characters must not collide
	// with a differently-shaped parameter set.
	pairs := []struct {
		name string
		a, b string
	}{
		{
			"value embedding a key=value pair",
			Fingerprint("op", map[string]string{"a": "b:c=d"}),
			Fingerprint("op", map[string]string{"a": "b", "c": "d"}),
		},
		{
			"boundary shift between key and value",
			Fingerprint("op", map[string]string{"ab": "c"}),
			Fingerprint("op", map[string]string{"a": "bc"}),
		},
		{
			"boundary shift between operation and key",
			Fingerprint("opa", map[string]string{"b": "c"}),
			Fingerprint("op", map[string]string{"ab": "c"}),
		},
	}
	for _, p := range pairs {
		if p.a == p.b {
			t.Errorf("%s: distinct inputs collided: %s", p.name, p.a)
		}
	}
}

func TestFingerprint_EmptyParams(t *testing.T) {
	a := Fingerprint("DailyCheck", nil)
	b := Fingerprint("DailyCheck", map[string]string{})
	if a != b {
		t.Errorf("nil and empty params hashed differently")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
