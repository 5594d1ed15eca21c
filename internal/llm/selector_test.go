package llm

import (
	"math"
	"testing"

	"adpilot/internal/core/domain"
)

func TestSelectorModelFor(t *testing.T) {
	sel := NewSelector("gpt-5-nano", map[string]string{
		"insights": "gpt-4o",
		"report":   "",
	})

	tests := []struct {
		task domain.TaskKind
		want string
	}{
		{domain.TaskInsights, "gpt-4o"},
		{domain.TaskCopywriting, "gpt-5-nano"},
		// Empty mapping falls through to the default
		{domain.TaskReport, "gpt-5-nano"},
		{domain.TaskKind("unknown"), "gpt-5-nano"},
	}
	for _, tt := range tests {
		if got := sel.ModelFor(tt.task); got != tt.want {
			t.Errorf("ModelFor(%q) = %q, want %q", tt.task, got, tt.want)
		}
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name   string
		rates  map[string]float64
		model  string
		tokens int
		want   float64
	}{
		{"built-in gpt-4 rate", nil, "gpt-4o", 1000, 0.015},
		{"built-in gpt-5 rate", nil, "gpt-5-nano", 1000, 0.0004},
		{"fallback for unknown model", nil, "claude-opus", 2000, 0.001},
		{"configured rate wins over built-in", map[string]float64{"gpt-4": 0.02}, "gpt-4o", 1000, 0.02},
		{"longest configured prefix wins", map[string]float64{"gpt-4": 0.02, "gpt-4o": 0.01}, "gpt-4o", 1000, 0.01},
		{"zero tokens", nil, "gpt-4o", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateCost(tt.rates, tt.model, tt.tokens)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("estimateCost(%q, %d) = %v, want %v", tt.model, tt.tokens, got, tt.want)
			}
		})
	}
}
