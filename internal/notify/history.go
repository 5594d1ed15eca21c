package notify

import (
	"context"
	"sync"
)

// MemoryHistory is an in-process History for single-instance
// deployments and tests.
type MemoryHistory struct {
	mu   sync.Mutex
	sent map[string]bool
}

// NewMemoryHistory creates an empty history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{sent: make(map[string]bool)}
}

func (h *MemoryHistory) MarkSent(ctx context.Context, feature, day string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := feature + ":" + day
	if h.sent[key] {
		return false, nil
	}
	h.sent[key] = true
	return true, nil
}

func (h *MemoryHistory) WasSent(ctx context.Context, feature, day string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sent[feature+":"+day], nil
}
