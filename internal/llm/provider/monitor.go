package provider

import (
	"strconv"
	"sync"
	"time"
)

// MonitorStats holds call statistics for the admin surface.
type MonitorStats struct {
	AverageLatency    time.Duration `json:"average_latency"`
	RequestsLast1Hour int           `json:"requests_last_1h"`
	ThrottleCount429  int           `json:"throttle_count_429"`
	LastThrottleAt    time.Time     `json:"last_throttle_at,omitempty"`
	LastRetryAfter    time.Duration `json:"last_retry_after,omitempty"`
}

// Monitor tracks upstream latency and throttling over a sliding window.
type Monitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	requestTimestamps []time.Time
	windowDuration    time.Duration

	status429Count   int
	lastThrottleTime time.Time
	lastRetryAfter   time.Duration
}

// NewMonitor creates a monitor with default settings.
func NewMonitor() *Monitor {
	return &Monitor{
		recentLatencies:  make([]time.Duration, 0, 100),
		maxLatencyWindow: 100,
		windowDuration:   time.Hour,
	}
}

// RecordRequest records a successful request with its latency.
func (m *Monitor) RecordRequest(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	m.recentLatencies = append(m.recentLatencies, latency)
	if len(m.recentLatencies) > m.maxLatencyWindow {
		m.recentLatencies = m.recentLatencies[1:]
	}

	m.requestTimestamps = append(m.requestTimestamps, now)
	cutoff := now.Add(-m.windowDuration)
	filtered := m.requestTimestamps[:0]
	for _, t := range m.requestTimestamps {
		if t.After(cutoff) {
			filtered = append(filtered, t)
		}
	}
	m.requestTimestamps = filtered
}

// RecordThrottle records a rate-limiting response. retryAfter is the
// raw Retry-After header; delay-seconds form is kept, the HTTP-date
// form is ignored.
func (m *Monitor) RecordThrottle(statusCode int, retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastThrottleTime = time.Now()
	if statusCode == 429 {
		m.status429Count++
	}
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		m.lastRetryAfter = time.Duration(secs) * time.Second
	}
}

// GetStats returns a snapshot of the monitor state.
func (m *Monitor) GetStats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if len(m.recentLatencies) > 0 {
		var total time.Duration
		for _, l := range m.recentLatencies {
			total += l
		}
		avg = total / time.Duration(len(m.recentLatencies))
	}

	return MonitorStats{
		AverageLatency:    avg,
		RequestsLast1Hour: len(m.requestTimestamps),
		ThrottleCount429:  m.status429Count,
		LastThrottleAt:    m.lastThrottleTime,
		LastRetryAfter:    m.lastRetryAfter,
	}
}
