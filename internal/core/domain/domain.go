// Package domain holds the core data types shared across the service.
package domain

import "time"

// TaskKind identifies a category of LLM work. The model selector maps
// kinds to upstream models.
type TaskKind string

const (
	TaskInsights    TaskKind = "insights"
	TaskCopywriting TaskKind = "copywriting"
	TaskReport      TaskKind = "report"
	TaskStructured  TaskKind = "structured"
)

// UsageEvent records one upstream LLM call (or cache hit) for metering.
type UsageEvent struct {
	ID        int64     `db:"id"`
	Feature   string    `db:"feature"`
	Model     string    `db:"model"`
	Tokens    int       `db:"tokens"`
	Cost      float64   `db:"cost"`
	Cached    bool      `db:"cached"`
	CreatedAt time.Time `db:"created_at"`
}

// FeatureUsage is an aggregate over usage events for one feature.
type FeatureUsage struct {
	Feature   string  `db:"feature"`
	Calls     int64   `db:"calls"`
	CacheHits int64   `db:"cache_hits"`
	Tokens    int64   `db:"tokens"`
	Cost      float64 `db:"cost"`
}
