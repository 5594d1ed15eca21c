package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMCallsTotal tracks upstream LLM calls per feature and model
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adpilot_llm_calls_total",
			Help: "Total number of upstream LLM calls",
		},
		[]string{"feature", "model", "outcome"},
	)

	// CacheEventsTotal tracks result cache hits and misses
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adpilot_cache_events_total",
			Help: "Total number of result cache events",
		},
		[]string{"event"},
	)

	// RetryAttemptsTotal tracks retry attempts per failure kind
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adpilot_retry_attempts_total",
			Help: "Total number of retried attempts",
		},
		[]string{"kind"},
	)

	// KeyEventsTotal tracks credential lifecycle events
	KeyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adpilot_key_events_total",
			Help: "Total number of API key events",
		},
		[]string{"event"},
	)

	// CallLatency tracks upstream call latency
	CallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adpilot_llm_call_latency_seconds",
			Help:    "Upstream LLM call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// TokensTotal tracks consumed tokens per model
	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adpilot_llm_tokens_total",
			Help: "Total number of tokens consumed",
		},
		[]string{"model"},
	)

	// CostTotal tracks estimated spend per model
	CostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adpilot_llm_cost_dollars_total",
			Help: "Estimated LLM spend in USD",
		},
		[]string{"model"},
	)
)
