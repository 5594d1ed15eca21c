package config

import (
	"time"

	redisclient "adpilot/internal/infra/redis"
	"adpilot/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	LLM      LLMConfig          `yaml:"llm"`
	Usage    UsageConfig        `yaml:"usage"`
	Notify   NotifyConfig       `yaml:"notify"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds admin HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// LLMConfig holds settings for the upstream LLM provider and the
// resilience layer sitting in front of it.
type LLMConfig struct {
	APIBase       string            `yaml:"api_base"`
	DefaultModel  string            `yaml:"default_model"`
	Models        map[string]string `yaml:"models"` // task kind -> model override
	APIKeys       []string          `yaml:"api_keys"`
	MaxKeyFailure int               `yaml:"max_key_failures"` // failures before a key is disabled
	Timeout       time.Duration     `yaml:"timeout"`

	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	Coalesce     bool          `yaml:"coalesce"` // single-flight identical in-flight requests

	MaxAttempts   int     `yaml:"max_attempts"`
	BackoffFactor float64 `yaml:"backoff_factor"`

	DailyCallLimit int `yaml:"daily_call_limit"` // 0 = unlimited
}

// UsageConfig holds usage metering settings.
type UsageConfig struct {
	Retention time.Duration      `yaml:"retention"` // 0 = keep forever
	Rates     map[string]float64 `yaml:"rates"`     // model prefix -> USD per 1K tokens
}

// NotifyConfig holds daily digest settings.
type NotifyConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Features []string      `yaml:"features"`
}
