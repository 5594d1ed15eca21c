package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Keys may come from the environment instead of the file
	if len(cfg.LLM.APIKeys) == 0 {
		cfg.LLM.APIKeys = keysFromEnv()
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.LLM.APIBase == "" {
		cfg.LLM.APIBase = "https://api.openai.com/v1"
	}
	if cfg.LLM.DefaultModel == "" {
		cfg.LLM.DefaultModel = "gpt-5-nano"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.LLM.CacheTTL == 0 {
		cfg.LLM.CacheTTL = time.Hour
	}
	if cfg.LLM.MaxKeyFailure == 0 {
		cfg.LLM.MaxKeyFailure = 3
	}
	if cfg.LLM.MaxAttempts == 0 {
		cfg.LLM.MaxAttempts = 3
	}
	if cfg.LLM.BackoffFactor == 0 {
		cfg.LLM.BackoffFactor = 2
	}
	if cfg.Notify.Interval == 0 {
		cfg.Notify.Interval = time.Hour
	}
}

// keysFromEnv reads API keys from OPENAI_API_KEYS (comma separated)
// or OPENAI_API_KEY as a single-key fallback.
func keysFromEnv() []string {
	raw := os.Getenv("OPENAI_API_KEYS")
	if raw == "" {
		raw = os.Getenv("OPENAI_API_KEY")
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
