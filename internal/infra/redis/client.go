// Package redis backs the digest scheduler's sent-history with Redis so
// restarts and replicas do not double-send a day's digest.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for digest dedupe.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func sentKey(feature, day string) string {
	return fmt.Sprintf("digest_sent:%s:%s", feature, day)
}

// MarkSent atomically marks a feature's digest as sent for the given
// day. Returns false when another sender already claimed it. Markers
// expire after 48h; dedupe only matters within the day.
func (c *Client) MarkSent(ctx context.Context, feature, day string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, sentKey(feature, day), time.Now().UTC().Format(time.RFC3339), 48*time.Hour).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// WasSent reports whether a digest was already sent for the day.
func (c *Client) WasSent(ctx context.Context, feature, day string) (bool, error) {
	n, err := c.rdb.Exists(ctx, sentKey(feature, day)).Result()
	if err != nil {
		return false, fmt.Errorf("exists failed: %w", err)
	}
	return n > 0, nil
}
