// Package redis builds the shared Redis client from configuration.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// ErrNotConfigured is returned when REDIS_URL is empty.
var ErrNotConfigured = errors.New("redis: REDIS_URL not configured")

// Config holds the Redis connection settings.
type Config struct {
	URL string // e.g. "redis://:password@localhost:6379/0"
}

// LoadConfig loads Redis configuration from environment variables.
func LoadConfig() Config {
	return Config{URL: os.Getenv("REDIS_URL")}
}

// NewRedisClient parses cfg.URL, connects and verifies the connection with PING.
// The client is closed again when the ping fails.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", opts.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", opts.Addr)
	return rdb, nil
}
