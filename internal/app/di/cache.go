package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_tracker/internal/feature/prices/adapters"
	"portfolio_tracker/internal/feature/prices/usecase"
	"portfolio_tracker/internal/platform/cache"
	"portfolio_tracker/internal/platform/metrics"
	platformredis "portfolio_tracker/internal/platform/redis"
)

// priceNamespace is the key prefix for cached quotes ("price:AAPL").
const priceNamespace = "price"

// ConnectRedis returns a Redis client when REDIS_URL is set and reachable, and nil otherwise.
// An unreachable server is logged and never fails startup.
func ConnectRedis(ctx context.Context) *redis.Client {
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfig())
	switch {
	case errors.Is(err, platformredis.ErrNotConfigured):
		slog.Info("REDIS_URL not set, using in-memory price cache")
		return nil
	case err != nil:
		slog.Warn("Redis unavailable, falling back to in-memory price cache", "error", err)
		return nil
	}
	return rdb
}

// NewPriceCache creates a PriceCache implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the in-process cache.
func NewPriceCache(rdb *redis.Client, ttl time.Duration, m *metrics.Metrics) usecase.PriceCache {
	if rdb != nil {
		return cache.NewRedisPriceCache(rdb, ttl, priceNamespace, m)
	}
	return adapters.NewMemoryPriceCache(ttl, m)
}
