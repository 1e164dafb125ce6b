// Package cache provides the Redis-backed price cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/prices/domain/entity"
	"portfolio_tracker/internal/feature/prices/usecase"
	"portfolio_tracker/internal/platform/metrics"
)

const (
	redisBackend     = "redis"
	defaultNamespace = "price"
	scanBatchSize    = 200
)

// RedisPriceCache is a PriceCache stored in Redis. Entries survive process restarts and
// expire through Redis key TTLs. Redis errors are logged and treated as misses.
type RedisPriceCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	metrics   *metrics.Metrics
}

var _ usecase.PriceCache = (*RedisPriceCache)(nil)

// cachedQuote is the JSON layout of a quote stored in Redis.
type cachedQuote struct {
	Ticker        string           `json:"ticker_symbol"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	PreviousClose *decimal.Decimal `json:"previous_close"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"change_percent"`
	Volume        *int64           `json:"volume"`
	Timestamp     string           `json:"timestamp"`
	Source        string           `json:"source"`
}

// NewRedisPriceCache creates a Redis price cache.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "price".
func NewRedisPriceCache(rdb *redis.Client, ttl time.Duration, namespace string, m *metrics.Metrics) *RedisPriceCache {
	if ttl <= 0 {
		ttl = usecase.DefaultCacheTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &RedisPriceCache{
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		metrics:   m,
	}
}

// Get returns the cached quote for ticker.
func (c *RedisPriceCache) Get(ctx context.Context, ticker string) (entity.PriceQuote, bool) {
	if c.rdb == nil {
		return entity.PriceQuote{}, false
	}
	key := c.cacheKey(ticker)

	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis price cache get failed", "key", key, "error", err)
		}
		c.metrics.CacheLookup(redisBackend, false, 1)
		return entity.PriceQuote{}, false
	}

	q, err := decodeQuote(b)
	if err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		c.metrics.CacheLookup(redisBackend, false, 1)
		return entity.PriceQuote{}, false
	}
	c.metrics.CacheLookup(redisBackend, true, 1)
	return q, true
}

// Set stores quote with SET ... EX.
func (c *RedisPriceCache) Set(ctx context.Context, quote entity.PriceQuote, ttl time.Duration) bool {
	if c.rdb == nil || entity.NormalizeTicker(quote.Ticker) == "" {
		return false
	}
	b, err := encodeQuote(quote)
	if err != nil {
		slog.Warn("redis price cache encode failed", "ticker", quote.Ticker, "error", err)
		return false
	}
	key := c.cacheKey(quote.Ticker)
	if err := c.rdb.Set(ctx, key, b, c.effectiveTTL(ttl)).Err(); err != nil {
		slog.Warn("redis price cache set failed", "key", key, "error", err)
		return false
	}
	return true
}

// GetMany reads all tickers with a single MGET.
func (c *RedisPriceCache) GetMany(ctx context.Context, tickers []string) map[string]entity.PriceQuote {
	out := make(map[string]entity.PriceQuote, len(tickers))
	if c.rdb == nil || len(tickers) == 0 {
		return out
	}

	keys := make([]string, len(tickers))
	for i, t := range tickers {
		keys[i] = c.cacheKey(t)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Warn("redis price cache mget failed", "count", len(keys), "error", err)
		c.metrics.CacheLookup(redisBackend, false, len(keys))
		return out
	}

	var corrupted []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		q, err := decodeQuote([]byte(s))
		if err != nil {
			corrupted = append(corrupted, keys[i])
			continue
		}
		out[entity.NormalizeTicker(tickers[i])] = q
	}
	if len(corrupted) > 0 {
		_ = c.rdb.Del(ctx, corrupted...).Err()
	}

	c.metrics.CacheLookup(redisBackend, true, len(out))
	c.metrics.CacheLookup(redisBackend, false, len(keys)-len(out))
	return out
}

// SetMany writes all quotes in one pipeline and returns how many SETs succeeded.
func (c *RedisPriceCache) SetMany(ctx context.Context, quotes []entity.PriceQuote, ttl time.Duration) int {
	if c.rdb == nil || len(quotes) == 0 {
		return 0
	}
	exp := c.effectiveTTL(ttl)

	cmds, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, q := range quotes {
			if entity.NormalizeTicker(q.Ticker) == "" {
				continue
			}
			b, err := encodeQuote(q)
			if err != nil {
				slog.Warn("redis price cache encode failed", "ticker", q.Ticker, "error", err)
				continue
			}
			pipe.Set(ctx, c.cacheKey(q.Ticker), b, exp)
		}
		return nil
	})
	if err != nil {
		slog.Warn("redis price cache pipeline failed", "count", len(quotes), "error", err)
	}

	n := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			n++
		}
	}
	return n
}

// Delete removes the cached quote for ticker.
func (c *RedisPriceCache) Delete(ctx context.Context, ticker string) bool {
	if c.rdb == nil {
		return false
	}
	n, err := c.rdb.Del(ctx, c.cacheKey(ticker)).Result()
	if err != nil {
		slog.Warn("redis price cache delete failed", "ticker", ticker, "error", err)
		return false
	}
	return n > 0
}

// Clear removes every key in the cache namespace.
func (c *RedisPriceCache) Clear(ctx context.Context) bool {
	if c.rdb == nil {
		return false
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.Warn("redis price cache clear failed", "namespace", c.namespace, "error", err)
		return false
	}
	return true
}

// cacheKey generates the cache key for a ticker.
func (c *RedisPriceCache) cacheKey(ticker string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(entity.NormalizeTicker(ticker)))
}

func (c *RedisPriceCache) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return c.ttl
	}
	return ttl
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *RedisPriceCache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

func encodeQuote(q entity.PriceQuote) ([]byte, error) {
	return json.Marshal(cachedQuote{
		Ticker:        entity.NormalizeTicker(q.Ticker),
		CurrentPrice:  q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		Timestamp:     q.Timestamp.UTC().Format(time.RFC3339Nano),
		Source:        q.Source,
	})
}

func decodeQuote(b []byte) (entity.PriceQuote, error) {
	var cq cachedQuote
	if err := json.Unmarshal(b, &cq); err != nil {
		return entity.PriceQuote{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, cq.Timestamp)
	if err != nil {
		return entity.PriceQuote{}, fmt.Errorf("parse timestamp %q: %w", cq.Timestamp, err)
	}
	if cq.Ticker == "" {
		return entity.PriceQuote{}, errors.New("cached quote has no ticker")
	}
	return entity.PriceQuote{
		Ticker:        cq.Ticker,
		CurrentPrice:  cq.CurrentPrice,
		PreviousClose: cq.PreviousClose,
		Change:        cq.Change,
		ChangePercent: cq.ChangePercent,
		Volume:        cq.Volume,
		Timestamp:     ts,
		Source:        cq.Source,
	}, nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
