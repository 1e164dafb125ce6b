// Package adapters provides the in-process price cache and the mock price source.
package adapters

import (
	"context"
	"sync"
	"time"

	"portfolio_tracker/internal/feature/prices/domain/entity"
	"portfolio_tracker/internal/feature/prices/usecase"
	"portfolio_tracker/internal/platform/metrics"
)

const memoryBackend = "memory"

// cacheEntry wraps a quote with its expiration instant.
type cacheEntry struct {
	quote     entity.PriceQuote
	expiresAt time.Time
}

// valid reports whether the entry is still usable at now.
func (e cacheEntry) valid(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// MemoryPriceCache is a PriceCache held in process memory.
// Entries live as long as the process; expired entries are purged lazily on read.
type MemoryPriceCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

var _ usecase.PriceCache = (*MemoryPriceCache)(nil)

// NewMemoryPriceCache creates an empty in-process cache. A ttl <= 0 uses usecase.DefaultCacheTTL.
func NewMemoryPriceCache(ttl time.Duration, m *metrics.Metrics) *MemoryPriceCache {
	if ttl <= 0 {
		ttl = usecase.DefaultCacheTTL
	}
	return &MemoryPriceCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		metrics: m,
	}
}

// Get returns the cached quote for ticker if it has not expired.
func (c *MemoryPriceCache) Get(_ context.Context, ticker string) (entity.PriceQuote, bool) {
	q, ok := c.lookup(entity.NormalizeTicker(ticker))
	c.metrics.CacheLookup(memoryBackend, ok, 1)
	return q, ok
}

// Set stores quote until now+ttl.
func (c *MemoryPriceCache) Set(_ context.Context, quote entity.PriceQuote, ttl time.Duration) bool {
	key := entity.NormalizeTicker(quote.Ticker)
	if key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{quote: quote, expiresAt: c.now().Add(c.effectiveTTL(ttl))}
	return true
}

// GetMany returns the unexpired quotes among tickers.
func (c *MemoryPriceCache) GetMany(_ context.Context, tickers []string) map[string]entity.PriceQuote {
	out := make(map[string]entity.PriceQuote, len(tickers))
	for _, t := range tickers {
		key := entity.NormalizeTicker(t)
		if q, ok := c.lookup(key); ok {
			out[key] = q
		}
	}
	c.metrics.CacheLookup(memoryBackend, true, len(out))
	c.metrics.CacheLookup(memoryBackend, false, len(tickers)-len(out))
	return out
}

// SetMany stores every quote with the same ttl.
func (c *MemoryPriceCache) SetMany(ctx context.Context, quotes []entity.PriceQuote, ttl time.Duration) int {
	n := 0
	for _, q := range quotes {
		if c.Set(ctx, q, ttl) {
			n++
		}
	}
	return n
}

// Delete removes the cached quote for ticker.
func (c *MemoryPriceCache) Delete(_ context.Context, ticker string) bool {
	key := entity.NormalizeTicker(ticker)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear removes every cached quote.
func (c *MemoryPriceCache) Clear(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	return true
}

// lookup reads an entry and drops it when it has expired.
func (c *MemoryPriceCache) lookup(key string) (entity.PriceQuote, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return entity.PriceQuote{}, false
	}
	if e.valid(now) {
		return e.quote, true
	}

	c.mu.Lock()
	// Another writer may have refreshed the entry in between.
	if cur, ok := c.entries[key]; ok && !cur.valid(now) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return entity.PriceQuote{}, false
}

func (c *MemoryPriceCache) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return c.ttl
	}
	return ttl
}
