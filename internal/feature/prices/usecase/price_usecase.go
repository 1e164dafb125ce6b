// Package usecase implements the cache-aside price lookup for the prices feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio_tracker/internal/feature/prices/domain"
	"portfolio_tracker/internal/feature/prices/domain/entity"
)

const (
	// DefaultCacheTTL is how long a cached quote stays valid when no TTL is given.
	DefaultCacheTTL = 300 * time.Second
	// MaxTickersPerRequest bounds a single batch price request.
	MaxTickersPerRequest = 100
)

// PriceCache stores recent quotes keyed by ticker.
// Implementations never return errors: internal failures degrade to a miss or a no-op.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceCache interface {
	// Get returns the cached quote, or false when absent or expired.
	Get(ctx context.Context, ticker string) (entity.PriceQuote, bool)
	// Set stores a quote for ttl (ttl <= 0 uses the backend default) and reports success.
	Set(ctx context.Context, quote entity.PriceQuote, ttl time.Duration) bool
	// GetMany returns only the found and unexpired quotes.
	GetMany(ctx context.Context, tickers []string) map[string]entity.PriceQuote
	// SetMany stores all quotes and returns how many were written.
	SetMany(ctx context.Context, quotes []entity.PriceQuote, ttl time.Duration) int
	// Delete removes a cached quote and reports whether one existed.
	Delete(ctx context.Context, ticker string) bool
	// Clear removes every cached quote.
	Clear(ctx context.Context) bool
}

// PriceSource produces fresh quotes.
type PriceSource interface {
	// Fetch returns a quote for the ticker. Any error means the price is unavailable.
	Fetch(ctx context.Context, ticker string) (entity.PriceQuote, error)
	// FetchMany returns quotes for the tickers it could resolve, silently dropping failures.
	FetchMany(ctx context.Context, tickers []string) []entity.PriceQuote
}

// PriceUsecase resolves quotes through the cache first and the price source second.
type PriceUsecase struct {
	cache  PriceCache
	source PriceSource
	ttl    time.Duration
}

// NewPriceUsecase creates a PriceUsecase. A ttl <= 0 falls back to DefaultCacheTTL.
func NewPriceUsecase(cache PriceCache, source PriceSource, ttl time.Duration) *PriceUsecase {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PriceUsecase{cache: cache, source: source, ttl: ttl}
}

// GetPrice returns the current quote for one ticker.
// It returns domain.ErrPriceNotFound when neither the cache nor the source can resolve it.
func (u *PriceUsecase) GetPrice(ctx context.Context, ticker string, useCache bool) (entity.PriceQuote, error) {
	t := entity.NormalizeTicker(ticker)
	if t == "" {
		return entity.PriceQuote{}, domain.ErrInvalidTicker
	}

	// 1) Check cache
	if useCache {
		if q, ok := u.cache.Get(ctx, t); ok {
			return q, nil
		}
	}

	// 2) Fallback to the price source
	q, err := u.source.Fetch(ctx, t)
	if err != nil {
		if !errors.Is(err, domain.ErrPriceNotFound) {
			slog.Warn("price source fetch failed", "ticker", t, "error", err)
		}
		return entity.PriceQuote{}, fmt.Errorf("%w for %s", domain.ErrPriceNotFound, t)
	}

	// 3) Store in cache (best effort)
	if useCache {
		u.cache.Set(ctx, q, u.ttl)
	}
	return q, nil
}

// GetPrices returns quotes for every ticker that can be resolved. Unresolvable tickers are
// omitted and the result has no particular order.
func (u *PriceUsecase) GetPrices(ctx context.Context, tickers []string, useCache bool) ([]entity.PriceQuote, error) {
	ts := entity.NormalizeTickers(tickers)
	if len(ts) == 0 {
		return nil, domain.ErrInvalidTicker
	}
	if len(ts) > MaxTickersPerRequest {
		return nil, fmt.Errorf("%w: at most %d tickers per request", domain.ErrInvalidTicker, MaxTickersPerRequest)
	}

	var hits map[string]entity.PriceQuote
	if useCache {
		hits = u.cache.GetMany(ctx, ts)
	}

	out := make([]entity.PriceQuote, 0, len(ts))
	missing := make([]string, 0, len(ts))
	for _, t := range ts {
		if q, ok := hits[t]; ok {
			out = append(out, q)
			continue
		}
		missing = append(missing, t)
	}

	if len(missing) > 0 {
		fresh := u.source.FetchMany(ctx, missing)
		if useCache && len(fresh) > 0 {
			u.cache.SetMany(ctx, fresh, u.ttl)
		}
		out = append(out, fresh...)
	}
	return out, nil
}

// ClearCache drops every cached quote.
func (u *PriceUsecase) ClearCache(ctx context.Context) bool {
	return u.cache.Clear(ctx)
}
