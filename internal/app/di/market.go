// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"portfolio_tracker/internal/feature/prices/adapters"
	"portfolio_tracker/internal/feature/prices/usecase"
	"portfolio_tracker/internal/platform/externalapi/alphavantage"
	platformhttp "portfolio_tracker/internal/platform/http"
	"portfolio_tracker/internal/platform/metrics"
	"portfolio_tracker/internal/shared/ratelimiter"
)

// alphaVantageQuotaKey is the Redis key holding the shared Alpha Vantage request quota.
const alphaVantageQuotaKey = "alphavantage:quota"

// NewPriceSource creates the configured PriceSource.
// With ALPHA_VANTAGE_API_KEY set it returns the Alpha Vantage source, paced by a limiter
// shared through Redis when rdb is non-nil. ALPHA_VANTAGE_RATE_LIMIT=0 disables pacing.
// Otherwise it returns the mock source.
func NewPriceSource(rdb *redis.Client, m *metrics.Metrics) usecase.PriceSource {
	cfg := alphavantage.LoadConfig()
	if !cfg.Enabled() {
		slog.Info("ALPHA_VANTAGE_API_KEY not set, using mock price source")
		return adapters.NewMockPriceSource(adapters.DefaultMockDelay, m)
	}

	var limiter ratelimiter.Limiter
	switch {
	case cfg.RateLimit == 0:
		// 有料プランなどクォータ制限のないキー
		limiter = ratelimiter.Unlimited{}
	case rdb != nil:
		limiter = ratelimiter.NewRedisLimiter(rdb, alphaVantageQuotaKey, cfg.RateLimit, cfg.RateInterval)
	default:
		limiter = ratelimiter.NewLocalLimiter(cfg.RateLimit, cfg.RateInterval)
	}
	httpClient := platformhttp.NewHTTPClient(cfg.Timeout)
	slog.Info("using Alpha Vantage price source", "rate_limit", cfg.RateLimit, "interval", cfg.RateInterval)
	return alphavantage.NewPriceSource(cfg, httpClient, limiter, m)
}
