package di

import (
	"os"
	"strconv"
	"time"

	pricesusecase "portfolio_tracker/internal/feature/prices/usecase"
)

const (
	defaultPortfolioServiceURL = "http://localhost:8001"
	defaultNotifyTimeout       = 10 * time.Second
)

// Config holds the per-process settings shared by the service entrypoints.
type Config struct {
	Port                string        // Listen port, e.g. "8002"
	PriceCacheTTL       time.Duration // Lifetime of cached quotes
	PortfolioServiceURL string        // Base URL of portfolio-service for value notifications
	NotifyTimeout       time.Duration // Timeout for a single notification call
}

// LoadConfig loads service configuration from environment variables.
// defaultPort is used when PORT is unset.
func LoadConfig(defaultPort string) Config {
	cfg := Config{
		Port:                os.Getenv("PORT"),
		PriceCacheTTL:       pricesusecase.DefaultCacheTTL,
		PortfolioServiceURL: os.Getenv("PORTFOLIO_SERVICE_URL"),
		NotifyTimeout:       defaultNotifyTimeout,
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.PortfolioServiceURL == "" {
		cfg.PortfolioServiceURL = defaultPortfolioServiceURL
	}
	if v := os.Getenv("PRICE_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PriceCacheTTL = time.Duration(n) * time.Second
		}
	}
	return cfg
}
