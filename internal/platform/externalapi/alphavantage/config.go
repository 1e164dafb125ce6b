// Package alphavantage provides a price source backed by the Alpha Vantage GLOBAL_QUOTE API.
package alphavantage

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL   = "https://www.alphavantage.co/query"
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 5 // free tier: 5 requests per minute
)

// Config holds configuration for the Alpha Vantage API client.
type Config struct {
	APIKey       string        // API key for authentication
	BaseURL      string        // Query endpoint (e.g., "https://www.alphavantage.co/query")
	Timeout      time.Duration // HTTP request timeout
	RateLimit    int           // Requests allowed per RateInterval; 0 disables pacing
	RateInterval time.Duration // Window for RateLimit
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// LoadConfig loads Alpha Vantage configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:       os.Getenv("ALPHA_VANTAGE_API_KEY"),
		BaseURL:      os.Getenv("ALPHA_VANTAGE_BASE_URL"),
		Timeout:      defaultTimeout,
		RateLimit:    defaultRateLimit,
		RateInterval: time.Minute,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if v := os.Getenv("ALPHA_VANTAGE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimit = n
		}
	}
	return cfg
}
