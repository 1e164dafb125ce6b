// Package entity defines the domain models for the prices feature.
package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a point-in-time market quote for a single ticker.
// Quotes are values: a newer quote for the same ticker supersedes an older one.
type PriceQuote struct {
	Ticker        string           // Canonical (uppercase) ticker symbol
	CurrentPrice  decimal.Decimal  // Last traded price
	PreviousClose *decimal.Decimal // Previous session close, if known
	Change        decimal.Decimal  // CurrentPrice - PreviousClose
	ChangePercent decimal.Decimal  // Change relative to PreviousClose, in percent
	Volume        *int64           // Session volume, if known
	Timestamp     time.Time        // When the quote was produced
	Source        string           // Provider tag, e.g. "mock", "alphavantage"
}

// NormalizeTicker returns the canonical form of a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// NormalizeTickers canonicalizes tickers, dropping blanks and duplicates while keeping order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		n := NormalizeTicker(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
