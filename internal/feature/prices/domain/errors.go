// Package domain defines domain-level errors for the prices feature.
package domain

import "errors"

var (
	// ErrPriceNotFound indicates that no price source could resolve a quote for the ticker.
	ErrPriceNotFound = errors.New("price not found")

	// ErrInvalidTicker indicates an empty or malformed ticker symbol.
	ErrInvalidTicker = errors.New("invalid ticker symbol")
)
