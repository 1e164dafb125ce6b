// Package domain defines domain-level errors for the portfolios feature.
package domain

import "errors"

var (
	// ErrPortfolioNotFound indicates that no portfolio exists with the given ID.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrInvalidPortfolio indicates that a create or update request failed validation.
	ErrInvalidPortfolio = errors.New("invalid portfolio")

	// ErrPortfolioExists indicates that a portfolio with the same ID already exists.
	ErrPortfolioExists = errors.New("portfolio already exists")
)
