// Package domain defines domain-level errors for the investments feature.
package domain

import "errors"

var (
	// ErrInvestmentNotFound is returned when no investment has the requested ID.
	ErrInvestmentNotFound = errors.New("investment not found")

	// ErrInvalidInvestment is returned when input fails validation.
	ErrInvalidInvestment = errors.New("invalid investment")

	// ErrInvestmentExists is returned when an investment with the same ID already exists.
	ErrInvestmentExists = errors.New("investment with this ID already exists")
)
