// Package entity defines the domain models for the customers feature.
package entity

import (
	"strings"
	"time"
)

// Address is a customer's postal address.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// Customer is an account holder. Email is unique across customers.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail returns the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
