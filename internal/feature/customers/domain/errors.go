// Package domain defines domain-level errors for the customers feature.
package domain

import "errors"

var (
	// ErrCustomerNotFound indicates that no customer matches the given ID or email.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrEmailExists indicates that another customer already uses the email address.
	ErrEmailExists = errors.New("customer with this email already exists")

	// ErrInvalidCustomer indicates that a create or update request failed validation.
	ErrInvalidCustomer = errors.New("invalid customer")
)
