// Package usecase implements customer management for the customer service.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio_tracker/internal/feature/customers/domain"
	"portfolio_tracker/internal/feature/customers/domain/entity"
)

// DefaultListLimit is used when a list request does not give a positive limit.
const DefaultListLimit = 100

// CustomerRepository persists customers.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CustomerRepository interface {
	Create(ctx context.Context, c entity.Customer) error
	FindByID(ctx context.Context, id string) (entity.Customer, error)
	FindByEmail(ctx context.Context, email string) (entity.Customer, error)
	List(ctx context.Context, limit int) ([]entity.Customer, error)
	Update(ctx context.Context, c entity.Customer) error
	Delete(ctx context.Context, id string) error
}

// CreateInput carries the fields of a new customer. Every field is required.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   entity.Address
}

// UpdateInput carries a partial update; nil fields are left unchanged.
// A non-nil Address replaces the whole address.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *entity.Address
}

func (in UpdateInput) empty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Email == nil && in.Phone == nil && in.Address == nil
}

// CustomerUsecase implements customer CRUD.
type CustomerUsecase struct {
	repo  CustomerRepository
	now   func() time.Time
	newID func() string
}

// NewCustomerUsecase creates a CustomerUsecase.
func NewCustomerUsecase(repo CustomerRepository) *CustomerUsecase {
	return &CustomerUsecase{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Create validates in and stores a new customer.
// It returns domain.ErrEmailExists when the email is already registered.
func (u *CustomerUsecase) Create(ctx context.Context, in CreateInput) (entity.Customer, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return entity.Customer{}, err
	}
	required := []struct{ field, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
		{"address.street", in.Address.Street},
		{"address.city", in.Address.City},
		{"address.state", in.Address.State},
		{"address.zip_code", in.Address.ZipCode},
		{"address.country", in.Address.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return entity.Customer{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidCustomer, r.field)
		}
	}

	if err := u.ensureEmailFree(ctx, email, ""); err != nil {
		return entity.Customer{}, err
	}

	now := u.now()
	c := entity.Customer{
		ID:        u.newID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.repo.Create(ctx, c); err != nil {
		return entity.Customer{}, err
	}
	return c, nil
}

// Get returns the customer with id.
func (u *CustomerUsecase) Get(ctx context.Context, id string) (entity.Customer, error) {
	return u.repo.FindByID(ctx, id)
}

// GetByEmail returns the customer registered with email.
func (u *CustomerUsecase) GetByEmail(ctx context.Context, email string) (entity.Customer, error) {
	return u.repo.FindByEmail(ctx, entity.NormalizeEmail(email))
}

// List returns up to limit customers.
func (u *CustomerUsecase) List(ctx context.Context, limit int) ([]entity.Customer, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return u.repo.List(ctx, limit)
}

// Update applies a partial update. Changing the email to one used by another customer
// returns domain.ErrEmailExists.
func (u *CustomerUsecase) Update(ctx context.Context, id string, in UpdateInput) (entity.Customer, error) {
	var email string
	if in.Email != nil {
		e, err := validateEmail(*in.Email)
		if err != nil {
			return entity.Customer{}, err
		}
		email = e
	}

	c, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entity.Customer{}, err
	}
	if in.empty() {
		return c, nil
	}

	if in.Email != nil && email != c.Email {
		if err := u.ensureEmailFree(ctx, email, c.ID); err != nil {
			return entity.Customer{}, err
		}
		c.Email = email
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	c.UpdatedAt = u.now()

	if err := u.repo.Update(ctx, c); err != nil {
		return entity.Customer{}, err
	}
	return c, nil
}

// Delete removes the customer with id.
func (u *CustomerUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}

// ensureEmailFree fails when email belongs to a customer other than selfID.
func (u *CustomerUsecase) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := u.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("lookup customer by email: %w", err)
	case existing.ID != selfID:
		return domain.ErrEmailExists
	}
	return nil
}

func validateEmail(raw string) (string, error) {
	email := entity.NormalizeEmail(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email is not a valid address", domain.ErrInvalidCustomer)
	}
	return email, nil
}
