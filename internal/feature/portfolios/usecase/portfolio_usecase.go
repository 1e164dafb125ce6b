// Package usecase implements portfolio management for the portfolio service.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/portfolios/domain"
	"portfolio_tracker/internal/feature/portfolios/domain/entity"
)

const (
	// DefaultListLimit is used when a list request does not give a positive limit.
	DefaultListLimit = 100

	maxNameLength        = 100
	maxDescriptionLength = 500
)

// PortfolioRepository persists portfolios.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PortfolioRepository interface {
	Create(ctx context.Context, p entity.Portfolio) error
	FindByID(ctx context.Context, id string) (entity.Portfolio, error)
	List(ctx context.Context, limit int) ([]entity.Portfolio, error)
	ListByCustomer(ctx context.Context, customerID string) ([]entity.Portfolio, error)
	Update(ctx context.Context, p entity.Portfolio) error
	UpdateValue(ctx context.Context, id string, totalValue decimal.Decimal, investmentCount int, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// CreateInput carries the fields of a new portfolio.
type CreateInput struct {
	CustomerID  string
	Name        string
	Type        entity.PortfolioType
	Description *string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Type        *entity.PortfolioType
	Description *string
}

// PortfolioUsecase implements portfolio CRUD and valuation bookkeeping.
type PortfolioUsecase struct {
	repo  PortfolioRepository
	now   func() time.Time
	newID func() string
}

// NewPortfolioUsecase creates a PortfolioUsecase.
func NewPortfolioUsecase(repo PortfolioRepository) *PortfolioUsecase {
	return &PortfolioUsecase{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Create validates in and stores a new, empty portfolio.
func (u *PortfolioUsecase) Create(ctx context.Context, in CreateInput) (entity.Portfolio, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return entity.Portfolio{}, fmt.Errorf("%w: customer_id is required", domain.ErrInvalidPortfolio)
	}
	if err := validateName(in.Name); err != nil {
		return entity.Portfolio{}, err
	}
	if !in.Type.Valid() {
		return entity.Portfolio{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidPortfolio, in.Type)
	}
	if err := validateDescription(in.Description); err != nil {
		return entity.Portfolio{}, err
	}

	now := u.now()
	p := entity.Portfolio{
		ID:          u.newID(),
		CustomerID:  strings.TrimSpace(in.CustomerID),
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		TotalValue:  decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return entity.Portfolio{}, err
	}
	return p, nil
}

// Get returns the portfolio with id.
func (u *PortfolioUsecase) Get(ctx context.Context, id string) (entity.Portfolio, error) {
	return u.repo.FindByID(ctx, id)
}

// List returns up to limit portfolios.
func (u *PortfolioUsecase) List(ctx context.Context, limit int) ([]entity.Portfolio, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return u.repo.List(ctx, limit)
}

// Update applies a partial update.
func (u *PortfolioUsecase) Update(ctx context.Context, id string, in UpdateInput) (entity.Portfolio, error) {
	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return entity.Portfolio{}, err
		}
	}
	if in.Type != nil && !in.Type.Valid() {
		return entity.Portfolio{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidPortfolio, *in.Type)
	}
	if err := validateDescription(in.Description); err != nil {
		return entity.Portfolio{}, err
	}

	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entity.Portfolio{}, err
	}
	if in.Name == nil && in.Type == nil && in.Description == nil {
		return p, nil
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	p.UpdatedAt = u.now()

	if err := u.repo.Update(ctx, p); err != nil {
		return entity.Portfolio{}, err
	}
	return p, nil
}

// Delete removes the portfolio with id.
func (u *PortfolioUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}

// ListByCustomer returns every portfolio owned by customerID.
func (u *PortfolioUsecase) ListByCustomer(ctx context.Context, customerID string) ([]entity.Portfolio, error) {
	return u.repo.ListByCustomer(ctx, customerID)
}

// CustomerSummary totals the portfolios owned by customerID.
func (u *PortfolioUsecase) CustomerSummary(ctx context.Context, customerID string) (entity.CustomerSummary, error) {
	ps, err := u.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return entity.CustomerSummary{}, fmt.Errorf("list portfolios for customer %s: %w", customerID, err)
	}
	return entity.SummarizeCustomer(customerID, ps), nil
}

// UpdateValue records the totals computed by the asset service and returns the updated portfolio.
func (u *PortfolioUsecase) UpdateValue(ctx context.Context, id string, totalValue decimal.Decimal, investmentCount int) (entity.Portfolio, error) {
	if totalValue.IsNegative() {
		return entity.Portfolio{}, fmt.Errorf("%w: total_value must not be negative", domain.ErrInvalidPortfolio)
	}
	if investmentCount < 0 {
		return entity.Portfolio{}, fmt.Errorf("%w: investment_count must not be negative", domain.ErrInvalidPortfolio)
	}
	if err := u.repo.UpdateValue(ctx, id, totalValue, investmentCount, u.now()); err != nil {
		return entity.Portfolio{}, err
	}
	return u.repo.FindByID(ctx, id)
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > maxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", domain.ErrInvalidPortfolio, maxNameLength)
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrInvalidPortfolio, maxDescriptionLength)
	}
	return nil
}
