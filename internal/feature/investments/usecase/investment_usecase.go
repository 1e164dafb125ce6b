// Package usecase implements the business logic for the investments feature.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/investments/domain"
	"portfolio_tracker/internal/feature/investments/domain/entity"
	pricesentity "portfolio_tracker/internal/feature/prices/domain/entity"
)

const (
	// DefaultListLimit is used when a list request does not specify a positive limit.
	DefaultListLimit = 100
	maxTickerLength  = 20
)

// InvestmentRepository persists investments.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type InvestmentRepository interface {
	Create(ctx context.Context, inv entity.Investment) error
	FindByID(ctx context.Context, id string) (entity.Investment, error)
	List(ctx context.Context, limit int) ([]entity.Investment, error)
	ListByPortfolio(ctx context.Context, portfolioID string) ([]entity.Investment, error)
	ListByTicker(ctx context.Context, ticker string) ([]entity.Investment, error)
	UniqueTickers(ctx context.Context) ([]string, error)
	// Update overwrites the editable and derived fields of an existing investment.
	Update(ctx context.Context, inv entity.Investment) error
	// UpdatePrice overwrites only the price and derived valuation fields.
	UpdatePrice(ctx context.Context, inv entity.Investment) error
	Delete(ctx context.Context, id string) error
}

// PortfolioNotifier pushes recomputed portfolio totals to the portfolio service.
type PortfolioNotifier interface {
	NotifyValue(ctx context.Context, portfolioID string, totalValue decimal.Decimal, investmentCount int) error
}

// CreateInput carries the fields of a new investment.
type CreateInput struct {
	PortfolioID    string
	TickerSymbol   string
	InstrumentType entity.InstrumentType
	Quantity       decimal.Decimal
	PurchasePrice  decimal.Decimal
	PurchaseDate   time.Time
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Quantity      *decimal.Decimal
	PurchasePrice *decimal.Decimal
	PurchaseDate  *time.Time
}

// InvestmentUsecase implements investment CRUD and portfolio valuation.
type InvestmentUsecase struct {
	repo     InvestmentRepository
	notifier PortfolioNotifier
	now      func() time.Time
	newID    func() string
}

// NewInvestmentUsecase creates an InvestmentUsecase.
func NewInvestmentUsecase(repo InvestmentRepository, notifier PortfolioNotifier) *InvestmentUsecase {
	return &InvestmentUsecase{
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Create validates in and stores a new investment.
func (u *InvestmentUsecase) Create(ctx context.Context, in CreateInput) (entity.Investment, error) {
	ticker := pricesentity.NormalizeTicker(in.TickerSymbol)
	switch {
	case strings.TrimSpace(in.PortfolioID) == "":
		return entity.Investment{}, fmt.Errorf("%w: portfolio_id is required", domain.ErrInvalidInvestment)
	case ticker == "" || len(ticker) > maxTickerLength:
		return entity.Investment{}, fmt.Errorf("%w: ticker_symbol must be 1-%d characters", domain.ErrInvalidInvestment, maxTickerLength)
	case !in.InstrumentType.Valid():
		return entity.Investment{}, fmt.Errorf("%w: unknown instrument_type %q", domain.ErrInvalidInvestment, in.InstrumentType)
	case !in.Quantity.IsPositive():
		return entity.Investment{}, fmt.Errorf("%w: quantity must be greater than 0", domain.ErrInvalidInvestment)
	case !in.PurchasePrice.IsPositive():
		return entity.Investment{}, fmt.Errorf("%w: purchase_price must be greater than 0", domain.ErrInvalidInvestment)
	}

	now := u.now()
	inv := entity.Investment{
		ID:             u.newID(),
		PortfolioID:    strings.TrimSpace(in.PortfolioID),
		TickerSymbol:   ticker,
		InstrumentType: in.InstrumentType,
		Quantity:       in.Quantity,
		PurchasePrice:  in.PurchasePrice,
		PurchaseDate:   in.PurchaseDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inv.Recalculate()

	if err := u.repo.Create(ctx, inv); err != nil {
		return entity.Investment{}, err
	}
	return inv, nil
}

// Get returns the investment with id.
func (u *InvestmentUsecase) Get(ctx context.Context, id string) (entity.Investment, error) {
	return u.repo.FindByID(ctx, id)
}

// List returns up to limit investments.
func (u *InvestmentUsecase) List(ctx context.Context, limit int) ([]entity.Investment, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return u.repo.List(ctx, limit)
}

// Update applies a partial update. Derived fields are recomputed when a current price is known.
func (u *InvestmentUsecase) Update(ctx context.Context, id string, in UpdateInput) (entity.Investment, error) {
	if in.Quantity != nil && !in.Quantity.IsPositive() {
		return entity.Investment{}, fmt.Errorf("%w: quantity must be greater than 0", domain.ErrInvalidInvestment)
	}
	if in.PurchasePrice != nil && !in.PurchasePrice.IsPositive() {
		return entity.Investment{}, fmt.Errorf("%w: purchase_price must be greater than 0", domain.ErrInvalidInvestment)
	}

	inv, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entity.Investment{}, err
	}
	if in.Quantity == nil && in.PurchasePrice == nil && in.PurchaseDate == nil {
		return inv, nil
	}

	if in.Quantity != nil {
		inv.Quantity = *in.Quantity
	}
	if in.PurchasePrice != nil {
		inv.PurchasePrice = *in.PurchasePrice
	}
	if in.PurchaseDate != nil {
		inv.PurchaseDate = *in.PurchaseDate
	}
	inv.UpdatedAt = u.now()
	inv.Recalculate()

	if err := u.repo.Update(ctx, inv); err != nil {
		return entity.Investment{}, err
	}
	return inv, nil
}

// Delete removes the investment with id.
func (u *InvestmentUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}

// ListByPortfolio returns every investment held in portfolioID.
func (u *InvestmentUsecase) ListByPortfolio(ctx context.Context, portfolioID string) ([]entity.Investment, error) {
	return u.repo.ListByPortfolio(ctx, portfolioID)
}

// PortfolioSummary totals the investments of portfolioID.
func (u *InvestmentUsecase) PortfolioSummary(ctx context.Context, portfolioID string) (entity.PortfolioSummary, error) {
	invs, err := u.repo.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return entity.PortfolioSummary{}, fmt.Errorf("list investments for portfolio %s: %w", portfolioID, err)
	}
	return entity.Summarize(portfolioID, invs), nil
}

// SyncPortfolioValue recomputes the totals of portfolioID and pushes them to the portfolio service.
// A failed notification is logged and does not fail the call.
func (u *InvestmentUsecase) SyncPortfolioValue(ctx context.Context, portfolioID string) (entity.PortfolioSummary, error) {
	s, err := u.PortfolioSummary(ctx, portfolioID)
	if err != nil {
		return entity.PortfolioSummary{}, err
	}
	if err := u.notifier.NotifyValue(ctx, portfolioID, s.TotalValue, s.TotalInvestments); err != nil {
		slog.Warn("failed to notify portfolio service", "portfolio_id", portfolioID, "error", err)
	}
	return s, nil
}
