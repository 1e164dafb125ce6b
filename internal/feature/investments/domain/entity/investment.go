// Package entity defines the domain models for the investments feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentType classifies what kind of security an investment holds.
type InstrumentType string

const (
	InstrumentStock          InstrumentType = "Stock"
	InstrumentETF            InstrumentType = "ETF"
	InstrumentBond           InstrumentType = "Bond"
	InstrumentMutualFund     InstrumentType = "Mutual Fund"
	InstrumentCryptocurrency InstrumentType = "Cryptocurrency"
	InstrumentCommodity      InstrumentType = "Commodity"
	InstrumentOption         InstrumentType = "Option"
	InstrumentFuture         InstrumentType = "Future"
	InstrumentOther          InstrumentType = "Other"
)

// Valid reports whether t is one of the known instrument types.
func (t InstrumentType) Valid() bool {
	switch t {
	case InstrumentStock, InstrumentETF, InstrumentBond, InstrumentMutualFund, InstrumentCryptocurrency,
		InstrumentCommodity, InstrumentOption, InstrumentFuture, InstrumentOther:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// Investment is a holding of one ticker inside a portfolio.
// CurrentValue, GainLoss and GainLossPercent are derived from Quantity, PurchasePrice and CurrentPrice.
type Investment struct {
	ID             string
	PortfolioID    string
	TickerSymbol   string
	InstrumentType InstrumentType
	Quantity       decimal.Decimal
	PurchasePrice  decimal.Decimal
	PurchaseDate   time.Time

	CurrentPrice    *decimal.Decimal // nil until the first price update
	LastUpdated     *time.Time       // when CurrentPrice was last set
	CurrentValue    decimal.Decimal
	GainLoss        decimal.Decimal
	GainLossPercent decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CostBasis returns Quantity × PurchasePrice.
func (i Investment) CostBasis() decimal.Decimal {
	return i.Quantity.Mul(i.PurchasePrice)
}

// ApplyPrice sets the current price observed at `at` and recomputes the derived fields.
func (i *Investment) ApplyPrice(price decimal.Decimal, at time.Time) {
	p := price
	i.CurrentPrice = &p
	i.LastUpdated = &at
	i.UpdatedAt = at
	i.Recalculate()
}

// Recalculate refreshes the derived valuation fields. Without a current price they are zero.
func (i *Investment) Recalculate() {
	if i.CurrentPrice == nil {
		i.CurrentValue = decimal.Zero
		i.GainLoss = decimal.Zero
		i.GainLossPercent = decimal.Zero
		return
	}
	cost := i.CostBasis()
	i.CurrentValue = i.Quantity.Mul(*i.CurrentPrice)
	i.GainLoss = i.CurrentValue.Sub(cost)
	i.GainLossPercent = percentOf(i.GainLoss, cost)
}

// percentOf returns part/whole×100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// PortfolioSummary aggregates the holdings of one portfolio.
type PortfolioSummary struct {
	PortfolioID          string
	Investments          []Investment
	TotalInvestments     int
	TotalValue           decimal.Decimal
	TotalCostBasis       decimal.Decimal
	TotalGainLoss        decimal.Decimal
	TotalGainLossPercent decimal.Decimal
}

// Summarize totals investments for portfolioID.
func Summarize(portfolioID string, investments []Investment) PortfolioSummary {
	s := PortfolioSummary{
		PortfolioID:      portfolioID,
		Investments:      investments,
		TotalInvestments: len(investments),
		TotalValue:       decimal.Zero,
		TotalCostBasis:   decimal.Zero,
	}
	for _, inv := range investments {
		s.TotalValue = s.TotalValue.Add(inv.CurrentValue)
		s.TotalCostBasis = s.TotalCostBasis.Add(inv.CostBasis())
	}
	s.TotalGainLoss = s.TotalValue.Sub(s.TotalCostBasis)
	s.TotalGainLossPercent = percentOf(s.TotalGainLoss, s.TotalCostBasis)
	return s
}
