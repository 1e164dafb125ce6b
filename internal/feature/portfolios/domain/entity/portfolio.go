// Package entity defines the domain models for the portfolios feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioType is the account type of a portfolio.
type PortfolioType string

const (
	TypeBrokerage       PortfolioType = "Brokerage"
	TypeIRA             PortfolioType = "IRA"
	TypeRothIRA         PortfolioType = "Roth IRA"
	TypeTraditional401k PortfolioType = "Traditional 401k"
	TypeRoth401k        PortfolioType = "Roth 401k"
	TypeSavings         PortfolioType = "Savings"
	TypeChecking        PortfolioType = "Checking"
	TypeOther           PortfolioType = "Other"
)

// Valid reports whether t is a known portfolio type.
func (t PortfolioType) Valid() bool {
	switch t {
	case TypeBrokerage, TypeIRA, TypeRothIRA, TypeTraditional401k, TypeRoth401k,
		TypeSavings, TypeChecking, TypeOther:
		return true
	}
	return false
}

// Portfolio groups a customer's investments.
// TotalValue and InvestmentCount are pushed by the asset service after repricing.
type Portfolio struct {
	ID              string
	CustomerID      string
	Name            string
	Type            PortfolioType
	Description     *string
	TotalValue      decimal.Decimal
	InvestmentCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CustomerSummary totals every portfolio of one customer.
type CustomerSummary struct {
	CustomerID      string
	Portfolios      []Portfolio
	TotalPortfolios int
	TotalValue      decimal.Decimal
}

// SummarizeCustomer builds the summary of portfolios owned by customerID.
func SummarizeCustomer(customerID string, portfolios []Portfolio) CustomerSummary {
	total := decimal.Zero
	for _, p := range portfolios {
		total = total.Add(p.TotalValue)
	}
	return CustomerSummary{
		CustomerID:      customerID,
		Portfolios:      portfolios,
		TotalPortfolios: len(portfolios),
		TotalValue:      total,
	}
}
