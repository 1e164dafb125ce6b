// Package dto defines data transfer objects for the portfolios feature's HTTP transport layer.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/portfolios/domain/entity"
	"portfolio_tracker/internal/feature/portfolios/usecase"
)

// CreatePortfolioRequest is the body of POST /portfolios.
type CreatePortfolioRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Type        string  `json:"type" binding:"required"`
	CustomerID  string  `json:"customer_id" binding:"required"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ToInput converts the request into a usecase input.
func (r CreatePortfolioRequest) ToInput() usecase.CreateInput {
	return usecase.CreateInput{
		CustomerID:  r.CustomerID,
		Name:        r.Name,
		Type:        entity.PortfolioType(r.Type),
		Description: r.Description,
	}
}

// UpdatePortfolioRequest is the body of PUT /portfolios/:id. Omitted fields are left unchanged.
type UpdatePortfolioRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type        *string `json:"type"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ToInput converts the request into a usecase input.
func (r UpdatePortfolioRequest) ToInput() usecase.UpdateInput {
	in := usecase.UpdateInput{Name: r.Name, Description: r.Description}
	if r.Type != nil {
		t := entity.PortfolioType(*r.Type)
		in.Type = &t
	}
	return in
}

// UpdateValueRequest carries the totals pushed by the asset service.
// It is read from the JSON body, or from the query string when the body is empty.
type UpdateValueRequest struct {
	TotalValue      *decimal.Decimal `json:"total_value" binding:"required"`
	InvestmentCount *int             `json:"investment_count" binding:"required"`
}

// PortfolioResponse はポートフォリオのレスポンスDTOです。
type PortfolioResponse struct {
	PortfolioID     string          `json:"portfolio_id"`
	CustomerID      string          `json:"customer_id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Description     *string         `json:"description"`
	TotalValue      decimal.Decimal `json:"total_value"`
	InvestmentCount int             `json:"investment_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewPortfolioResponse converts a portfolio into its wire form.
func NewPortfolioResponse(p entity.Portfolio) PortfolioResponse {
	return PortfolioResponse{
		PortfolioID:     p.ID,
		CustomerID:      p.CustomerID,
		Name:            p.Name,
		Type:            string(p.Type),
		Description:     p.Description,
		TotalValue:      p.TotalValue,
		InvestmentCount: p.InvestmentCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewPortfolioResponses converts portfolios, always returning a non-nil slice.
func NewPortfolioResponses(ps []entity.Portfolio) []PortfolioResponse {
	out := make([]PortfolioResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPortfolioResponse(p))
	}
	return out
}

// UpdateValueResponse は PATCH /portfolios/:id/value のレスポンスです。
type UpdateValueResponse struct {
	Message   string            `json:"message"`
	Portfolio PortfolioResponse `json:"portfolio"`
}

// PortfolioSummaryItem は顧客サマリー内の1ポートフォリオです。
type PortfolioSummaryItem struct {
	PortfolioID     string          `json:"portfolio_id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	TotalValue      decimal.Decimal `json:"total_value"`
	InvestmentCount int             `json:"investment_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CustomerSummaryResponse は顧客の全ポートフォリオの集計です。
type CustomerSummaryResponse struct {
	CustomerID      string                 `json:"customer_id"`
	Portfolios      []PortfolioSummaryItem `json:"portfolios"`
	TotalPortfolios int                    `json:"total_portfolios"`
	TotalValue      decimal.Decimal        `json:"total_value"`
}

// NewCustomerSummaryResponse converts a summary into its wire form.
func NewCustomerSummaryResponse(s entity.CustomerSummary) CustomerSummaryResponse {
	items := make([]PortfolioSummaryItem, 0, len(s.Portfolios))
	for _, p := range s.Portfolios {
		items = append(items, PortfolioSummaryItem{
			PortfolioID:     p.ID,
			Name:            p.Name,
			Type:            string(p.Type),
			TotalValue:      p.TotalValue,
			InvestmentCount: p.InvestmentCount,
			CreatedAt:       p.CreatedAt,
		})
	}
	return CustomerSummaryResponse{
		CustomerID:      s.CustomerID,
		Portfolios:      items,
		TotalPortfolios: s.TotalPortfolios,
		TotalValue:      s.TotalValue,
	}
}
