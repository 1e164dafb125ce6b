// Package dto defines data transfer objects for the investments feature's HTTP transport layer.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/investments/domain/entity"
	"portfolio_tracker/internal/feature/investments/usecase"
	pricesdto "portfolio_tracker/internal/feature/prices/transport/http/dto"
)

// DateLayout is the wire format of purchase_date.
const DateLayout = "2006-01-02"

// CreateInvestmentRequest is the body of POST /investments.
// Numeric fields accept JSON numbers or strings; their ranges are checked by the usecase.
type CreateInvestmentRequest struct {
	PortfolioID    string          `json:"portfolio_id" binding:"required"`
	TickerSymbol   string          `json:"ticker_symbol" binding:"required,max=20"`
	InstrumentType string          `json:"instrument_type" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	PurchaseDate   string          `json:"purchase_date" binding:"required"`
}

// UpdateInvestmentRequest is the body of PUT /investments/:id. Omitted fields are left unchanged.
type UpdateInvestmentRequest struct {
	Quantity      *decimal.Decimal `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	PurchaseDate  *string          `json:"purchase_date"`
}

// UpdatePricesRequest is the optional body of POST /investments/update-prices.
type UpdatePricesRequest struct {
	TickerSymbols []string `json:"ticker_symbols" binding:"max=100"`
}

// ToInput parses the request into a usecase input.
func (r CreateInvestmentRequest) ToInput() (usecase.CreateInput, error) {
	d, err := time.Parse(DateLayout, r.PurchaseDate)
	if err != nil {
		return usecase.CreateInput{}, err
	}
	return usecase.CreateInput{
		PortfolioID:    r.PortfolioID,
		TickerSymbol:   r.TickerSymbol,
		InstrumentType: entity.InstrumentType(r.InstrumentType),
		Quantity:       r.Quantity,
		PurchasePrice:  r.PurchasePrice,
		PurchaseDate:   d,
	}, nil
}

// ToInput parses the request into a usecase input.
func (r UpdateInvestmentRequest) ToInput() (usecase.UpdateInput, error) {
	in := usecase.UpdateInput{Quantity: r.Quantity, PurchasePrice: r.PurchasePrice}
	if r.PurchaseDate != nil {
		d, err := time.Parse(DateLayout, *r.PurchaseDate)
		if err != nil {
			return usecase.UpdateInput{}, err
		}
		in.PurchaseDate = &d
	}
	return in, nil
}

// InvestmentResponse は保有銘柄のレスポンスDTOです。
type InvestmentResponse struct {
	InvestmentID    string           `json:"investment_id"`
	PortfolioID     string           `json:"portfolio_id"`
	TickerSymbol    string           `json:"ticker_symbol"`
	InstrumentType  string           `json:"instrument_type"`
	Quantity        decimal.Decimal  `json:"quantity"`
	PurchasePrice   decimal.Decimal  `json:"purchase_price"`
	PurchaseDate    string           `json:"purchase_date"` // YYYY-MM-DD
	CurrentPrice    *decimal.Decimal `json:"current_price"`
	LastUpdated     *time.Time       `json:"last_updated"`
	CurrentValue    decimal.Decimal  `json:"current_value"`
	GainLoss        decimal.Decimal  `json:"gain_loss"`
	GainLossPercent decimal.Decimal  `json:"gain_loss_percent"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewInvestmentResponse converts an investment into its wire form.
func NewInvestmentResponse(inv entity.Investment) InvestmentResponse {
	return InvestmentResponse{
		InvestmentID:    inv.ID,
		PortfolioID:     inv.PortfolioID,
		TickerSymbol:    inv.TickerSymbol,
		InstrumentType:  string(inv.InstrumentType),
		Quantity:        inv.Quantity,
		PurchasePrice:   inv.PurchasePrice,
		PurchaseDate:    inv.PurchaseDate.Format(DateLayout),
		CurrentPrice:    inv.CurrentPrice,
		LastUpdated:     inv.LastUpdated,
		CurrentValue:    inv.CurrentValue,
		GainLoss:        inv.GainLoss,
		GainLossPercent: inv.GainLossPercent,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

// NewInvestmentResponses converts investments, always returning a non-nil slice.
func NewInvestmentResponses(invs []entity.Investment) []InvestmentResponse {
	out := make([]InvestmentResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, NewInvestmentResponse(inv))
	}
	return out
}

// PortfolioSummaryResponse はポートフォリオ内の保有銘柄の集計です。
type PortfolioSummaryResponse struct {
	PortfolioID          string               `json:"portfolio_id"`
	Investments          []InvestmentResponse `json:"investments"`
	TotalInvestments     int                  `json:"total_investments"`
	TotalValue           decimal.Decimal      `json:"total_value"`
	TotalCostBasis       decimal.Decimal      `json:"total_cost_basis"`
	TotalGainLoss        decimal.Decimal      `json:"total_gain_loss"`
	TotalGainLossPercent decimal.Decimal      `json:"total_gain_loss_percent"`
}

// NewPortfolioSummaryResponse converts a summary into its wire form.
func NewPortfolioSummaryResponse(s entity.PortfolioSummary) PortfolioSummaryResponse {
	return PortfolioSummaryResponse{
		PortfolioID:          s.PortfolioID,
		Investments:          NewInvestmentResponses(s.Investments),
		TotalInvestments:     s.TotalInvestments,
		TotalValue:           s.TotalValue,
		TotalCostBasis:       s.TotalCostBasis,
		TotalGainLoss:        s.TotalGainLoss,
		TotalGainLossPercent: s.TotalGainLossPercent,
	}
}

// RepriceResponse は価格更新の結果です。
// バックグラウンド実行時は Message が errors にも含まれます。
type RepriceResponse struct {
	UpdatedPrices      []pricesdto.PriceResponse `json:"updated_prices"`
	UpdatedInvestments int                       `json:"updated_investments"`
	Errors             []string                  `json:"errors"`
	Background         bool                      `json:"background"`
	Message            string                    `json:"message,omitempty"`
}

// NewRepriceResponse converts a reprice result into its wire form.
func NewRepriceResponse(r usecase.RepriceResult) RepriceResponse {
	errs := make([]string, 0, len(r.Errors)+1)
	for _, e := range r.Errors {
		errs = append(errs, e.String())
	}
	if r.Message != "" {
		errs = append(errs, r.Message)
	}
	return RepriceResponse{
		UpdatedPrices:      pricesdto.NewPriceResponses(r.UpdatedPrices),
		UpdatedInvestments: r.UpdatedInvestments,
		Errors:             errs,
		Background:         r.Background,
		Message:            r.Message,
	}
}

// SyncValuesResponse は POST /portfolios/:id/sync-values のレスポンスです。
type SyncValuesResponse struct {
	Message         string          `json:"message"`
	PortfolioID     string          `json:"portfolio_id"`
	TotalValue      decimal.Decimal `json:"total_value"`
	InvestmentCount int             `json:"investment_count"`
}
