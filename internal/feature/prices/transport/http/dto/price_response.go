// Package dto defines data transfer objects for the prices feature's HTTP transport layer.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/prices/domain/entity"
)

// PriceResponse は価格クオートのレスポンスDTOです。
// decimal は JSON 上で文字列として出力されます。
type PriceResponse struct {
	TickerSymbol  string           `json:"ticker_symbol"`            // ティッカー
	CurrentPrice  decimal.Decimal  `json:"current_price"`            // 現在値
	PreviousClose *decimal.Decimal `json:"previous_close,omitempty"` // 前日終値
	Change        decimal.Decimal  `json:"change"`                   // 前日比
	ChangePercent decimal.Decimal  `json:"change_percent"`           // 前日比（%）
	Volume        *int64           `json:"volume,omitempty"`         // 出来高
	Timestamp     time.Time        `json:"timestamp"`                // 取得時刻
	Source        string           `json:"source"`                   // 取得元
}

// PricesRequest は複数銘柄の価格取得・価格更新リクエストです。
type PricesRequest struct {
	TickerSymbols []string `json:"ticker_symbols" binding:"required,min=1,max=100"`
}

// NewPriceResponse converts a quote into its wire form.
func NewPriceResponse(q entity.PriceQuote) PriceResponse {
	return PriceResponse{
		TickerSymbol:  q.Ticker,
		CurrentPrice:  q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		Timestamp:     q.Timestamp.UTC(),
		Source:        q.Source,
	}
}

// NewPriceResponses converts quotes, always returning a non-nil slice.
func NewPriceResponses(qs []entity.PriceQuote) []PriceResponse {
	out := make([]PriceResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, NewPriceResponse(q))
	}
	return out
}
