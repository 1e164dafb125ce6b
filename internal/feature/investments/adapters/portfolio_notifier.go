package adapters

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/investments/usecase"
	"portfolio_tracker/internal/platform/metrics"
)

// portfolioValueRequest is the body of PATCH /portfolios/{id}/value.
type portfolioValueRequest struct {
	TotalValue      decimal.Decimal `json:"total_value"`
	InvestmentCount int             `json:"investment_count"`
}

// PortfolioNotifier はポートフォリオサービスへ評価額の更新を通知します。
type PortfolioNotifier struct {
	client  *resty.Client
	metrics *metrics.Metrics
}

var _ usecase.PortfolioNotifier = (*PortfolioNotifier)(nil)

// NewPortfolioNotifier は portfolio-service のベースURLを設定済みの resty クライアントで通知者を生成します。
func NewPortfolioNotifier(client *resty.Client, m *metrics.Metrics) *PortfolioNotifier {
	return &PortfolioNotifier{client: client, metrics: m}
}

// NotifyValue は PATCH /portfolios/{id}/value を送信します。2xx 以外はエラーです。
func (n *PortfolioNotifier) NotifyValue(ctx context.Context, portfolioID string, totalValue decimal.Decimal, investmentCount int) error {
	res, err := n.client.R().
		SetContext(ctx).
		SetPathParam("id", portfolioID).
		SetBody(portfolioValueRequest{TotalValue: totalValue, InvestmentCount: investmentCount}).
		Patch("/portfolios/{id}/value")
	if err != nil {
		n.metrics.NotificationFailed()
		return fmt.Errorf("notify portfolio %s: %w", portfolioID, err)
	}
	if res.IsError() {
		n.metrics.NotificationFailed()
		return fmt.Errorf("notify portfolio %s: http %d", portfolioID, res.StatusCode())
	}
	return nil
}
