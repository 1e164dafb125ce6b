package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	customeradapters "portfolio_tracker/internal/feature/customers/adapters"
	customerhandler "portfolio_tracker/internal/feature/customers/transport/handler"
	customerusecase "portfolio_tracker/internal/feature/customers/usecase"
	investmentadapters "portfolio_tracker/internal/feature/investments/adapters"
	investmenthandler "portfolio_tracker/internal/feature/investments/transport/handler"
	investmentusecase "portfolio_tracker/internal/feature/investments/usecase"
	portfolioadapters "portfolio_tracker/internal/feature/portfolios/adapters"
	portfoliohandler "portfolio_tracker/internal/feature/portfolios/transport/handler"
	portfoliousecase "portfolio_tracker/internal/feature/portfolios/usecase"
	pricehandler "portfolio_tracker/internal/feature/prices/transport/handler"
	priceusecase "portfolio_tracker/internal/feature/prices/usecase"
	platformhttp "portfolio_tracker/internal/platform/http"
	"portfolio_tracker/internal/platform/metrics"
	"portfolio_tracker/internal/shared/background"
)

// NewCustomerHandler wires the customer feature on db.
func NewCustomerHandler(db *gorm.DB) *customerhandler.CustomerHandler {
	repo := customeradapters.NewCustomerRepository(db)
	return customerhandler.NewCustomerHandler(customerusecase.NewCustomerUsecase(repo))
}

// NewPortfolioHandler wires the portfolio feature on db.
func NewPortfolioHandler(db *gorm.DB) *portfoliohandler.PortfolioHandler {
	repo := portfolioadapters.NewPortfolioRepository(db)
	return portfoliohandler.NewPortfolioHandler(portfoliousecase.NewPortfolioUsecase(repo))
}

// AssetService bundles the components served by asset-service.
type AssetService struct {
	Prices      *pricehandler.PriceHandler
	Investments *investmenthandler.InvestmentHandler
	Reprice     *investmentusecase.RepriceUsecase
}

// NewAssetService wires the price and investment features.
// rdb may be nil, in which case the in-process cache and a local rate limiter are used.
func NewAssetService(cfg Config, db *gorm.DB, rdb *redis.Client, runner *background.Runner, m *metrics.Metrics) *AssetService {
	priceCache := NewPriceCache(rdb, cfg.PriceCacheTTL, m)
	priceSource := NewPriceSource(rdb, m)

	repo := investmentadapters.NewInvestmentRepository(db)
	notifier := investmentadapters.NewPortfolioNotifier(
		platformhttp.NewServiceClient(cfg.PortfolioServiceURL, cfg.NotifyTimeout), m)

	prices := priceusecase.NewPriceUsecase(priceCache, priceSource, cfg.PriceCacheTTL)
	investments := investmentusecase.NewInvestmentUsecase(repo, notifier)
	reprice := investmentusecase.NewRepriceUsecase(repo, priceSource, priceCache, notifier, runner, m, cfg.PriceCacheTTL)

	return &AssetService{
		Prices:      pricehandler.NewPriceHandler(prices),
		Investments: investmenthandler.NewInvestmentHandler(investments, reprice),
		Reprice:     reprice,
	}
}

// HeldTickers lists the distinct tickers currently held across all portfolios.
func HeldTickers(ctx context.Context, db *gorm.DB) ([]string, error) {
	return investmentadapters.NewInvestmentRepository(db).UniqueTickers(ctx)
}
