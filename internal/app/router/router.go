// Package router builds the gin engines served by each service.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	customerhandler "portfolio_tracker/internal/feature/customers/transport/handler"
	investmenthandler "portfolio_tracker/internal/feature/investments/transport/handler"
	portfoliohandler "portfolio_tracker/internal/feature/portfolios/transport/handler"
	pricehandler "portfolio_tracker/internal/feature/prices/transport/handler"
	"portfolio_tracker/internal/platform/http/handler"
	"portfolio_tracker/internal/platform/metrics"
)

// newEngine returns an engine with the routes every service exposes.
func newEngine(info handler.ServiceInfo, m *metrics.Metrics, g prometheus.Gatherer) *gin.Engine {
	r := gin.Default()

	// ブラウザのフロントエンドから直接呼ばれるため全オリジンを許可
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"*"}
	r.Use(cors.New(corsCfg))
	r.Use(m.Middleware(info.Name))

	// 導通確認用
	health := handler.Health(info)
	r.GET("/", handler.Root(info))
	for _, path := range []string{"/health", "/healthz"} {
		r.GET(path, health)
		r.HEAD(path, health)
		r.OPTIONS(path, health)
	}
	if g != nil {
		r.GET("/metrics", metrics.Handler(g))
	}
	return r
}

// NewCustomerRouter builds the customer-service engine.
func NewCustomerRouter(info handler.ServiceInfo, m *metrics.Metrics, g prometheus.Gatherer,
	customers *customerhandler.CustomerHandler) *gin.Engine {
	r := newEngine(info, m, g)

	r.POST("/customers", customers.Create)
	r.GET("/customers", customers.List)
	r.GET("/customers/:id", customers.Get)
	r.PUT("/customers/:id", customers.Update)
	r.DELETE("/customers/:id", customers.Delete)
	r.GET("/customers/email/:email", customers.GetByEmail)

	return r
}

// NewPortfolioRouter builds the portfolio-service engine.
func NewPortfolioRouter(info handler.ServiceInfo, m *metrics.Metrics, g prometheus.Gatherer,
	portfolios *portfoliohandler.PortfolioHandler) *gin.Engine {
	r := newEngine(info, m, g)

	r.POST("/portfolios", portfolios.Create)
	r.GET("/portfolios", portfolios.List)
	r.GET("/portfolios/:id", portfolios.Get)
	r.PUT("/portfolios/:id", portfolios.Update)
	r.DELETE("/portfolios/:id", portfolios.Delete)
	// asset-service からの評価額通知
	r.PATCH("/portfolios/:id/value", portfolios.UpdateValue)

	r.GET("/customers/:id/portfolios", portfolios.ListByCustomer)
	r.GET("/customers/:id/portfolios/summary", portfolios.CustomerSummary)

	return r
}

// NewAssetRouter builds the asset-service engine.
func NewAssetRouter(info handler.ServiceInfo, m *metrics.Metrics, g prometheus.Gatherer,
	prices *pricehandler.PriceHandler, investments *investmenthandler.InvestmentHandler) *gin.Engine {
	r := newEngine(info, m, g)

	r.POST("/investments", investments.Create)
	r.GET("/investments", investments.List)
	r.POST("/investments/update-prices", investments.UpdatePrices)
	r.GET("/investments/:id", investments.Get)
	r.PUT("/investments/:id", investments.Update)
	r.DELETE("/investments/:id", investments.Delete)

	r.GET("/portfolios/:id/investments", investments.ListByPortfolio)
	r.GET("/portfolios/:id/investments/summary", investments.Summary)
	r.POST("/portfolios/:id/sync-values", investments.SyncValues)

	r.GET("/assets/:ticker/price", prices.GetPrice)
	r.POST("/assets/prices", prices.GetPrices)
	r.DELETE("/cache/prices", prices.ClearCache)

	return r
}
