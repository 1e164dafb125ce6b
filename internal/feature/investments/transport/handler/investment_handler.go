// Package handler はinvestmentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_tracker/internal/feature/investments/domain"
	"portfolio_tracker/internal/feature/investments/domain/entity"
	"portfolio_tracker/internal/feature/investments/transport/http/dto"
	"portfolio_tracker/internal/feature/investments/usecase"
	"portfolio_tracker/internal/platform/http/response"
)

// InvestmentUsecase は保有銘柄の操作を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type InvestmentUsecase interface {
	Create(ctx context.Context, in usecase.CreateInput) (entity.Investment, error)
	Get(ctx context.Context, id string) (entity.Investment, error)
	List(ctx context.Context, limit int) ([]entity.Investment, error)
	Update(ctx context.Context, id string, in usecase.UpdateInput) (entity.Investment, error)
	Delete(ctx context.Context, id string) error
	ListByPortfolio(ctx context.Context, portfolioID string) ([]entity.Investment, error)
	PortfolioSummary(ctx context.Context, portfolioID string) (entity.PortfolioSummary, error)
	SyncPortfolioValue(ctx context.Context, portfolioID string) (entity.PortfolioSummary, error)
}

// RepriceUsecase は保有銘柄の価格更新を定義します。
type RepriceUsecase interface {
	Reprice(ctx context.Context, tickers []string) (usecase.RepriceResult, error)
}

// InvestmentHandler は保有銘柄と価格更新のHTTPリクエストを処理します。
type InvestmentHandler struct {
	investments InvestmentUsecase
	reprice     RepriceUsecase
}

// NewInvestmentHandler はInvestmentHandlerの新しいインスタンスを生成します。
func NewInvestmentHandler(investments InvestmentUsecase, reprice RepriceUsecase) *InvestmentHandler {
	return &InvestmentHandler{investments: investments, reprice: reprice}
}

// Create は保有銘柄を登録します。
// - バリデーションエラー・ID重複時は400を返却
// - 成功時は201を返却
func (h *InvestmentHandler) Create(c *gin.Context) {
	var req dto.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create investment validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	in, err := req.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "purchase_date must be YYYY-MM-DD"})
		return
	}

	inv, err := h.investments.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "create investment", err)
		return
	}
	slog.Info("investment created", "investment_id", inv.ID, "portfolio_id", inv.PortfolioID, "ticker", inv.TickerSymbol)
	c.JSON(http.StatusCreated, dto.NewInvestmentResponse(inv))
}

// List は保有銘柄の一覧を返します。
//
// エンドポイント例:
// GET /investments?limit=100
func (h *InvestmentHandler) List(c *gin.Context) {
	// 不正な値は0となり、usecase側でデフォルト値に変換される
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	invs, err := h.investments.List(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, "list investments", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvestmentResponses(invs))
}

// Get は指定IDの保有銘柄を返します。
func (h *InvestmentHandler) Get(c *gin.Context) {
	inv, err := h.investments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get investment", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvestmentResponse(inv))
}

// Update は保有銘柄を部分更新します。
func (h *InvestmentHandler) Update(c *gin.Context) {
	var req dto.UpdateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update investment validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	in, err := req.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "purchase_date must be YYYY-MM-DD"})
		return
	}

	inv, err := h.investments.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, "update investment", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvestmentResponse(inv))
}

// Delete は保有銘柄を削除します。
func (h *InvestmentHandler) Delete(c *gin.Context) {
	if err := h.investments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete investment", err)
		return
	}
	c.JSON(http.StatusOK, response.MessageResponse{Message: "Investment deleted successfully"})
}

// ListByPortfolio はポートフォリオ内の保有銘柄を返します。
//
// エンドポイント例:
// GET /portfolios/:id/investments
func (h *InvestmentHandler) ListByPortfolio(c *gin.Context) {
	invs, err := h.investments.ListByPortfolio(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "list portfolio investments", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvestmentResponses(invs))
}

// Summary はポートフォリオの評価額集計を返します。
//
// エンドポイント例:
// GET /portfolios/:id/investments/summary
func (h *InvestmentHandler) Summary(c *gin.Context) {
	s, err := h.investments.PortfolioSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "portfolio summary", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioSummaryResponse(s))
}

// SyncValues はポートフォリオの評価額を再計算し、portfolio-service に通知します。
//
// エンドポイント例:
// POST /portfolios/:id/sync-values
func (h *InvestmentHandler) SyncValues(c *gin.Context) {
	pid := c.Param("id")
	s, err := h.investments.SyncPortfolioValue(c.Request.Context(), pid)
	if err != nil {
		h.writeError(c, "sync portfolio values", err)
		return
	}
	c.JSON(http.StatusOK, dto.SyncValuesResponse{
		Message:         "Portfolio values synced successfully",
		PortfolioID:     pid,
		TotalValue:      s.TotalValue,
		InvestmentCount: s.TotalInvestments,
	})
}

// UpdatePrices は指定銘柄（省略時は保有中の全銘柄）の価格を取得し、保有銘柄の評価額を更新します。
// 10銘柄を超える場合はバックグラウンドで実行し、即座に応答します。
//
// エンドポイント例:
// POST /investments/update-prices  {"ticker_symbols": ["AAPL"]}
func (h *InvestmentHandler) UpdatePrices(c *gin.Context) {
	var req dto.UpdatePricesRequest
	// ボディは省略可能
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			slog.Warn("update prices validation failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
			return
		}
	}

	res, err := h.reprice.Reprice(c.Request.Context(), req.TickerSymbols)
	if err != nil {
		h.writeError(c, "update prices", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRepriceResponse(res))
}

// writeError はドメインエラーをHTTPステータスに変換します。想定外のエラーの詳細はログにのみ出力します。
func (h *InvestmentHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvestmentNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Investment not found"})
	case errors.Is(err, domain.ErrInvalidInvestment), errors.Is(err, domain.ErrInvestmentExists):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(op+" failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: response.InternalError})
	}
}
