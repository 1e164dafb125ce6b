// Package handler はportfoliosフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/portfolios/domain"
	"portfolio_tracker/internal/feature/portfolios/domain/entity"
	"portfolio_tracker/internal/feature/portfolios/transport/http/dto"
	"portfolio_tracker/internal/feature/portfolios/usecase"
	"portfolio_tracker/internal/platform/http/response"
)

// PortfolioUsecase はポートフォリオ操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PortfolioUsecase interface {
	Create(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error)
	Get(ctx context.Context, id string) (entity.Portfolio, error)
	List(ctx context.Context, limit int) ([]entity.Portfolio, error)
	Update(ctx context.Context, id string, in usecase.UpdateInput) (entity.Portfolio, error)
	Delete(ctx context.Context, id string) error
	ListByCustomer(ctx context.Context, customerID string) ([]entity.Portfolio, error)
	CustomerSummary(ctx context.Context, customerID string) (entity.CustomerSummary, error)
	UpdateValue(ctx context.Context, id string, totalValue decimal.Decimal, investmentCount int) (entity.Portfolio, error)
}

// PortfolioHandler はポートフォリオのHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler はPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// Create はポートフォリオを作成し201を返します。
func (h *PortfolioHandler) Create(c *gin.Context) {
	var req dto.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create portfolio validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.uc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.writeError(c, "create portfolio", err)
		return
	}
	slog.Info("portfolio created", "portfolio_id", p.ID, "customer_id", p.CustomerID)
	c.JSON(http.StatusCreated, dto.NewPortfolioResponse(p))
}

// List はポートフォリオの一覧を返します。
//
// エンドポイント例:
// GET /portfolios?limit=100
func (h *PortfolioHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	ps, err := h.uc.List(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, "list portfolios", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioResponses(ps))
}

// Get は指定IDのポートフォリオを返します。
func (h *PortfolioHandler) Get(c *gin.Context) {
	p, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get portfolio", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioResponse(p))
}

// Update はポートフォリオを部分更新します。
func (h *PortfolioHandler) Update(c *gin.Context) {
	var req dto.UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update portfolio validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.uc.Update(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.writeError(c, "update portfolio", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioResponse(p))
}

// Delete はポートフォリオを削除します。
func (h *PortfolioHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete portfolio", err)
		return
	}
	c.JSON(http.StatusOK, response.MessageResponse{Message: "Portfolio deleted successfully"})
}

// ListByCustomer は顧客のポートフォリオ一覧を返します。
//
// エンドポイント例:
// GET /customers/:id/portfolios
func (h *PortfolioHandler) ListByCustomer(c *gin.Context) {
	ps, err := h.uc.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "list customer portfolios", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioResponses(ps))
}

// CustomerSummary は顧客のポートフォリオ集計を返します。
//
// エンドポイント例:
// GET /customers/:id/portfolios/summary
func (h *PortfolioHandler) CustomerSummary(c *gin.Context) {
	s, err := h.uc.CustomerSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "customer portfolio summary", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerSummaryResponse(s))
}

// UpdateValue は asset-service から通知された評価額を記録します。
// 値はJSONボディ、ボディが空の場合はクエリパラメータから読み取ります。
//
// エンドポイント例:
// PATCH /portfolios/:id/value  {"total_value": "1752.5", "investment_count": 2}
// PATCH /portfolios/:id/value?total_value=1752.5&investment_count=2
func (h *PortfolioHandler) UpdateValue(c *gin.Context) {
	total, count, err := bindValue(c)
	if err != nil {
		slog.Warn("update portfolio value validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.uc.UpdateValue(c.Request.Context(), c.Param("id"), total, count)
	if err != nil {
		h.writeError(c, "update portfolio value", err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdateValueResponse{
		Message:   "Portfolio value updated successfully",
		Portfolio: dto.NewPortfolioResponse(p),
	})
}

func bindValue(c *gin.Context) (decimal.Decimal, int, error) {
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		var req dto.UpdateValueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return decimal.Decimal{}, 0, err
		}
		return *req.TotalValue, *req.InvestmentCount, nil
	}

	total, err := decimal.NewFromString(c.Query("total_value"))
	if err != nil {
		return decimal.Decimal{}, 0, errors.New("total_value must be a number")
	}
	count, err := strconv.Atoi(c.Query("investment_count"))
	if err != nil {
		return decimal.Decimal{}, 0, errors.New("investment_count must be an integer")
	}
	return total, count, nil
}

// writeError はドメインエラーをHTTPステータスに変換します。
func (h *PortfolioHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Portfolio not found"})
	case errors.Is(err, domain.ErrInvalidPortfolio), errors.Is(err, domain.ErrPortfolioExists):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(op+" failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: response.InternalError})
	}
}
