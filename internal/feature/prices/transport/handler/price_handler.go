// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_tracker/internal/feature/prices/domain"
	"portfolio_tracker/internal/feature/prices/domain/entity"
	"portfolio_tracker/internal/feature/prices/transport/http/dto"
	"portfolio_tracker/internal/platform/http/response"
)

// PriceUsecase は価格取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PriceUsecase interface {
	GetPrice(ctx context.Context, ticker string, useCache bool) (entity.PriceQuote, error)
	GetPrices(ctx context.Context, tickers []string, useCache bool) ([]entity.PriceQuote, error)
	ClearCache(ctx context.Context) bool
}

// PriceHandler は価格関連のHTTPリクエストを処理します。
type PriceHandler struct {
	uc PriceUsecase
}

// NewPriceHandler はPriceHandlerの新しいインスタンスを生成します。
func NewPriceHandler(uc PriceUsecase) *PriceHandler {
	return &PriceHandler{uc: uc}
}

// GetPrice は単一銘柄の現在値を返します。
//
// エンドポイント例:
// GET /assets/:ticker/price?use_cache=true
func (h *PriceHandler) GetPrice(c *gin.Context) {
	useCache, ok := useCacheParam(c)
	if !ok {
		return
	}

	q, err := h.uc.GetPrice(c.Request.Context(), c.Param("ticker"), useCache)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NewPriceResponse(q))
	case errors.Is(err, domain.ErrInvalidTicker):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrPriceNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Price not found for " + entity.NormalizeTicker(c.Param("ticker"))})
	default:
		slog.Error("get price failed", "ticker", c.Param("ticker"), "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: response.InternalError})
	}
}

// GetPrices は複数銘柄の現在値を返します。解決できない銘柄は結果に含まれません。
//
// エンドポイント例:
// POST /assets/prices?use_cache=false  {"ticker_symbols": ["AAPL", "MSFT"]}
func (h *PriceHandler) GetPrices(c *gin.Context) {
	useCache, ok := useCacheParam(c)
	if !ok {
		return
	}

	var req dto.PricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("prices request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	qs, err := h.uc.GetPrices(c.Request.Context(), req.TickerSymbols, useCache)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTicker) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("get prices failed", "tickers", len(req.TickerSymbols), "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: response.InternalError})
		return
	}
	c.JSON(http.StatusOK, dto.NewPriceResponses(qs))
}

// ClearCache はキャッシュ済みの価格をすべて削除します。
//
// エンドポイント例:
// DELETE /cache/prices
func (h *PriceHandler) ClearCache(c *gin.Context) {
	if !h.uc.ClearCache(c.Request.Context()) {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to clear price cache"})
		return
	}
	c.JSON(http.StatusOK, response.MessageResponse{Message: "Price cache cleared successfully"})
}

// useCacheParam は use_cache クエリを解釈します（未指定は true）。不正値の場合は400を返し false を返します。
func useCacheParam(c *gin.Context) (bool, bool) {
	raw := c.DefaultQuery("use_cache", "true")
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "use_cache must be a boolean"})
		return false, false
	}
	return v, true
}
