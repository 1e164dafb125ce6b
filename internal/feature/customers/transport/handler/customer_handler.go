// Package handler はcustomersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_tracker/internal/feature/customers/domain"
	"portfolio_tracker/internal/feature/customers/domain/entity"
	"portfolio_tracker/internal/feature/customers/transport/http/dto"
	"portfolio_tracker/internal/feature/customers/usecase"
	"portfolio_tracker/internal/platform/http/response"
)

// CustomerUsecase は顧客操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CustomerUsecase interface {
	Create(ctx context.Context, in usecase.CreateInput) (entity.Customer, error)
	Get(ctx context.Context, id string) (entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (entity.Customer, error)
	List(ctx context.Context, limit int) ([]entity.Customer, error)
	Update(ctx context.Context, id string, in usecase.UpdateInput) (entity.Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerHandler は顧客のHTTPリクエストを処理します。
type CustomerHandler struct {
	uc CustomerUsecase
}

// NewCustomerHandler はCustomerHandlerの新しいインスタンスを生成します。
func NewCustomerHandler(uc CustomerUsecase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create は顧客を登録します。
// - バリデーションエラー時は400を返却
// - メールアドレス重複時は400を返却
// - 成功時は201を返却
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create customer validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	cust, err := h.uc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.writeError(c, "create customer", err)
		return
	}
	slog.Info("customer created", "customer_id", cust.ID)
	c.JSON(http.StatusCreated, dto.NewCustomerResponse(cust))
}

// List は顧客の一覧を返します。
//
// エンドポイント例:
// GET /customers?limit=100
func (h *CustomerHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	cs, err := h.uc.List(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, "list customers", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponses(cs))
}

// Get は指定IDの顧客を返します。
func (h *CustomerHandler) Get(c *gin.Context) {
	cust, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get customer", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(cust))
}

// GetByEmail はメールアドレスで顧客を検索します。
//
// エンドポイント例:
// GET /customers/email/:email
func (h *CustomerHandler) GetByEmail(c *gin.Context) {
	cust, err := h.uc.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.writeError(c, "get customer by email", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(cust))
}

// Update は顧客を部分更新します。
func (h *CustomerHandler) Update(c *gin.Context) {
	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update customer validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	cust, err := h.uc.Update(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		h.writeError(c, "update customer", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(cust))
}

// Delete は顧客を削除します。
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete customer", err)
		return
	}
	c.JSON(http.StatusOK, response.MessageResponse{Message: "Customer deleted successfully"})
}

// writeError はドメインエラーをHTTPステータスに変換します。
func (h *CustomerHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "Customer not found"})
	case errors.Is(err, domain.ErrEmailExists):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Customer with this email already exists"})
	case errors.Is(err, domain.ErrInvalidCustomer):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(op+" failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: response.InternalError})
	}
}
