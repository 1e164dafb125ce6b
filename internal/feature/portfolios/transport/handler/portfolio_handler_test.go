package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_tracker/internal/feature/portfolios/domain"
	"portfolio_tracker/internal/feature/portfolios/domain/entity"
	"portfolio_tracker/internal/feature/portfolios/transport/handler"
	"portfolio_tracker/internal/feature/portfolios/usecase"
)

// mockPortfolioUsecase はPortfolioUsecaseインターフェースのモック実装です。
type mockPortfolioUsecase struct {
	CreateFunc          func(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error)
	GetFunc             func(ctx context.Context, id string) (entity.Portfolio, error)
	ListFunc            func(ctx context.Context, limit int) ([]entity.Portfolio, error)
	UpdateFunc          func(ctx context.Context, id string, in usecase.UpdateInput) (entity.Portfolio, error)
	DeleteFunc          func(ctx context.Context, id string) error
	ListByCustomerFunc  func(ctx context.Context, customerID string) ([]entity.Portfolio, error)
	CustomerSummaryFunc func(ctx context.Context, customerID string) (entity.CustomerSummary, error)
	UpdateValueFunc     func(ctx context.Context, id string, total decimal.Decimal, count int) (entity.Portfolio, error)
}

func (m *mockPortfolioUsecase) Create(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockPortfolioUsecase) Get(ctx context.Context, id string) (entity.Portfolio, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockPortfolioUsecase) List(ctx context.Context, limit int) ([]entity.Portfolio, error) {
	return m.ListFunc(ctx, limit)
}

func (m *mockPortfolioUsecase) Update(ctx context.Context, id string, in usecase.UpdateInput) (entity.Portfolio, error) {
	return m.UpdateFunc(ctx, id, in)
}

func (m *mockPortfolioUsecase) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockPortfolioUsecase) ListByCustomer(ctx context.Context, customerID string) ([]entity.Portfolio, error) {
	return m.ListByCustomerFunc(ctx, customerID)
}

func (m *mockPortfolioUsecase) CustomerSummary(ctx context.Context, customerID string) (entity.CustomerSummary, error) {
	return m.CustomerSummaryFunc(ctx, customerID)
}

func (m *mockPortfolioUsecase) UpdateValue(ctx context.Context, id string, total decimal.Decimal, count int) (entity.Portfolio, error) {
	return m.UpdateValueFunc(ctx, id, total, count)
}

var fixedTime = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func samplePortfolio() entity.Portfolio {
	return entity.Portfolio{
		ID:         "pf-1",
		CustomerID: "c1",
		Name:       "Retirement",
		Type:       entity.TypeRothIRA,
		TotalValue: decimal.RequireFromString("1752.5"),
		CreatedAt:  fixedTime,
		UpdatedAt:  fixedTime,
	}
}

func setupRouter(uc handler.PortfolioUsecase) *gin.Engine {
	h := handler.NewPortfolioHandler(uc)
	r := gin.New()
	r.POST("/portfolios", h.Create)
	r.GET("/portfolios", h.List)
	r.GET("/portfolios/:id", h.Get)
	r.PUT("/portfolios/:id", h.Update)
	r.DELETE("/portfolios/:id", h.Delete)
	r.PATCH("/portfolios/:id/value", h.UpdateValue)
	r.GET("/customers/:id/portfolios", h.ListByCustomer)
	r.GET("/customers/:id/portfolios/summary", h.CustomerSummary)
	return r
}

func doRequest(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestPortfolioHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		mockCreate     func(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"name":"Retirement","type":"Roth IRA","customer_id":"c1","description":"long term"}`,
			mockCreate: func(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error) {
				assert.Equal(t, entity.TypeRothIRA, in.Type)
				require.NotNil(t, in.Description)
				assert.Equal(t, "long term", *in.Description)
				return samplePortfolio(), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error: missing name",
			body:           `{"type":"IRA","customer_id":"c1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: unknown type",
			body: `{"name":"x","type":"Hedge","customer_id":"c1"}`,
			mockCreate: func(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error) {
				return entity.Portfolio{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidPortfolio, in.Type)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: unexpected",
			body: `{"name":"x","type":"IRA","customer_id":"c1"}`,
			mockCreate: func(ctx context.Context, in usecase.CreateInput) (entity.Portfolio, error) {
				return entity.Portfolio{}, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockPortfolioUsecase{CreateFunc: tt.mockCreate})

			w := doRequest(r, http.MethodPost, "/portfolios", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.JSONEq(t, `{"portfolio_id":"pf-1","customer_id":"c1","name":"Retirement","type":"Roth IRA",
					"description":null,"total_value":"1752.5","investment_count":0,
					"created_at":"2025-01-15T12:00:00Z","updated_at":"2025-01-15T12:00:00Z"}`, w.Body.String())
			}
		})
	}
}

func TestPortfolioHandler_GetAndDelete_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := setupRouter(&mockPortfolioUsecase{
		GetFunc: func(ctx context.Context, id string) (entity.Portfolio, error) {
			return entity.Portfolio{}, domain.ErrPortfolioNotFound
		},
		DeleteFunc: func(ctx context.Context, id string) error { return domain.ErrPortfolioNotFound },
	})

	w := doRequest(r, http.MethodGet, "/portfolios/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Portfolio not found"}`, w.Body.String())

	w = doRequest(r, http.MethodDelete, "/portfolios/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := setupRouter(&mockPortfolioUsecase{DeleteFunc: func(ctx context.Context, id string) error { return nil }})

	w := doRequest(r, http.MethodDelete, "/portfolios/pf-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Portfolio deleted successfully"}`, w.Body.String())
}

func TestPortfolioHandler_ListAndUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := setupRouter(&mockPortfolioUsecase{
		ListFunc: func(ctx context.Context, limit int) ([]entity.Portfolio, error) {
			assert.Equal(t, 10, limit)
			return []entity.Portfolio{samplePortfolio()}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, in usecase.UpdateInput) (entity.Portfolio, error) {
			assert.Nil(t, in.Name)
			require.NotNil(t, in.Type)
			assert.Equal(t, entity.TypeSavings, *in.Type)
			p := samplePortfolio()
			p.Type = *in.Type
			return p, nil
		},
	})

	w := doRequest(r, http.MethodGet, "/portfolios?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = doRequest(r, http.MethodPut, "/portfolios/pf-1", `{"type":"Savings"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Savings", got["type"])

	w = doRequest(r, http.MethodPut, "/portfolios/pf-1", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPortfolioHandler_CustomerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ps := []entity.Portfolio{samplePortfolio()}
	r := setupRouter(&mockPortfolioUsecase{
		ListByCustomerFunc: func(ctx context.Context, customerID string) ([]entity.Portfolio, error) {
			assert.Equal(t, "c1", customerID)
			return nil, nil
		},
		CustomerSummaryFunc: func(ctx context.Context, customerID string) (entity.CustomerSummary, error) {
			return entity.SummarizeCustomer(customerID, ps), nil
		},
	})

	w := doRequest(r, http.MethodGet, "/customers/c1/portfolios", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/customers/c1/portfolios/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"customer_id":"c1","total_portfolios":1,"total_value":"1752.5",
		"portfolios":[{"portfolio_id":"pf-1","name":"Retirement","type":"Roth IRA","total_value":"1752.5",
		"investment_count":0,"created_at":"2025-01-15T12:00:00Z"}]}`, w.Body.String())
}

// TestPortfolioHandler_UpdateValue はJSONボディとクエリパラメータの両方の形式を検証します。
func TestPortfolioHandler_UpdateValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		body           string
		err            error
		expectedStatus int
		expectCall     bool
	}{
		{"success: json body", "/portfolios/pf-1/value", `{"total_value":"1752.5","investment_count":2}`, nil, http.StatusOK, true},
		{"success: numeric json body", "/portfolios/pf-1/value", `{"total_value":1752.5,"investment_count":2}`, nil, http.StatusOK, true},
		{"success: query params", "/portfolios/pf-1/value?total_value=1752.5&investment_count=2", "", nil, http.StatusOK, true},
		{"error: missing count", "/portfolios/pf-1/value", `{"total_value":"1"}`, nil, http.StatusBadRequest, false},
		{"error: bad query", "/portfolios/pf-1/value?total_value=abc&investment_count=2", "", nil, http.StatusBadRequest, false},
		{"error: not found", "/portfolios/pf-1/value", `{"total_value":"1752.5","investment_count":2}`, domain.ErrPortfolioNotFound, http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			r := setupRouter(&mockPortfolioUsecase{
				UpdateValueFunc: func(ctx context.Context, id string, total decimal.Decimal, count int) (entity.Portfolio, error) {
					called = true
					assert.Equal(t, "pf-1", id)
					assert.True(t, total.Equal(decimal.RequireFromString("1752.5")))
					assert.Equal(t, 2, count)
					if tt.err != nil {
						return entity.Portfolio{}, tt.err
					}
					p := samplePortfolio()
					p.InvestmentCount = count
					return p, nil
				},
			})

			w := doRequest(r, http.MethodPatch, tt.url, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCall, called)
			if tt.expectedStatus == http.StatusOK {
				var got map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "Portfolio value updated successfully", got["message"])
				portfolio := got["portfolio"].(map[string]any)
				assert.Equal(t, float64(2), portfolio["investment_count"])
			}
		})
	}
}
