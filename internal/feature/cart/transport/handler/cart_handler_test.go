package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	authentity "market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/transport/guard"
	authusecase "market_backend/internal/feature/auth/usecase"
	"market_backend/internal/feature/cart/domain/entity"
	"market_backend/internal/feature/cart/transport/handler"
	"market_backend/internal/feature/cart/usecase"
	catalogentity "market_backend/internal/feature/catalog/domain/entity"
)

// mockCartUsecase はCartUsecaseインターフェースのモック実装です。
type mockCartUsecase struct {
	GetFunc            func(ctx context.Context, customerID string) (*entity.Cart, error)
	AddFunc            func(ctx context.Context, customerID, productID string, qty int) (*entity.Cart, error)
	UpdateQuantityFunc func(ctx context.Context, customerID, itemID string, qty int) (*entity.Cart, error)
	RemoveFunc         func(ctx context.Context, customerID, itemID string) (*entity.Cart, error)
	ClearFunc          func(ctx context.Context, customerID string) error
}

func (m *mockCartUsecase) Get(ctx context.Context, customerID string) (*entity.Cart, error) {
	return m.GetFunc(ctx, customerID)
}

func (m *mockCartUsecase) Add(ctx context.Context, customerID, productID string, qty int) (*entity.Cart, error) {
	return m.AddFunc(ctx, customerID, productID, qty)
}

func (m *mockCartUsecase) UpdateQuantity(ctx context.Context, customerID, itemID string, qty int) (*entity.Cart, error) {
	return m.UpdateQuantityFunc(ctx, customerID, itemID, qty)
}

func (m *mockCartUsecase) Remove(ctx context.Context, customerID, itemID string) (*entity.Cart, error) {
	return m.RemoveFunc(ctx, customerID, itemID)
}

func (m *mockCartUsecase) Clear(ctx context.Context, customerID string) error {
	return m.ClearFunc(ctx, customerID)
}

type fixedState authusecase.State

func (s fixedState) Restore(context.Context, string) (authusecase.State, error) {
	return authusecase.State(s), nil
}

func stateFor(role authentity.Role) fixedState {
	return fixedState{
		Status: authusecase.StatusSignedIn,
		Session: &authentity.Session{
			ID:      "sid",
			UserID:  "alice",
			Profile: &authentity.Profile{ID: "alice", Name: "Alice", Role: role},
		},
	}
}

func newRouter(uc handler.CartUsecase, state fixedState) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewCartHandler(uc)
	r := gin.New()
	r.Use(guard.LoadSession(state, guard.CookieConfig{Name: "market_session", TTL: time.Hour}))
	g := r.Group("", guard.Require(authentity.RoleCustomer))
	g.GET("/cart", h.Get)
	g.POST("/cart/items", h.AddItem)
	g.PATCH("/cart/items/:id", h.UpdateItem)
	g.DELETE("/cart/items/:id", h.RemoveItem)
	g.DELETE("/cart", h.Clear)
	return r
}

func cartWith(qty int) *entity.Cart {
	return &entity.Cart{CustomerID: "alice", Items: []entity.CartItem{{
		ID:        "item-1",
		ProductID: "P",
		Quantity:  qty,
		Product:   &catalogentity.Product{ID: "P", Name: "Honey", Price: decimal.RequireFromString("12.99")},
	}}}
}

func TestCartHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		cart           *entity.Cart
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: one line",
			cart:           cartWith(3),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"items":[{"id":"item-1","product_id":"P","product_name":"Honey","unit_price":"12.99","quantity":3,"line_total":"38.97"}],"subtotal":"38.97","item_count":3,"empty":false}`,
		},
		{
			name:           "success: empty cart",
			cart:           &entity.Cart{CustomerID: "alice"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"items":[],"subtotal":"0.00","item_count":0,"empty":true}`,
		},
		{
			name:           "failure: load error is surfaced",
			err:            errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"failed to load cart"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockCartUsecase{GetFunc: func(ctx context.Context, customerID string) (*entity.Cart, error) {
				assert.Equal(t, "alice", customerID)
				return tt.cart, tt.err
			}}
			r := newRouter(uc, stateFor(authentity.RoleCustomer))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestCartHandler_BusinessUserIsRedirected(t *testing.T) {
	r := newRouter(&mockCartUsecase{}, stateFor(authentity.RoleArtisan))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard/business", w.Header().Get("Location"))
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedQty    int
		expectedStatus int
	}{
		{"default quantity", `{"product_id":"P"}`, nil, 1, http.StatusOK},
		{"explicit quantity", `{"product_id":"P","quantity":2}`, nil, 2, http.StatusOK},
		{"missing product id", `{"quantity":2}`, nil, 0, http.StatusBadRequest},
		{"invalid quantity", `{"product_id":"P","quantity":0}`, usecase.ErrInvalidQuantity, 0, http.StatusBadRequest},
		{"unknown product", `{"product_id":"X"}`, usecase.ErrProductNotFound, 1, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockCartUsecase{AddFunc: func(ctx context.Context, customerID, productID string, qty int) (*entity.Cart, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				assert.Equal(t, tt.expectedQty, qty)
				return cartWith(qty), nil
			}}
			r := newRouter(uc, stateFor(authentity.RoleCustomer))

			req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCartHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{"zero quantity is accepted", `{"quantity":0}`, nil, http.StatusOK},
		{"missing quantity", `{}`, nil, http.StatusBadRequest},
		{"negative quantity", `{"quantity":-2}`, usecase.ErrInvalidQuantity, http.StatusBadRequest},
		{"foreign line", `{"quantity":2}`, usecase.ErrCartItemNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockCartUsecase{UpdateQuantityFunc: func(ctx context.Context, customerID, itemID string, qty int) (*entity.Cart, error) {
				assert.Equal(t, "item-1", itemID)
				if tt.err != nil {
					return nil, tt.err
				}
				return &entity.Cart{}, nil
			}}
			r := newRouter(uc, stateFor(authentity.RoleCustomer))

			req := httptest.NewRequest(http.MethodPatch, "/cart/items/item-1", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	cleared := false
	uc := &mockCartUsecase{
		RemoveFunc: func(ctx context.Context, customerID, itemID string) (*entity.Cart, error) {
			return &entity.Cart{}, nil
		},
		ClearFunc: func(ctx context.Context, customerID string) error {
			cleared = true
			return nil
		},
	}
	r := newRouter(uc, stateFor(authentity.RoleCustomer))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/items/item-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"empty":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cleared)
}
