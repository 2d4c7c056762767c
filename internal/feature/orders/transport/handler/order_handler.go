// Package handler はordersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/auth/transport/guard"
	"market_backend/internal/feature/orders/domain/entity"
	"market_backend/internal/feature/orders/transport/http/dto"
	"market_backend/internal/feature/orders/usecase"
)

// OrdersUsecase は注文操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type OrdersUsecase interface {
	ListForCustomer(ctx context.Context, customerID string) ([]entity.Order, error)
	ListForSeller(ctx context.Context, sellerID string) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, sellerID, orderID, status string) (*entity.Order, error)
	CustomersForSeller(ctx context.Context, sellerID string) ([]entity.CustomerStat, error)
}

// OrderHandler は注文のHTTPリクエストを処理します。
type OrderHandler struct {
	uc OrdersUsecase
}

// NewOrderHandler は新しい OrderHandler を作成します。
func NewOrderHandler(uc OrdersUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// ListMine は顧客自身の注文履歴を返します。
func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.uc.ListForCustomer(c.Request.Context(), guard.SessionFrom(c).UserID)
	if err != nil {
		writeError(c, err, "failed to load orders")
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderList(orders))
}

// ListManaged は販売者の商品を含む注文を返します。
func (h *OrderHandler) ListManaged(c *gin.Context) {
	orders, err := h.uc.ListForSeller(c.Request.Context(), guard.SessionFrom(c).UserID)
	if err != nil {
		writeError(c, err, "failed to load orders")
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderList(orders))
}

// UpdateStatus は注文のステータスを変更します。
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	order, err := h.uc.UpdateStatus(c.Request.Context(), guard.SessionFrom(c).UserID, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err, "failed to update order")
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderRes(order))
}

// Customers は販売者の商品を購入した顧客の一覧を返します。
func (h *OrderHandler) Customers(c *gin.Context) {
	stats, err := h.uc.CustomersForSeller(c.Request.Context(), guard.SessionFrom(c).UserID)
	if err != nil {
		writeError(c, err, "failed to load customers")
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerList(stats))
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, entity.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotSellerOrder):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidTransition), errors.Is(err, usecase.ErrStatusConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
