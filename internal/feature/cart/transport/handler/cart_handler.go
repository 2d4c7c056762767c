// Package handler はcartフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/auth/transport/guard"
	"market_backend/internal/feature/cart/domain/entity"
	"market_backend/internal/feature/cart/transport/http/dto"
	"market_backend/internal/feature/cart/usecase"
)

// CartUsecase はカート操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CartUsecase interface {
	Get(ctx context.Context, customerID string) (*entity.Cart, error)
	Add(ctx context.Context, customerID, productID string, qty int) (*entity.Cart, error)
	UpdateQuantity(ctx context.Context, customerID, itemID string, qty int) (*entity.Cart, error)
	Remove(ctx context.Context, customerID, itemID string) (*entity.Cart, error)
	Clear(ctx context.Context, customerID string) error
}

// CartHandler はカートのHTTPリクエストを処理します。すべてのルートは顧客ロールで保護されます。
type CartHandler struct {
	uc CartUsecase
}

// NewCartHandler は新しい CartHandler を作成します。
func NewCartHandler(uc CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// Get はカートの内容と小計を返します。
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.uc.Get(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err, "failed to load cart")
		return
	}
	c.JSON(http.StatusOK, dto.NewCartRes(cart))
}

// AddItem は商品をカートに追加します。
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	cart, err := h.uc.Add(c.Request.Context(), customerID(c), req.ProductID, req.Qty())
	if err != nil {
		writeError(c, err, "failed to add to cart")
		return
	}
	c.JSON(http.StatusOK, dto.NewCartRes(cart))
}

// UpdateItem はカート行の数量を変更します。0の場合は行を削除します。
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	cart, err := h.uc.UpdateQuantity(c.Request.Context(), customerID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		writeError(c, err, "failed to update cart")
		return
	}
	c.JSON(http.StatusOK, dto.NewCartRes(cart))
}

// RemoveItem はカート行を削除します。
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.uc.Remove(c.Request.Context(), customerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to remove from cart")
		return
	}
	c.JSON(http.StatusOK, dto.NewCartRes(cart))
}

// Clear はカートを空にします。
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.uc.Clear(c.Request.Context(), customerID(c)); err != nil {
		writeError(c, err, "failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, dto.NewCartRes(&entity.Cart{}))
}

func customerID(c *gin.Context) string {
	return guard.SessionFrom(c).UserID
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrCartItemNotFound), errors.Is(err, usecase.ErrProductNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(fallback, "error", err, "customer_id", customerID(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
