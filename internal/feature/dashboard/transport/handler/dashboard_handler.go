// Package handler はダッシュボードのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	authentity "market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/transport/guard"
	"market_backend/internal/feature/dashboard/domain/entity"
	"market_backend/internal/feature/dashboard/transport/http/dto"
	"market_backend/internal/feature/dashboard/usecase"
)

// DashboardUsecase はダッシュボード組み立てのユースケースインターフェースです。
type DashboardUsecase interface {
	Customer(ctx context.Context, profile *authentity.Profile) (*entity.CustomerDashboard, error)
	Business(ctx context.Context, profile *authentity.Profile) (*entity.BusinessDashboard, error)
}

// DashboardHandler はロール別ダッシュボードを返します。
type DashboardHandler struct {
	uc DashboardUsecase
}

// NewDashboardHandler は新しい DashboardHandler を作成します。
func NewDashboardHandler(uc DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Customer は顧客ダッシュボードを返します。
func (h *DashboardHandler) Customer(c *gin.Context) {
	d, err := h.uc.Customer(c.Request.Context(), guard.SessionFrom(c).Profile)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerDashboardRes(d))
}

// Business は販売者ダッシュボードを返します。
func (h *DashboardHandler) Business(c *gin.Context) {
	d, err := h.uc.Business(c.Request.Context(), guard.SessionFrom(c).Profile)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBusinessDashboardRes(d))
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrProfileRequired) {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "session is still loading"})
		return
	}
	slog.Error("failed to build dashboard", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load dashboard"})
}
