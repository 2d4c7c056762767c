// Package handler はcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	"market_backend/internal/feature/auth/transport/guard"
	"market_backend/internal/feature/catalog/domain/entity"
	"market_backend/internal/feature/catalog/transport/http/dto"
	"market_backend/internal/feature/catalog/usecase"
)

// maxUploadBytes は受け付けるアップロードの上限です。超過分はusecaseで拒否されます。
const maxUploadBytes = 8 << 20

// CatalogUsecase は商品操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CatalogUsecase interface {
	List(ctx context.Context, filter usecase.ListFilter) ([]entity.Product, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	Create(ctx context.Context, seller usecase.Seller, in usecase.NewProduct) (*entity.Product, error)
	Update(ctx context.Context, sellerID, id string, patch usecase.ProductPatch) (*entity.Product, error)
	Delete(ctx context.Context, sellerID, id string) error
	ListBuckets(ctx context.Context, accessToken string) ([]entity.Bucket, error)
}

// ProductHandler は商品のHTTPリクエストを処理します。
type ProductHandler struct {
	uc CatalogUsecase
}

// NewProductHandler は新しい ProductHandler を作成します。
func NewProductHandler(uc CatalogUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List は商品一覧を新しい順に返します。
//
// エンドポイント例:
// GET /products?category=pottery&limit=20
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	products, err := h.uc.List(c.Request.Context(), usecase.ListFilter{Category: q.Category, SellerID: q.SellerID, Limit: q.Limit})
	if err != nil {
		slog.Error("failed to list products", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load products"})
		return
	}
	c.JSON(http.StatusOK, dto.NewProductList(products))
}

// Get は商品詳細を返します。
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load product")
		return
	}
	c.JSON(http.StatusOK, dto.NewProductRes(p))
}

// Create は販売者の新しい商品を登録します。multipartの場合は"image"ファイルを受け付けます。
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	in := req.ToNewProduct()
	if fh, err := c.FormFile("image"); err == nil {
		img, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to read image"})
			return
		}
		in.Image = &usecase.Upload{Filename: fh.Filename, Data: img}
	}

	sess := guard.SessionFrom(c)
	seller := usecase.Seller{ID: sess.UserID, AccessToken: sess.AccessToken}
	if sess.Profile != nil {
		seller.Name = sess.Profile.Name
	}

	p, err := h.uc.Create(c.Request.Context(), seller, in)
	if err != nil {
		writeError(c, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductRes(p))
}

// Update は販売者自身の商品を部分更新します。
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.uc.Update(c.Request.Context(), guard.SessionFrom(c).UserID, c.Param("id"), req.ToPatch())
	if err != nil {
		writeError(c, err, "failed to update product")
		return
	}
	c.JSON(http.StatusOK, dto.NewProductRes(p))
}

// Delete は販売者自身の商品を削除します。
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), guard.SessionFrom(c).UserID, c.Param("id")); err != nil {
		writeError(c, err, "failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBuckets はストレージのバケット一覧を返します（診断用）。
func (h *ProductHandler) ListBuckets(c *gin.Context) {
	buckets, err := h.uc.ListBuckets(c.Request.Context(), guard.SessionFrom(c).AccessToken)
	if err != nil {
		slog.Error("failed to list buckets", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to list buckets"})
		return
	}
	c.JSON(http.StatusOK, buckets)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}

// writeError maps catalog errors to HTTP status codes.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: usecase.ErrProductNotFound.Error()})
	case errors.Is(err, usecase.ErrNotOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: usecase.ErrNotOwner.Error()})
	case errors.Is(err, usecase.ErrProductInUse):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: usecase.ErrProductInUse.Error()})
	case errors.Is(err, usecase.ErrInvalidPrice), errors.Is(err, usecase.ErrInvalidStock),
		errors.Is(err, usecase.ErrInvalidProduct), errors.Is(err, usecase.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrImageUpload):
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: usecase.ErrImageUpload.Error()})
	default:
		slog.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
