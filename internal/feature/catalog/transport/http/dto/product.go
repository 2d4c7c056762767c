// Package dto はcatalogフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"market_backend/internal/feature/catalog/domain/entity"
	"market_backend/internal/feature/catalog/usecase"
)

// ProductRes は商品のレスポンスDTOです。価格は小数点以下2桁の文字列です。
type ProductRes struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	Description   string    `json:"description"`
	ImageURL      *string   `json:"image_url,omitempty"`
	SellerID      string    `json:"seller_id"`
	SellerName    string    `json:"seller_name"`
	StockQuantity int       `json:"stock_quantity"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProductRes はドメインの商品をレスポンスに変換します。
func NewProductRes(p *entity.Product) ProductRes {
	return ProductRes{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		SellerID:      p.SellerID,
		SellerName:    p.SellerName,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		CreatedAt:     p.CreatedAt,
	}
}

// NewProductList converts a listing, never returning nil.
func NewProductList(products []entity.Product) []ProductRes {
	out := make([]ProductRes, 0, len(products))
	for i := range products {
		out = append(out, NewProductRes(&products[i]))
	}
	return out
}

// ListQuery is the query string of GET /products.
type ListQuery struct {
	Category string `form:"category"`
	SellerID string `form:"seller"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
}

// CreateProductReq is the body of POST /products/new, sent as multipart form
// (with an optional "image" file) or JSON.
type CreateProductReq struct {
	Name          string `form:"name" json:"name" binding:"required"`
	Price         string `form:"price" json:"price" binding:"required"`
	Description   string `form:"description" json:"description"`
	Category      string `form:"category" json:"category"`
	StockQuantity int    `form:"stock_quantity" json:"stock_quantity" binding:"min=0"`
}

// ToNewProduct converts the request; the image is attached by the handler.
func (r CreateProductReq) ToNewProduct() usecase.NewProduct {
	return usecase.NewProduct{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Stock:       r.StockQuantity,
	}
}

// UpdateProductReq is the body of PATCH /product/:id. Omitted fields are left unchanged.
type UpdateProductReq struct {
	Name          *string `json:"name"`
	Price         *string `json:"price"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	StockQuantity *int    `json:"stock_quantity"`
}

// ToPatch converts the request to a usecase patch.
func (r UpdateProductReq) ToPatch() usecase.ProductPatch {
	return usecase.ProductPatch{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Stock:       r.StockQuantity,
	}
}
