// Package dto はcartフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"market_backend/internal/feature/cart/domain/entity"
)

// AddItemReq is the body of POST /cart/items. Quantity defaults to 1.
type AddItemReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// Qty returns the requested quantity, defaulting to 1.
func (r AddItemReq) Qty() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// UpdateItemReq is the body of PATCH /cart/items/:id. Zero removes the line.
type UpdateItemReq struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartItemRes is one cart line.
type CartItemRes struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ImageURL    string `json:"image_url,omitempty"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`
}

// CartRes is the cart screen payload. Empty drives the "Continue Shopping" state.
type CartRes struct {
	Items     []CartItemRes `json:"items"`
	Subtotal  string        `json:"subtotal"`
	ItemCount int           `json:"item_count"`
	Empty     bool          `json:"empty"`
}

// NewCartRes converts a domain cart. Amounts have two decimals.
func NewCartRes(c *entity.Cart) CartRes {
	res := CartRes{
		Items:     make([]CartItemRes, 0, len(c.Items)),
		Subtotal:  c.Subtotal().StringFixed(2),
		ItemCount: c.ItemCount(),
		Empty:     c.IsEmpty(),
	}
	for _, it := range c.Items {
		line := CartItemRes{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().StringFixed(2),
		}
		if it.Product != nil {
			line.ProductName = it.Product.Name
			line.UnitPrice = it.Product.Price.StringFixed(2)
			if it.Product.ImageURL != nil {
				line.ImageURL = *it.Product.ImageURL
			}
		}
		res.Items = append(res.Items, line)
	}
	return res
}
