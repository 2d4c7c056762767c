// Package entity defines the domain models for the cart feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"

	catalog "market_backend/internal/feature/catalog/domain/entity"
)

// CartItem is one product line in a customer's cart.
// There is at most one line per (customer, product); adding again increments Quantity.
type CartItem struct {
	ID         string           `gorm:"primaryKey;size:36" json:"id"`
	CustomerID string           `gorm:"size:36;not null;uniqueIndex:idx_cart_customer_product" json:"customer_id"`
	ProductID  string           `gorm:"size:36;not null;uniqueIndex:idx_cart_customer_product" json:"product_id"`
	Quantity   int              `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time        `json:"created_at"`
	Product    *catalog.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

// TableName returns the table name for GORM.
func (CartItem) TableName() string {
	return "shopping_cart"
}

// LineTotal is price × quantity, or zero while the product is not loaded.
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a customer's cart lines in insertion order.
type Cart struct {
	CustomerID string
	Items      []CartItem
}

// Subtotal is the sum of all line totals.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// ItemCount is the total quantity across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
