// Package entity defines the domain models for the catalog feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImageBucket is the storage bucket product images are uploaded to.
const ImageBucket = "product-images"

// Product is an item listed by an artisan or farmer.
// Only the seller who created it may change or delete it.
type Product struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Description   string          `gorm:"type:text" json:"description"`
	ImageURL      *string         `gorm:"size:1024" json:"image_url,omitempty"`
	SellerID      string          `gorm:"size:36;not null;index" json:"seller_id"`
	SellerName    string          `gorm:"size:255" json:"seller_name"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	Category      string          `gorm:"size:100;index" json:"category"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Product) TableName() string {
	return "products"
}

// IsOwnedBy reports whether sellerID listed the product.
func (p *Product) IsOwnedBy(sellerID string) bool {
	return sellerID != "" && p.SellerID == sellerID
}

// Bucket is a storage bucket as reported by the object store.
type Bucket struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}
