// Package entity defines the domain models for the orders feature.
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	catalog "market_backend/internal/feature/catalog/domain/entity"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ErrInvalidStatus is returned by ParseStatus for an unknown value.
var ErrInvalidStatus = errors.New("invalid order status")

// transitions lists the allowed next states. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// ParseStatus converts s to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether next is an allowed successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Order is a placed purchase.
type Order struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	CustomerID  string          `gorm:"size:36;not null;index" json:"customer_id"`
	Status      Status          `gorm:"size:20;not null;default:pending;index" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM.
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product line of an order, priced at purchase time.
type OrderItem struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	OrderID   string           `gorm:"size:36;not null;index" json:"order_id"`
	ProductID string           `gorm:"size:36;not null;index" json:"product_id"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName returns the table name for GORM.
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is unit price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SoldBy reports whether the line's product belongs to sellerID. The product must be loaded.
func (i OrderItem) SoldBy(sellerID string) bool {
	return i.Product != nil && i.Product.SellerID == sellerID
}

// CustomerStat summarises one customer's purchases from a seller.
type CustomerStat struct {
	CustomerID string
	Name       string
	Email      string
	OrderCount int64
	TotalSpent decimal.Decimal
}

// SalesSummary is a seller's order count and revenue, excluding cancelled orders.
type SalesSummary struct {
	OrderCount int64
	Revenue    decimal.Decimal
}
