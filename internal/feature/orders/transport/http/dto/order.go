// Package dto はordersフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"market_backend/internal/feature/orders/domain/entity"
)

// OrderItemRes is one order line. Amounts have two decimals.
type OrderItemRes struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// OrderRes is an order with its lines.
type OrderRes struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customer_id"`
	Status      string         `json:"status"`
	TotalAmount string         `json:"total_amount"`
	CreatedAt   time.Time      `json:"created_at"`
	Items       []OrderItemRes `json:"items"`
}

// NewOrderRes converts a domain order.
func NewOrderRes(o *entity.Order) OrderRes {
	res := OrderRes{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		CreatedAt:   o.CreatedAt,
		Items:       make([]OrderItemRes, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		line := OrderItemRes{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			LineTotal: it.LineTotal().StringFixed(2),
		}
		if it.Product != nil {
			line.ProductName = it.Product.Name
		}
		res.Items = append(res.Items, line)
	}
	return res
}

// NewOrderList converts a list of orders, never returning nil.
func NewOrderList(orders []entity.Order) []OrderRes {
	out := make([]OrderRes, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderRes(&orders[i]))
	}
	return out
}

// UpdateStatusReq is the body of PATCH /orders/manage/:id.
type UpdateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// CustomerRes is one row of the seller's customer list.
type CustomerRes struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	OrderCount int64  `json:"order_count"`
	TotalSpent string `json:"total_spent"`
}

// NewCustomerList converts customer statistics.
func NewCustomerList(stats []entity.CustomerStat) []CustomerRes {
	out := make([]CustomerRes, 0, len(stats))
	for _, s := range stats {
		out = append(out, CustomerRes{
			CustomerID: s.CustomerID,
			Name:       s.Name,
			Email:      s.Email,
			OrderCount: s.OrderCount,
			TotalSpent: s.TotalSpent.StringFixed(2),
		})
	}
	return out
}
