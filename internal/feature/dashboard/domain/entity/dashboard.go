// Package entity はダッシュボード画面のペイロードを定義します。
package entity

import (
	"github.com/shopspring/decimal"

	authentity "market_backend/internal/feature/auth/domain/entity"
	catalog "market_backend/internal/feature/catalog/domain/entity"
	orders "market_backend/internal/feature/orders/domain/entity"
)

// RecentLimit is how many orders or products a dashboard shows.
const RecentLimit = 5

// CustomerDashboard is the landing page of a customer.
type CustomerDashboard struct {
	Profile       *authentity.Profile
	CartItemCount int
	CartSubtotal  decimal.Decimal
	RecentOrders  []orders.Order
}

// BusinessDashboard is the landing page of an artisan or farmer.
type BusinessDashboard struct {
	Profile        *authentity.Profile
	ProductCount   int64
	LatestProducts []catalog.Product
	OrderCount     int64
	Revenue        decimal.Decimal
}
