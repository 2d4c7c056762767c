// Package dto はダッシュボードのレスポンス型を定義します。
package dto

import (
	authdto "market_backend/internal/feature/auth/transport/http/dto"
	catalogdto "market_backend/internal/feature/catalog/transport/http/dto"
	"market_backend/internal/feature/dashboard/domain/entity"
	orderdto "market_backend/internal/feature/orders/transport/http/dto"
)

// CartSummaryRes is the cart widget on the customer dashboard.
type CartSummaryRes struct {
	ItemCount int    `json:"item_count"`
	Subtotal  string `json:"subtotal"`
}

// CustomerDashboardRes is the payload of GET /dashboard/customer.
type CustomerDashboardRes struct {
	Profile      *authdto.ProfileRes `json:"profile"`
	Cart         CartSummaryRes      `json:"cart"`
	RecentOrders []orderdto.OrderRes `json:"recent_orders"`
}

// NewCustomerDashboardRes converts a customer dashboard.
func NewCustomerDashboardRes(d *entity.CustomerDashboard) CustomerDashboardRes {
	return CustomerDashboardRes{
		Profile: authdto.NewProfileRes(d.Profile),
		Cart: CartSummaryRes{
			ItemCount: d.CartItemCount,
			Subtotal:  d.CartSubtotal.StringFixed(2),
		},
		RecentOrders: orderdto.NewOrderList(d.RecentOrders),
	}
}

// SalesRes is the sales widget on the business dashboard.
type SalesRes struct {
	OrderCount int64  `json:"order_count"`
	Revenue    string `json:"revenue"`
}

// BusinessDashboardRes is the payload of GET /dashboard/business.
type BusinessDashboardRes struct {
	Profile        *authdto.ProfileRes     `json:"profile"`
	ProductCount   int64                   `json:"product_count"`
	LatestProducts []catalogdto.ProductRes `json:"latest_products"`
	Sales          SalesRes                `json:"sales"`
}

// NewBusinessDashboardRes converts a business dashboard.
func NewBusinessDashboardRes(d *entity.BusinessDashboard) BusinessDashboardRes {
	return BusinessDashboardRes{
		Profile:        authdto.NewProfileRes(d.Profile),
		ProductCount:   d.ProductCount,
		LatestProducts: catalogdto.NewProductList(d.LatestProducts),
		Sales: SalesRes{
			OrderCount: d.OrderCount,
			Revenue:    d.Revenue.StringFixed(2),
		},
	}
}
