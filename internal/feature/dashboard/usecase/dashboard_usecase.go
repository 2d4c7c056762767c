package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	authentity "market_backend/internal/feature/auth/domain/entity"
	cartentity "market_backend/internal/feature/cart/domain/entity"
	catalogentity "market_backend/internal/feature/catalog/domain/entity"
	catalogusecase "market_backend/internal/feature/catalog/usecase"
	"market_backend/internal/feature/dashboard/domain/entity"
	orderentity "market_backend/internal/feature/orders/domain/entity"
)

// CartReader reads a customer's cart. The cart usecase implements it.
type CartReader interface {
	Get(ctx context.Context, customerID string) (*cartentity.Cart, error)
}

// OrderReader reads order history and sales figures. The orders usecase implements it.
type OrderReader interface {
	RecentForCustomer(ctx context.Context, customerID string, n int) ([]orderentity.Order, error)
	SalesSummary(ctx context.Context, sellerID string) (orderentity.SalesSummary, error)
}

// ProductReader reads a seller's listings. The catalog usecase implements it.
type ProductReader interface {
	List(ctx context.Context, filter catalogusecase.ListFilter) ([]catalogentity.Product, error)
	CountForSeller(ctx context.Context, sellerID string) (int64, error)
}

// DashboardUsecase assembles dashboard payloads. Sections are fetched concurrently
// and the first failure cancels the rest.
type DashboardUsecase struct {
	carts    CartReader
	orders   OrderReader
	products ProductReader
}

// NewDashboardUsecase creates a new DashboardUsecase.
func NewDashboardUsecase(carts CartReader, orders OrderReader, products ProductReader) *DashboardUsecase {
	return &DashboardUsecase{carts: carts, orders: orders, products: products}
}

// Customer builds the customer dashboard for profile.
func (u *DashboardUsecase) Customer(ctx context.Context, profile *authentity.Profile) (*entity.CustomerDashboard, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}
	d := &entity.CustomerDashboard{Profile: profile}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cart, err := u.carts.Get(ctx, profile.ID)
		if err != nil {
			return fmt.Errorf("cart: %w", err)
		}
		d.CartItemCount = cart.ItemCount()
		d.CartSubtotal = cart.Subtotal()
		return nil
	})
	g.Go(func() error {
		orders, err := u.orders.RecentForCustomer(ctx, profile.ID, entity.RecentLimit)
		if err != nil {
			return fmt.Errorf("recent orders: %w", err)
		}
		d.RecentOrders = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSectionUnavailable, err)
	}
	return d, nil
}

// Business builds the seller dashboard for profile.
func (u *DashboardUsecase) Business(ctx context.Context, profile *authentity.Profile) (*entity.BusinessDashboard, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}
	d := &entity.BusinessDashboard{Profile: profile}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := u.products.CountForSeller(ctx, profile.ID)
		if err != nil {
			return fmt.Errorf("product count: %w", err)
		}
		d.ProductCount = n
		return nil
	})
	g.Go(func() error {
		products, err := u.products.List(ctx, catalogusecase.ListFilter{SellerID: profile.ID, Limit: entity.RecentLimit})
		if err != nil {
			return fmt.Errorf("latest products: %w", err)
		}
		d.LatestProducts = products
		return nil
	})
	g.Go(func() error {
		s, err := u.orders.SalesSummary(ctx, profile.ID)
		if err != nil {
			return fmt.Errorf("sales summary: %w", err)
		}
		d.OrderCount = s.OrderCount
		d.Revenue = s.Revenue
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSectionUnavailable, err)
	}
	return d, nil
}
