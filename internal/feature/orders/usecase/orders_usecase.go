package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"market_backend/internal/feature/orders/domain/entity"
)

// OrderRepository abstracts the persistence layer for orders.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type OrderRepository interface {
	// ListByCustomer returns the customer's orders newest first with items and products loaded.
	// limit <= 0 means no limit.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]entity.Order, error)
	// ListBySeller returns orders containing at least one of the seller's products, newest first.
	ListBySeller(ctx context.Context, sellerID string) ([]entity.Order, error)
	// FindByID returns one order with items and products loaded.
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	// UpdateStatus sets the status only if it is still from.
	UpdateStatus(ctx context.Context, id string, from, to entity.Status) error
	// CustomerStatsForSeller aggregates purchases of the seller's products per customer.
	CustomerStatsForSeller(ctx context.Context, sellerID string) ([]entity.CustomerStat, error)
	// SalesSummary aggregates the seller's order count and revenue.
	SalesSummary(ctx context.Context, sellerID string) (entity.SalesSummary, error)
}

// OrdersUsecase provides business logic for order operations.
type OrdersUsecase struct {
	repo OrderRepository
}

// NewOrdersUsecase creates a new OrdersUsecase.
func NewOrdersUsecase(repo OrderRepository) *OrdersUsecase {
	return &OrdersUsecase{repo: repo}
}

// ListForCustomer returns all of the customer's orders, newest first.
func (u *OrdersUsecase) ListForCustomer(ctx context.Context, customerID string) ([]entity.Order, error) {
	return u.repo.ListByCustomer(ctx, customerID, 0)
}

// RecentForCustomer returns the customer's n most recent orders.
func (u *OrdersUsecase) RecentForCustomer(ctx context.Context, customerID string, n int) ([]entity.Order, error) {
	if n <= 0 {
		return nil, nil
	}
	return u.repo.ListByCustomer(ctx, customerID, n)
}

// ListForSeller returns the orders containing the seller's products.
// Lines of other sellers are left out.
func (u *OrdersUsecase) ListForSeller(ctx context.Context, sellerID string) ([]entity.Order, error) {
	orders, err := u.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = sellerItems(orders[i].Items, sellerID)
	}
	return orders, nil
}

// UpdateStatus moves an order to status if the seller has an item in it and
// the transition table allows it.
func (u *OrdersUsecase) UpdateStatus(ctx context.Context, sellerID, orderID, status string) (*entity.Order, error) {
	next, err := entity.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := u.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(sellerItems(order.Items, sellerID)) == 0 {
		return nil, ErrNotSellerOrder
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	if err := u.repo.UpdateStatus(ctx, orderID, order.Status, next); err != nil {
		return nil, err
	}
	slog.Info("order status updated", "order_id", orderID, "seller_id", sellerID, "from", order.Status, "to", next)
	order.Status = next
	return order, nil
}

// CustomersForSeller returns the customers who bought the seller's products.
func (u *OrdersUsecase) CustomersForSeller(ctx context.Context, sellerID string) ([]entity.CustomerStat, error) {
	stats, err := u.repo.CustomerStatsForSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].TotalSpent = stats[i].TotalSpent.Round(2)
	}
	return stats, nil
}

// SalesSummary returns the seller's order count and revenue.
func (u *OrdersUsecase) SalesSummary(ctx context.Context, sellerID string) (entity.SalesSummary, error) {
	s, err := u.repo.SalesSummary(ctx, sellerID)
	if err != nil {
		return entity.SalesSummary{}, err
	}
	s.Revenue = s.Revenue.Round(2)
	return s, nil
}

func sellerItems(items []entity.OrderItem, sellerID string) []entity.OrderItem {
	out := make([]entity.OrderItem, 0, len(items))
	for _, it := range items {
		if it.SoldBy(sellerID) {
			out = append(out, it)
		}
	}
	return out
}
