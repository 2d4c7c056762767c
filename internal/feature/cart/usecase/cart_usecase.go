package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"market_backend/internal/feature/cart/domain/entity"
	catalogentity "market_backend/internal/feature/catalog/domain/entity"
	catalogusecase "market_backend/internal/feature/catalog/usecase"
)

// CartRepository abstracts the persistence layer for cart lines.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CartRepository interface {
	// ListByCustomer returns the customer's lines, oldest first, with Product loaded.
	ListByCustomer(ctx context.Context, customerID string) ([]entity.CartItem, error)
	// AddOrIncrement inserts a line or adds qty to the existing line for the product.
	AddOrIncrement(ctx context.Context, customerID, productID string, qty int) error
	// SetQuantity sets the quantity of one of the customer's lines.
	SetQuantity(ctx context.Context, customerID, itemID string, qty int) error
	// Delete removes one of the customer's lines.
	Delete(ctx context.Context, customerID, itemID string) error
	// Clear removes every line of the customer.
	Clear(ctx context.Context, customerID string) error
}

// ProductFinder looks up products. The catalog usecase implements it.
type ProductFinder interface {
	Get(ctx context.Context, id string) (*catalogentity.Product, error)
}

// CartUsecase provides business logic for cart operations.
type CartUsecase struct {
	repo     CartRepository
	products ProductFinder
}

// NewCartUsecase creates a new CartUsecase.
func NewCartUsecase(repo CartRepository, products ProductFinder) *CartUsecase {
	return &CartUsecase{repo: repo, products: products}
}

// Get returns the customer's cart.
func (u *CartUsecase) Get(ctx context.Context, customerID string) (*entity.Cart, error) {
	items, err := u.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &entity.Cart{CustomerID: customerID, Items: items}, nil
}

// Add puts qty units of a product in the cart, incrementing an existing line.
func (u *CartUsecase) Add(ctx context.Context, customerID, productID string, qty int) (*entity.Cart, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: must be at least 1", ErrInvalidQuantity)
	}
	if _, err := u.products.Get(ctx, productID); err != nil {
		if errors.Is(err, catalogusecase.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := u.repo.AddOrIncrement(ctx, customerID, productID, qty); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	slog.Info("added to cart", "customer_id", customerID, "product_id", productID, "quantity", qty)
	return u.Get(ctx, customerID)
}

// UpdateQuantity sets a line's quantity. Zero removes the line; negative values are rejected.
func (u *CartUsecase) UpdateQuantity(ctx context.Context, customerID, itemID string, qty int) (*entity.Cart, error) {
	switch {
	case qty < 0:
		return nil, fmt.Errorf("%w: must not be negative", ErrInvalidQuantity)
	case qty == 0:
		return u.Remove(ctx, customerID, itemID)
	}
	if err := u.repo.SetQuantity(ctx, customerID, itemID, qty); err != nil {
		return nil, err
	}
	return u.Get(ctx, customerID)
}

// Remove deletes one line from the cart.
func (u *CartUsecase) Remove(ctx context.Context, customerID, itemID string) (*entity.Cart, error) {
	if err := u.repo.Delete(ctx, customerID, itemID); err != nil {
		return nil, err
	}
	return u.Get(ctx, customerID)
}

// Clear empties the cart.
func (u *CartUsecase) Clear(ctx context.Context, customerID string) error {
	return u.repo.Clear(ctx, customerID)
}
