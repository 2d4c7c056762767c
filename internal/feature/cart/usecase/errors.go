// Package usecase implements the business logic for the cart feature.
package usecase

import "errors"

var (
	// ErrInvalidQuantity is returned for a quantity below what the operation allows.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrCartItemNotFound is returned when the line does not exist in the caller's cart.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrProductNotFound is returned when adding a product that does not exist.
	ErrProductNotFound = errors.New("product not found")
)
