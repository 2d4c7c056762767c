// Package usecase implements the business logic for the orders feature.
package usecase

import "errors"

var (
	// ErrOrderNotFound is returned when no order exists for an id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNotSellerOrder is returned when the seller has no item in the order.
	ErrNotSellerOrder = errors.New("order does not contain your products")

	// ErrInvalidTransition is returned when the status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("status change not allowed")

	// ErrStatusConflict is returned when the order changed status concurrently.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
