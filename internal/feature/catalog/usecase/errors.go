// Package usecase implements the business logic for the catalog feature.
package usecase

import "errors"

var (
	// ErrProductNotFound is returned when no product exists for an id.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotOwner is returned when a seller tries to change another seller's product.
	ErrNotOwner = errors.New("product belongs to another seller")

	// ErrProductInUse is returned when order lines still reference the product.
	ErrProductInUse = errors.New("product is referenced by existing orders")

	// ErrInvalidPrice is returned when a price is not a non-negative amount with at most two decimals.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidStock is returned for a negative stock quantity.
	ErrInvalidStock = errors.New("stock quantity must not be negative")

	// ErrInvalidProduct is returned when required product fields are missing.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrUnsupportedImage is returned when an uploaded file is not an image.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageUpload is returned when the image could not be stored.
	ErrImageUpload = errors.New("failed to upload image")
)
