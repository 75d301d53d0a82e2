package domain

import "errors"

var (
	// ErrInvalidQuantity is returned when a mutation is called with quantity < 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrLineNotFound is returned by SetQuantity for a product that has no line.
	ErrLineNotFound = errors.New("cart line not found")

	ErrEmptyProductID  = errors.New("product id is empty")
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownUser     = errors.New("unknown user code")

	// ErrCorruptCart marks a persisted slot that could not be decoded into a valid cart.
	ErrCorruptCart = errors.New("persisted cart is corrupt")
)
