package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("cart line not found")
)
