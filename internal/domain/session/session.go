package session

import (
	"time"

	"example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/shipping"
)

// Context is the per-visitor state every core operation receives explicitly.
// It is loaded at request start and saved at request end.
type Context struct {
	ID               string          `json:"id"`
	Cart             cart.Cart       `json:"cart"`
	Currency         string          `json:"currency"`
	ShippingMethod   shipping.Method `json:"shipping_method,omitempty"`
	IdempotencyToken string          `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (c *Context) Clone() *Context {
	out := *c
	out.Cart = c.Cart.Clone()
	return &out
}
