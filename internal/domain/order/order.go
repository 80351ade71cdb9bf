package order

import (
	"time"

	"example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
	"example.com/storefront/internal/domain/shipping"
)

type Status string

const (
	StatusPendingPayment   Status = "pending_payment"
	StatusAwaitingTransfer Status = "awaiting_transfer"
	StatusPaid             Status = "paid"
	StatusProcessing       Status = "processing"
	StatusShipped          Status = "shipped"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
	StatusPaymentFailed    Status = "payment_failed"
)

var transitions = map[Status][]Status{
	StatusPendingPayment:   {StatusPaid, StatusPaymentFailed, StatusCancelled},
	StatusAwaitingTransfer: {StatusPaid, StatusCancelled},
	StatusPaymentFailed:    {StatusPendingPayment, StatusCancelled},
	StatusPaid:             {StatusProcessing, StatusCancelled},
	StatusProcessing:       {StatusShipped, StatusCancelled},
	StatusShipped:          {StatusCompleted},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusAwaitingTransfer, StatusPaid, StatusProcessing,
		StatusShipped, StatusCompleted, StatusCancelled, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentEspees       PaymentMethod = "espees"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentPayPal, PaymentBankTransfer, PaymentEspees:
		return true
	default:
		return false
	}
}

// ConfirmsOutOfBand reports whether the method is finalised by a gateway callback
// rather than by the synchronous checkout submission.
func (p PaymentMethod) ConfirmsOutOfBand() bool {
	return p == PaymentCard
}

// InitialStatus is the status an order starts in for the payment method.
func (p PaymentMethod) InitialStatus() Status {
	if p == PaymentBankTransfer {
		return StatusAwaitingTransfer
	}
	return StatusPendingPayment
}

// AllowedPaymentMethods returns the currency-gated payment set.
func AllowedPaymentMethods(currency string) []PaymentMethod {
	switch money.NormalizeCurrency(currency) {
	case money.USD, money.EUR, money.GBP:
		return []PaymentMethod{PaymentCard, PaymentPayPal, PaymentBankTransfer}
	case money.NGN:
		return []PaymentMethod{PaymentCard, PaymentBankTransfer}
	case money.ESP:
		return []PaymentMethod{PaymentEspees}
	default:
		return []PaymentMethod{PaymentBankTransfer}
	}
}

func PaymentAllowed(currency string, method PaymentMethod) bool {
	for _, m := range AllowedPaymentMethods(currency) {
		if m == method {
			return true
		}
	}
	return false
}

type Address struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

type Customer struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address,omitempty"`
}

// Item is a frozen copy of a priced cart line.
type Item struct {
	ProductID int64       `json:"product_id"`
	Slug      string      `json:"slug"`
	Name      string      `json:"name"`
	Quantity  int64       `json:"quantity"`
	Size      string      `json:"size,omitempty"`
	Color     string      `json:"color,omitempty"`
	UnitPrice money.Money `json:"unit_price"`
	LineTotal money.Money `json:"line_total"`
}

func ItemsFromSnapshot(s cart.Snapshot) []Item {
	items := make([]Item, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Slug:      l.Slug,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return items
}

type Order struct {
	ID             string          `json:"id"`
	Customer       Customer        `json:"customer"`
	Items          []Item          `json:"items"`
	Subtotal       money.Money     `json:"subtotal"`
	ShippingCost   money.Money     `json:"shipping_cost"`
	Total          money.Money     `json:"total"`
	Currency       string          `json:"currency"`
	ShippingMethod shipping.Method `json:"shipping_method"`
	Status         Status          `json:"status"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
