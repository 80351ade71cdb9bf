package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart = errors.New("cart is empty")

	// ErrValidation matches every *ValidationError.
	ErrValidation          = errors.New("checkout validation failed")
	ErrStaleForm           = errors.New("stale checkout form")
	ErrInvalidField        = errors.New("invalid checkout field")
	ErrPaymentNotAllowed   = errors.New("payment method not allowed")
	ErrGatewayRequired     = errors.New("payment method requires gateway checkout")
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrPricing matches every *PricingError.
	ErrPricing = errors.New("checkout pricing failed")
)

type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindStaleForm   ErrorKind = "stale_form"
	KindPayment     ErrorKind = "payment_method"
	KindPricing     ErrorKind = "pricing"
	KindEmptyCart   ErrorKind = "empty_cart"
	KindBusy        ErrorKind = "busy"
	KindUnavailable ErrorKind = "unavailable"
)

// ValidationError is user-correctable; Message is safe to show verbatim.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(kind ErrorKind, field, message string, cause error) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message, cause: cause}
}

// PricingError reports a cart line the catalog cannot price.
type PricingError struct {
	Line      int
	ProductID int64
	Err       error
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("cart line %d (product %d) cannot be priced: %v", e.Line, e.ProductID, e.Err)
}

func (e *PricingError) Unwrap() error {
	return e.Err
}

func (e *PricingError) Is(target error) bool {
	return target == ErrPricing
}
