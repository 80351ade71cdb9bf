package http

import (
	"errors"
	"log/slog"
	"net/http"

	"example.com/storefront/internal/domain/record"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
)

const (
	msgTryAgain  = "We could not complete your request right now. Please try again shortly."
	msgBusy      = "The shop is busy. Please try again in a moment."
	msgBadForm   = "The checkout form could not be read."
	msgEmptyCart = "Your cart is empty."
)

type quoteRequest struct {
	ShippingMethod string `json:"shipping_method" validate:"max=32"`
}

type checkoutFailure struct {
	Success   bool   `json:"success"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
}

func (a *API) handleQuote(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	var req quoteRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondCheckoutFailure(w, http.StatusBadRequest, checkoutuc.KindValidation, msgBadForm, "")
		return
	}

	q, err := a.checkoutSvc.Quote(r.Context(), sess, req.ShippingMethod)
	if err != nil {
		a.handleCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shipping_method":    q.Method,
		"subtotal":           q.Subtotal.Amount,
		"shipping":           q.Shipping.Amount,
		"total":              q.Total.Amount,
		"subtotal_formatted": q.Subtotal.Format(),
		"shipping_formatted": q.Shipping.Format(),
		"total_formatted":    q.Total.Format(),
		"requires_address":   q.RequiresAddress,
	})
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	var req checkoutuc.Request
	if err := decodeStrict(r, &req); err != nil {
		respondCheckoutFailure(w, http.StatusBadRequest, checkoutuc.KindValidation, msgBadForm, "")
		return
	}

	res, err := a.checkoutSvc.Submit(r.Context(), sess, req)
	if err != nil {
		a.handleCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"order_id": res.OrderID,
	})
}

func (a *API) handleCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkoutuc.ValidationError
	var perr *checkoutuc.PricingError
	switch {
	case errors.Is(err, checkoutuc.ErrEmptyCart):
		w.Header().Set("Location", "/cart")
		respondCheckoutFailure(w, http.StatusSeeOther, checkoutuc.KindEmptyCart, msgEmptyCart, "")
	case errors.As(err, &verr):
		status := http.StatusUnprocessableEntity
		if verr.Kind == checkoutuc.KindStaleForm {
			status = http.StatusConflict
		}
		respondCheckoutFailure(w, status, verr.Kind, verr.Message, verr.Field)
	case errors.As(err, &perr):
		respondCheckoutFailure(w, http.StatusUnprocessableEntity, checkoutuc.KindPricing,
			"An item in your cart cannot be sold in the selected currency. Please remove it and try again.", "")
	case errors.Is(err, record.ErrBusy):
		w.Header().Set("Retry-After", "1")
		respondCheckoutFailure(w, http.StatusServiceUnavailable, checkoutuc.KindBusy, msgBusy, "")
	default:
		a.logger.Error("checkout failed", slog.Any("error", err))
		respondCheckoutFailure(w, http.StatusServiceUnavailable, checkoutuc.KindUnavailable, msgTryAgain, "")
	}
}

func respondCheckoutFailure(w http.ResponseWriter, status int, kind checkoutuc.ErrorKind, message, field string) {
	writeJSON(w, status, checkoutFailure{
		Success:   false,
		ErrorKind: string(kind),
		Message:   message,
		Field:     field,
	})
}
