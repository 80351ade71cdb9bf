package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domcart "example.com/storefront/internal/domain/cart"
	"example.com/storefront/internal/domain/money"
)

type addCartItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0,lte=1000"`
	Size      string `json:"size" validate:"max=50"`
	Color     string `json:"color" validate:"max=50"`
}

type setCurrencyRequest struct {
	Currency string `json:"currency" validate:"required,max=8"`
}

// handleGetSession hands out the live submission token for the visitor's forms.
func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	token := a.guard.Issue(sess)
	writeJSON(w, http.StatusOK, map[string]any{
		"idempotency_token": token,
		"currency":          a.checkoutSvc.SessionCurrency(sess),
		"currencies":        a.checkoutSvc.Currencies(),
		"shipping_method":   sess.ShippingMethod,
		"cart_lines":        len(sess.Cart.Lines),
	})
}

func (a *API) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	var req setCurrencyRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if !a.checkoutSvc.SupportsCurrency(req.Currency) {
		respondError(w, http.StatusUnprocessableEntity, fmt.Errorf("currency %s is not supported", money.NormalizeCurrency(req.Currency)))
		return
	}

	sess.Currency = money.NormalizeCurrency(req.Currency)
	writeJSON(w, http.StatusOK, map[string]string{"currency": sess.Currency})
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	line := domcart.Line{ProductID: req.ProductID, Quantity: req.Quantity, Size: req.Size, Color: req.Color}
	if err := a.cartSvc.AddToCart(r.Context(), &sess.Cart, line); err != nil {
		a.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"status": "added", "cart_lines": len(sess.Cart.Lines)})
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid line index"))
		return
	}
	if err := a.cartSvc.RemoveLine(&sess.Cart, index); err != nil {
		a.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "removed", "cart_lines": len(sess.Cart.Lines)})
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	snap, err := a.cartSvc.Snapshot(r.Context(), sess.Cart, a.checkoutSvc.SessionCurrency(sess))
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSnapshot(snap))
}
