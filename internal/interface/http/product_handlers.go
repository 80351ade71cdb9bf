package http

import (
	"net/http"

	"example.com/storefront/internal/domain/money"
	domproduct "example.com/storefront/internal/domain/product"
)

// requestCurrency prefers ?currency= and then the shop default. Product pages
// are public and never open a session.
func (a *API) requestCurrency(r *http.Request) string {
	if c := money.NormalizeCurrency(r.URL.Query().Get("currency")); c != "" && a.checkoutSvc.SupportsCurrency(c) {
		return c
	}
	return a.checkoutSvc.DefaultCurrency()
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domproduct.ListFilter{
		OnlyActive: true,
		Search:     r.URL.Query().Get("q"),
	}
	currency := a.requestCurrency(r)

	listings, err := a.productSvc.List(r.Context(), filter, currency)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, mapListing(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"currency": currency, "data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	l, err := a.productSvc.GetByID(r.Context(), id, a.requestCurrency(r))
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapListing(l))
}
