package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domorder "example.com/storefront/internal/domain/order"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// handleReadCollection dumps a whole ledger collection for reporting tools.
func (a *API) handleReadCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	records, err := a.ledger.ReadAll(r.Context(), name)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"collection": name,
		"count":      len(records),
		"data":       records,
	})
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orderSvc.List(r.Context())
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := a.orderSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	status := domorder.Status(req.Status)
	order, err := a.orderSvc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}
