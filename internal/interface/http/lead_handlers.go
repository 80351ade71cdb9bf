package http

import (
	"errors"
	"log/slog"
	"net/http"

	"example.com/storefront/internal/domain/record"
	leaduc "example.com/storefront/internal/usecase/lead"
)

func (a *API) handleContact(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	var req leaduc.ContactRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	id, err := a.leadSvc.SubmitContact(r.Context(), sess, req)
	if err != nil {
		a.handleLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (a *API) handleDistributorApplication(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, errNoSession)
		return
	}

	var req leaduc.DistributorRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	id, err := a.leadSvc.SubmitDistributorApplication(r.Context(), sess, req)
	if err != nil {
		a.handleLeadError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (a *API) handleLeadError(w http.ResponseWriter, err error) {
	var ferr *leaduc.FieldError
	switch {
	case errors.Is(err, leaduc.ErrStaleForm):
		writeJSON(w, http.StatusConflict, map[string]any{
			"success":    false,
			"error_kind": "stale_form",
			"message":    "This form has expired or was already submitted. Please reload the page and try again.",
		})
	case errors.As(err, &ferr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success":    false,
			"error_kind": "validation",
			"message":    "Please check the highlighted field.",
			"field":      ferr.Field,
		})
	case errors.Is(err, leaduc.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success":    false,
			"error_kind": "validation",
			"message":    "The form could not be validated.",
		})
	case errors.Is(err, record.ErrBusy):
		respondUnavailable(w, true)
	default:
		a.logger.Error("lead submission failed", slog.Any("error", err))
		respondUnavailable(w, false)
	}
}
