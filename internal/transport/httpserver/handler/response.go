package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	sessiondomain "pentrypal-go/internal/domain/session"
	shoppingdomain "pentrypal-go/internal/domain/shopping"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps the error taxonomy to HTTP. Unrecognized errors are
// logged by the caller and reported as internal.
func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, shoppingdomain.ErrInvalidInput):
		h.log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, shoppingdomain.ErrListNotFound):
		h.log.BusinessError(op+": list not found", err, args...)
		writeError(w, http.StatusNotFound, "list_not_found", "shopping list not found")
	case errors.Is(err, shoppingdomain.ErrItemNotFound):
		h.log.BusinessError(op+": item not found", err, args...)
		writeError(w, http.StatusNotFound, "item_not_found", "shopping item not found")
	case errors.Is(err, shoppingdomain.ErrCollaboratorNotFound):
		h.log.BusinessError(op+": collaborator not found", err, args...)
		writeError(w, http.StatusNotFound, "collaborator_not_found", "collaborator not found")
	case errors.Is(err, shoppingdomain.ErrPermissionDenied):
		h.log.BusinessError(op+": permission denied", err, args...)
		writeError(w, http.StatusForbidden, "permission_denied", "not allowed for this user")
	case errors.Is(err, shoppingdomain.ErrListArchived):
		h.log.BusinessError(op+": list archived", err, args...)
		writeError(w, http.StatusConflict, "list_archived", "shopping list is archived")
	case errors.Is(err, shoppingdomain.ErrCollaboratorExists):
		h.log.BusinessError(op+": collaborator exists", err, args...)
		writeError(w, http.StatusConflict, "collaborator_exists", "collaborator already on list")
	case errors.Is(err, shoppingdomain.ErrCannotRemoveOwner):
		h.log.BusinessError(op+": cannot remove owner", err, args...)
		writeError(w, http.StatusConflict, "cannot_remove_owner", "cannot remove list owner")
	case errors.Is(err, shoppingdomain.ErrInvalidRole):
		h.log.BusinessError(op+": invalid role", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_role", "invalid collaborator role")
	case errors.Is(err, sessiondomain.ErrNoActiveSession):
		h.log.BusinessError(op+": no active session", err, args...)
		writeError(w, http.StatusConflict, "no_active_session", "no shopping session is active")
	case errors.Is(err, sessiondomain.ErrUpdateInFlight):
		h.log.BusinessError(op+": update in flight", err, args...)
		writeError(w, http.StatusConflict, "update_in_flight", "an update for this item is already in flight")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
