package handler

import (
	"net/http"

	sessiondomain "pentrypal-go/internal/domain/session"
	"pentrypal-go/internal/transport/httpserver/middleware"
)

type selectListRequest struct {
	ListID string `json:"list_id"`
}

type toggleItemRequest struct {
	ItemID string `json:"item_id"`
}

type confirmAmountRequest struct {
	ItemID string `json:"item_id"`
	Amount string `json:"amount"`
}

type finishRequest struct {
	Force bool `json:"force"`
}

type sessionResponse struct {
	Active           bool          `json:"active"`
	List             *listResponse `json:"list,omitempty"`
	CompletedItemIDs []string      `json:"completed_item_ids,omitempty"`
	ExpandedItemID   string        `json:"expanded_item_id,omitempty"`
	PendingAmount    string        `json:"pending_amount,omitempty"`
	Progress         int           `json:"progress"`
	TotalSpent       float64       `json:"total_spent"`
}

type toggleResponse struct {
	Expanded        bool          `json:"expanded"`
	ItemID          string        `json:"item_id"`
	SuggestedAmount string        `json:"suggested_amount,omitempty"`
	Item            *itemResponse `json:"item,omitempty"`
}

type finishResponse struct {
	NeedsConfirmation bool     `json:"needs_confirmation"`
	RemainingItems    []string `json:"remaining_items,omitempty"`
	CompletedCount    int      `json:"completed_count,omitempty"`
	ItemsCount        int      `json:"items_count,omitempty"`
	TotalSpent        float64  `json:"total_spent,omitempty"`
}

type archiveResponse struct {
	List        listResponse   `json:"list"`
	ActiveLists []listResponse `json:"active_lists"`
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(h.Sessions.State(user.ID)))
}

func (h *Handlers) SelectList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req selectListRequest
	if err := decodeJSON(r, &req); err != nil || req.ListID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "list_id is required")
		return
	}

	if _, err := h.Sessions.SelectList(r.Context(), user.ID, req.ListID); err != nil {
		h.writeDomainError(w, "session.select", err, "user_id", user.ID, "list_id", req.ListID)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(h.Sessions.State(user.ID)))
}

func (h *Handlers) DeselectList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	h.Sessions.Deselect(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ToggleItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req toggleItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item_id is required")
		return
	}

	result, err := h.Sessions.ToggleItem(r.Context(), user.ID, req.ItemID)
	if err != nil {
		h.writeDomainError(w, "session.toggle", err, "user_id", user.ID, "item_id", req.ItemID)
		return
	}

	response := toggleResponse{
		Expanded:        result.Expanded,
		ItemID:          result.ItemID,
		SuggestedAmount: result.SuggestedAmount,
	}
	if result.Item != nil {
		item := toItemResponse(*result.Item)
		response.Item = &item
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ConfirmAmount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req confirmAmountRequest
	if err := decodeJSON(r, &req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item_id is required")
		return
	}

	item, err := h.Sessions.ConfirmAmount(r.Context(), user.ID, req.ItemID, req.Amount)
	if err != nil {
		h.writeDomainError(w, "session.amount", err, "user_id", user.ID, "item_id", req.ItemID)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *Handlers) CancelAmount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	h.Sessions.CancelAmount(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RequestFinish(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req finishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	result, err := h.Sessions.RequestFinish(user.ID, req.Force)
	if err != nil {
		h.writeDomainError(w, "session.finish", err, "user_id", user.ID)
		return
	}

	response := finishResponse{
		NeedsConfirmation: result.NeedsConfirmation,
		RemainingItems:    result.RemainingItems,
	}
	if result.Prompt != nil {
		response.CompletedCount = result.Prompt.CompletedCount
		response.ItemsCount = result.Prompt.ItemsCount
		response.TotalSpent = result.Prompt.TotalSpent
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ConfirmArchive(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	outcome, err := h.Sessions.ConfirmArchive(r.Context(), user.ID)
	if err != nil {
		h.writeDomainError(w, "session.archive", err, "user_id", user.ID)
		return
	}

	active := make([]listResponse, 0, len(outcome.ActiveLists))
	for _, list := range outcome.ActiveLists {
		active = append(active, toListResponse(&list))
	}
	writeJSON(w, http.StatusOK, archiveResponse{
		List:        toListResponse(outcome.List),
		ActiveLists: active,
	})
}

func toSessionResponse(state sessiondomain.State) sessionResponse {
	response := sessionResponse{
		Active:           state.Active,
		CompletedItemIDs: state.CompletedItemIDs,
		ExpandedItemID:   state.ExpandedItemID,
		PendingAmount:    state.PendingAmount,
		Progress:         state.Totals.Progress,
		TotalSpent:       state.Totals.TotalSpent,
	}
	if state.List != nil {
		list := toListResponse(state.List)
		response.List = &list
	}
	return response
}
