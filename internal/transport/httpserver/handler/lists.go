package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	shoppingdomain "pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/transport/httpserver/middleware"
)

type createListRequest struct {
	Name string `json:"name"`
}

type createItemRequest struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
	AssignedTo *string `json:"assigned_to"`
}

type editItemRequest struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	Price      *float64 `json:"price"`
	AssignedTo *string  `json:"assigned_to"`
}

type updateItemCompletionRequest struct {
	Completed   bool     `json:"completed"`
	ActualPrice *float64 `json:"actual_price"`
}

type addCollaboratorRequest struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Phone  *string `json:"phone"`
	Role   string  `json:"role"`
}

type collaboratorResponse struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Phone  *string `json:"phone"`
	Role   string  `json:"role"`
}

type itemResponse struct {
	ID              string     `json:"id"`
	ListID          string     `json:"list_id"`
	Name            string     `json:"name"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`
	Price           float64    `json:"price"`
	Completed       bool       `json:"completed"`
	AssignedTo      *string    `json:"assigned_to"`
	PurchasedAmount *float64   `json:"purchased_amount"`
	Position        int        `json:"position"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

type listResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	OwnerID        string                 `json:"owner_id"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	ArchivedAt     *time.Time             `json:"archived_at"`
	ItemsCount     int                    `json:"items_count"`
	CompletedCount int                    `json:"completed_count"`
	Progress       int                    `json:"progress"`
	TotalSpent     float64                `json:"total_spent"`
	Items          []itemResponse         `json:"items"`
	Collaborators  []collaboratorResponse `json:"collaborators"`
}

type listCollectionResponse struct {
	Items []listResponse `json:"items"`
	Total int64          `json:"total"`
}

func (h *Handlers) ListLists(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	status, err := parseStatusParam(query.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid status")
		return
	}
	limit, err := parseIntParam(query.Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	lists, total, err := h.Lists.FetchLists(r.Context(), user.ID, shoppingdomain.ListFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.writeDomainError(w, "lists.list", err, "user_id", user.ID)
		return
	}

	items := make([]listResponse, 0, len(lists))
	for _, list := range lists {
		items = append(items, toListResponse(&list))
	}
	writeJSON(w, http.StatusOK, listCollectionResponse{Items: items, Total: total})
}

func (h *Handlers) CreateList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	list, err := h.Lists.CreateList(r.Context(), shoppingdomain.CreateListInput{
		Name:       req.Name,
		OwnerID:    user.ID,
		OwnerName:  user.Name,
		OwnerEmail: user.Email,
	})
	if err != nil {
		h.writeDomainError(w, "lists.create", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toListResponse(list))
}

func (h *Handlers) GetList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	listID := chi.URLParam(r, "list_id")
	list, err := h.Lists.FetchList(r.Context(), listID)
	if err != nil {
		h.writeDomainError(w, "lists.get", err, "user_id", user.ID, "list_id", listID)
		return
	}
	if !list.CanView(user.ID) {
		h.writeDomainError(w, "lists.get", shoppingdomain.ErrPermissionDenied, "user_id", user.ID, "list_id", listID)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(list))
}

func (h *Handlers) ArchiveList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	listID := chi.URLParam(r, "list_id")
	list, err := h.Lists.ArchiveList(r.Context(), listID, user.ID)
	if err != nil {
		h.writeDomainError(w, "lists.archive", err, "user_id", user.ID, "list_id", listID)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(list))
}

func (h *Handlers) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	listID := chi.URLParam(r, "list_id")
	item, err := h.Lists.CreateItem(r.Context(), shoppingdomain.CreateItemInput{
		ListID:     listID,
		Actor:      user.ID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Price:      req.Price,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		h.writeDomainError(w, "items.create", err, "user_id", user.ID, "list_id", listID)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(*item))
}

func (h *Handlers) EditItem(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req editItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	listID := chi.URLParam(r, "list_id")
	itemID := chi.URLParam(r, "item_id")
	item, err := h.Lists.EditItem(r.Context(), shoppingdomain.EditItemInput{
		ListID:     listID,
		ItemID:     itemID,
		Actor:      user.ID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Price:      req.Price,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		h.writeDomainError(w, "items.edit", err, "user_id", user.ID, "list_id", listID, "item_id", itemID)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

// UpdateItemCompletion is the raw updateItem contract used by clients that
// drive their own shopping UI instead of the server-held session.
func (h *Handlers) UpdateItemCompletion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateItemCompletionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	listID := chi.URLParam(r, "list_id")
	itemID := chi.URLParam(r, "item_id")
	item, err := h.Lists.UpdateItem(r.Context(), shoppingdomain.UpdateItemInput{
		ListID:      listID,
		ItemID:      itemID,
		Actor:       user.ID,
		Completed:   req.Completed,
		ActualPrice: req.ActualPrice,
	})
	if err != nil {
		h.writeDomainError(w, "items.completion", err, "user_id", user.ID, "list_id", listID, "item_id", itemID)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *Handlers) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req addCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	listID := chi.URLParam(r, "list_id")
	collaborator, err := h.Lists.AddCollaborator(r.Context(), shoppingdomain.AddCollaboratorInput{
		ListID: listID,
		Actor:  user.ID,
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   req.Role,
	})
	if err != nil {
		h.writeDomainError(w, "collaborators.add", err, "user_id", user.ID, "list_id", listID)
		return
	}

	writeJSON(w, http.StatusCreated, toCollaboratorResponse(*collaborator))
}

func (h *Handlers) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	listID := chi.URLParam(r, "list_id")
	userID := chi.URLParam(r, "user_id")
	if err := h.Lists.RemoveCollaborator(r.Context(), listID, user.ID, userID); err != nil {
		h.writeDomainError(w, "collaborators.remove", err, "user_id", user.ID, "list_id", listID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toListResponse(list *shoppingdomain.ShoppingList) listResponse {
	totals := shoppingdomain.Totals(list.Items)

	items := make([]itemResponse, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, toItemResponse(item))
	}
	collaborators := make([]collaboratorResponse, 0, len(list.Collaborators))
	for _, c := range list.Collaborators {
		collaborators = append(collaborators, toCollaboratorResponse(c))
	}

	return listResponse{
		ID:             list.ID,
		Name:           list.Name,
		OwnerID:        list.OwnerID,
		Status:         list.Status,
		CreatedAt:      list.CreatedAt,
		ArchivedAt:     list.ArchivedAt,
		ItemsCount:     totals.ItemsCount,
		CompletedCount: totals.CompletedCount,
		Progress:       totals.Progress,
		TotalSpent:     totals.TotalSpent,
		Items:          items,
		Collaborators:  collaborators,
	}
}

func toItemResponse(item shoppingdomain.ShoppingItem) itemResponse {
	return itemResponse{
		ID:              item.ID,
		ListID:          item.ListID,
		Name:            item.Name,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		Price:           item.Price,
		Completed:       item.Completed,
		AssignedTo:      item.AssignedTo,
		PurchasedAmount: item.PurchasedAmount,
		Position:        item.Position,
		CreatedAt:       item.CreatedAt,
		CompletedAt:     item.CompletedAt,
	}
}

func toCollaboratorResponse(c shoppingdomain.Collaborator) collaboratorResponse {
	return collaboratorResponse{
		ID:     c.ID,
		UserID: c.UserID,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Role:   c.Role,
	}
}
