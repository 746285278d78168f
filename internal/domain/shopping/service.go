package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	events   Publisher
	lists    *listsCache
	cacheTTL time.Duration
}

func NewService(repo Repository, events Publisher) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	return &Service{
		repo:     repo,
		events:   events,
		lists:    newListsCache(),
		cacheTTL: defaultListsCacheTTL,
	}
}

func (s *Service) FetchLists(ctx context.Context, userID string, filter ListFilter) ([]ShoppingList, int64, error) {
	now := time.Now()
	key := listsCacheKey(filter)
	if lists, total, ok := s.lists.Get(userID, key, now); ok {
		return lists, total, nil
	}

	lists, total, err := s.repo.ListLists(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	s.lists.Set(userID, key, lists, total, now.Add(s.cacheTTL))
	return lists, total, nil
}

func (s *Service) FetchList(ctx context.Context, listID string) (*ShoppingList, error) {
	return s.repo.GetListByID(ctx, listID)
}

func (s *Service) CreateList(ctx context.Context, input CreateListInput) (*ShoppingList, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	list := ShoppingList{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: input.OwnerID,
		Status:  StatusActive,
	}
	owner := Collaborator{
		ID:     uuid.NewString(),
		ListID: list.ID,
		UserID: input.OwnerID,
		Name:   strings.TrimSpace(input.OwnerName),
		Email:  strings.TrimSpace(input.OwnerEmail),
		Role:   RoleOwner,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateList(ctx, &list); err != nil {
			return err
		}
		return tx.AddCollaborator(ctx, &owner)
	})
	if err != nil {
		return nil, err
	}

	list.Collaborators = []Collaborator{owner}
	list.Items = []ShoppingItem{}
	s.invalidateListUsers(&list)
	s.events.ListChanged(list)
	return &list, nil
}

func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (*ShoppingItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	list, err := s.repo.GetListByID(ctx, input.ListID)
	if err != nil {
		return nil, err
	}
	if list.Status == StatusArchived {
		return nil, ErrListArchived
	}
	if !canManage(list, input.Actor) {
		return nil, ErrPermissionDenied
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := ShoppingItem{
		ID:         uuid.NewString(),
		ListID:     list.ID,
		Name:       name,
		Quantity:   quantity,
		Unit:       strings.TrimSpace(input.Unit),
		Price:      input.Price,
		AssignedTo: input.AssignedTo,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		position, err := tx.MaxItemPosition(ctx, list.ID)
		if err != nil {
			return err
		}
		item.Position = position + 1
		return tx.CreateItem(ctx, &item)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListUsers(list)
	s.events.ItemChanged(list.ID, item)
	return &item, nil
}

func (s *Service) EditItem(ctx context.Context, input EditItemInput) (*ShoppingItem, error) {
	if input.Name == nil && input.Quantity == nil && input.Unit == nil && input.Price == nil && input.AssignedTo == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	list, err := s.repo.GetListByID(ctx, input.ListID)
	if err != nil {
		return nil, err
	}
	if list.Status == StatusArchived {
		return nil, ErrListArchived
	}
	if !canManage(list, input.Actor) {
		return nil, ErrPermissionDenied
	}

	item, err := s.repo.GetItemByID(ctx, input.ListID, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		item.Name = trimmed
	}
	if input.Quantity != nil && *input.Quantity > 0 {
		item.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.AssignedTo != nil {
		if strings.TrimSpace(*input.AssignedTo) == "" {
			item.AssignedTo = nil
		} else {
			item.AssignedTo = input.AssignedTo
		}
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateListUsers(list)
	s.events.ItemChanged(list.ID, *item)
	return item, nil
}

// UpdateItem applies a completion-state change. Only the list owner or the
// item's assignee may complete or uncomplete an item. Uncompleting clears the
// purchased amount so it is never carried over to a later purchase.
func (s *Service) UpdateItem(ctx context.Context, input UpdateItemInput) (*ShoppingItem, error) {
	list, err := s.repo.GetListByID(ctx, input.ListID)
	if err != nil {
		return nil, err
	}
	if list.Status == StatusArchived {
		return nil, ErrListArchived
	}

	item := list.FindItem(input.ItemID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !list.CanToggle(item, input.Actor) {
		return nil, ErrPermissionDenied
	}

	if input.Completed {
		now := time.Now().UTC()
		item.Completed = true
		item.CompletedAt = &now
		item.PurchasedAmount = input.ActualPrice
	} else {
		item.Completed = false
		item.CompletedAt = nil
		item.PurchasedAmount = nil
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateListUsers(list)
	s.events.ItemChanged(list.ID, *item)
	return item, nil
}

// ArchiveList moves an active list to archived. The transition is one-way;
// there is no un-archive.
func (s *Service) ArchiveList(ctx context.Context, listID, actor string) (*ShoppingList, error) {
	list, err := s.repo.GetListByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !canManage(list, actor) {
		return nil, ErrPermissionDenied
	}
	if list.Status == StatusArchived {
		return nil, ErrListArchived
	}

	moved, err := s.repo.SetListStatus(ctx, listID, list.Status, StatusArchived)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost the race with a concurrent archive.
		return nil, ErrListArchived
	}

	now := time.Now().UTC()
	list.Status = StatusArchived
	list.ArchivedAt = &now

	s.invalidateListUsers(list)
	s.events.ListChanged(*list)
	return list, nil
}

func (s *Service) AddCollaborator(ctx context.Context, input AddCollaboratorInput) (*Collaborator, error) {
	if input.Role != RoleEditor && input.Role != RoleViewer {
		return nil, ErrInvalidRole
	}

	list, err := s.repo.GetListByID(ctx, input.ListID)
	if err != nil {
		return nil, err
	}
	if !list.IsOwner(input.Actor) {
		return nil, ErrPermissionDenied
	}
	for _, c := range list.Collaborators {
		if c.UserID == input.UserID {
			return nil, ErrCollaboratorExists
		}
	}

	collaborator := Collaborator{
		ID:     uuid.NewString(),
		ListID: list.ID,
		UserID: input.UserID,
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Phone:  input.Phone,
		Role:   input.Role,
	}
	if err := s.repo.AddCollaborator(ctx, &collaborator); err != nil {
		return nil, err
	}

	list.Collaborators = append(list.Collaborators, collaborator)
	s.invalidateListUsers(list)
	s.events.ListChanged(*list)
	return &collaborator, nil
}

func (s *Service) RemoveCollaborator(ctx context.Context, listID, actor, userID string) error {
	list, err := s.repo.GetListByID(ctx, listID)
	if err != nil {
		return err
	}
	if !list.IsOwner(actor) && actor != userID {
		return ErrPermissionDenied
	}
	if userID == list.OwnerID {
		return ErrCannotRemoveOwner
	}

	removed, err := s.repo.RemoveCollaborator(ctx, listID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrCollaboratorNotFound
	}

	// Includes the removed collaborator, whose view changes too.
	s.invalidateListUsers(list)

	remaining := list.Collaborators[:0]
	for _, c := range list.Collaborators {
		if c.UserID != userID {
			remaining = append(remaining, c)
		}
	}
	list.Collaborators = remaining
	s.events.ListChanged(*list)
	return nil
}

// invalidateListUsers drops cached list collections for everyone who can see
// the list.
func (s *Service) invalidateListUsers(list *ShoppingList) {
	users := make([]string, 0, len(list.Collaborators)+1)
	users = append(users, list.OwnerID)
	for _, c := range list.Collaborators {
		users = append(users, c.UserID)
	}
	s.lists.InvalidateUsers(users...)
}

// canManage allows owners and editors to mutate list contents.
func canManage(list *ShoppingList, actor string) bool {
	if list.OwnerID == actor {
		return true
	}
	for _, c := range list.Collaborators {
		if c.UserID == actor {
			return c.Role == RoleOwner || c.Role == RoleEditor
		}
	}
	return false
}
