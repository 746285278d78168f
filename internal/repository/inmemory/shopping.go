package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	shoppingdomain "pentrypal-go/internal/domain/shopping"
)

// InMemoryShoppingRepository is the store used when no database is
// configured (local development) and by tests. Semantics mirror the postgres
// repository; everything is guarded by one mutex and handed out as copies.
type InMemoryShoppingRepository struct {
	mu            sync.Mutex
	lists         map[string]shoppingdomain.ShoppingList
	items         map[string]shoppingdomain.ShoppingItem
	collaborators map[string]shoppingdomain.Collaborator
}

func NewInMemoryShoppingRepository() *InMemoryShoppingRepository {
	return &InMemoryShoppingRepository{
		lists:         make(map[string]shoppingdomain.ShoppingList),
		items:         make(map[string]shoppingdomain.ShoppingItem),
		collaborators: make(map[string]shoppingdomain.Collaborator),
	}
}

// Transaction runs fn against the same repository. The single mutex already
// serializes writers, which is all the in-memory store needs.
func (r *InMemoryShoppingRepository) Transaction(_ context.Context, fn func(shoppingdomain.Repository) error) error {
	return fn(r)
}

func (r *InMemoryShoppingRepository) ListLists(_ context.Context, userID string, filter shoppingdomain.ListFilter) ([]shoppingdomain.ShoppingList, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []shoppingdomain.ShoppingList
	for _, list := range r.lists {
		if filter.Status != "" && list.Status != filter.Status {
			continue
		}
		if list.OwnerID != userID && !r.isCollaboratorLocked(list.ID, userID) {
			continue
		}
		matched = append(matched, r.hydrateLocked(list))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (r *InMemoryShoppingRepository) GetListByID(_ context.Context, listID string) (*shoppingdomain.ShoppingList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok {
		return nil, shoppingdomain.ErrListNotFound
	}
	hydrated := r.hydrateLocked(list)
	return &hydrated, nil
}

func (r *InMemoryShoppingRepository) CreateList(_ context.Context, list *shoppingdomain.ShoppingList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *list
	stored.Items = nil
	stored.Collaborators = nil
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.lists[stored.ID] = stored
	return nil
}

func (r *InMemoryShoppingRepository) SetListStatus(_ context.Context, listID, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok || list.Status != from {
		return false, nil
	}
	list.Status = to
	if to == shoppingdomain.StatusArchived {
		now := time.Now().UTC()
		list.ArchivedAt = &now
	}
	r.lists[listID] = list
	return true, nil
}

func (r *InMemoryShoppingRepository) GetItemByID(_ context.Context, listID, itemID string) (*shoppingdomain.ShoppingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok || item.ListID != listID {
		return nil, shoppingdomain.ErrItemNotFound
	}
	copied := item
	return &copied, nil
}

func (r *InMemoryShoppingRepository) CreateItem(_ context.Context, item *shoppingdomain.ShoppingItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *item
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.items[stored.ID] = stored
	return nil
}

func (r *InMemoryShoppingRepository) UpdateItem(_ context.Context, item *shoppingdomain.ShoppingItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok || existing.ListID != item.ListID {
		return shoppingdomain.ErrItemNotFound
	}
	existing.Name = item.Name
	existing.Quantity = item.Quantity
	existing.Unit = item.Unit
	existing.Price = item.Price
	existing.Completed = item.Completed
	existing.AssignedTo = item.AssignedTo
	existing.PurchasedAmount = item.PurchasedAmount
	existing.CompletedAt = item.CompletedAt
	r.items[item.ID] = existing
	return nil
}

func (r *InMemoryShoppingRepository) MaxItemPosition(_ context.Context, listID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := -1
	for _, item := range r.items {
		if item.ListID == listID && item.Position > max {
			max = item.Position
		}
	}
	return max, nil
}

func (r *InMemoryShoppingRepository) AddCollaborator(_ context.Context, collaborator *shoppingdomain.Collaborator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collaborators[collaborator.ID] = *collaborator
	return nil
}

func (r *InMemoryShoppingRepository) RemoveCollaborator(_ context.Context, listID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.collaborators {
		if c.ListID == listID && c.UserID == userID {
			delete(r.collaborators, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryShoppingRepository) isCollaboratorLocked(listID, userID string) bool {
	for _, c := range r.collaborators {
		if c.ListID == listID && c.UserID == userID {
			return true
		}
	}
	return false
}

func (r *InMemoryShoppingRepository) hydrateLocked(list shoppingdomain.ShoppingList) shoppingdomain.ShoppingList {
	for _, item := range r.items {
		if item.ListID == list.ID {
			list.Items = append(list.Items, item)
		}
	}
	sort.Slice(list.Items, func(i, j int) bool {
		if list.Items[i].Position != list.Items[j].Position {
			return list.Items[i].Position < list.Items[j].Position
		}
		return list.Items[i].CreatedAt.Before(list.Items[j].CreatedAt)
	})

	for _, c := range r.collaborators {
		if c.ListID == list.ID {
			list.Collaborators = append(list.Collaborators, c)
		}
	}
	sort.Slice(list.Collaborators, func(i, j int) bool {
		return list.Collaborators[i].JoinedAt.Before(list.Collaborators[j].JoinedAt)
	})

	return list
}
