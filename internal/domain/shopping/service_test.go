package shopping

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

func TestTotals(t *testing.T) {
	amount1 := 5.00
	amount2 := 3.50
	items := []ShoppingItem{
		{ID: "i1", Completed: true, PurchasedAmount: &amount1},
		{ID: "i2", Completed: true, PurchasedAmount: &amount2},
		{ID: "i3", Completed: false},
	}

	totals := Totals(items)
	if totals.ItemsCount != 3 || totals.CompletedCount != 2 {
		t.Fatalf("unexpected counts: %+v", totals)
	}
	if totals.Progress != 67 {
		t.Fatalf("expected progress 67, got %d", totals.Progress)
	}
	if totals.TotalSpent != 8.50 {
		t.Fatalf("expected total spent 8.50, got %v", totals.TotalSpent)
	}
}

func TestTotalsEmptyList(t *testing.T) {
	totals := Totals(nil)
	if totals.Progress != 0 {
		t.Fatalf("expected progress 0 for empty list, got %d", totals.Progress)
	}
	if totals.ItemsCount != 0 || totals.TotalSpent != 0 {
		t.Fatalf("unexpected totals for empty list: %+v", totals)
	}
}

func TestTotalsIgnoresAmountOnIncompleteItem(t *testing.T) {
	amount := 9.99
	totals := Totals([]ShoppingItem{{ID: "i1", Completed: false, PurchasedAmount: &amount}})
	if totals.TotalSpent != 0 {
		t.Fatalf("expected 0 spent, got %v", totals.TotalSpent)
	}
}

func TestUpdateItemPermissionDeniedForViewer(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	_, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ListID:    "list-1",
		ItemID:    "item-1",
		Actor:     "viewer-1",
		Completed: true,
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	item := repo.items["item-1"]
	if item.Completed {
		t.Fatalf("item must not change on denied update")
	}
}

func TestUpdateItemAssigneeAllowed(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	amount := 2.50
	updated, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ListID:      "list-1",
		ItemID:      "item-2",
		Actor:       "editor-1",
		Completed:   true,
		ActualPrice: &amount,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Completed || updated.PurchasedAmount == nil || *updated.PurchasedAmount != 2.50 {
		t.Fatalf("unexpected item state: %+v", updated)
	}
}

func TestUpdateItemUncompleteClearsAmount(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	amount := 4.00
	if _, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ListID: "list-1", ItemID: "item-1", Actor: "owner-1", Completed: true, ActualPrice: &amount,
	}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	updated, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ListID: "list-1", ItemID: "item-1", Actor: "owner-1", Completed: false,
	})
	if err != nil {
		t.Fatalf("uncomplete failed: %v", err)
	}
	if updated.Completed || updated.PurchasedAmount != nil || updated.CompletedAt != nil {
		t.Fatalf("uncompleting must clear purchase state: %+v", updated)
	}
}

func TestUpdateItemOnArchivedList(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)
	list := repo.lists["list-1"]
	list.Status = StatusArchived
	repo.lists["list-1"] = list

	_, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ListID: "list-1", ItemID: "item-1", Actor: "owner-1", Completed: true,
	})
	if !errors.Is(err, ErrListArchived) {
		t.Fatalf("expected ErrListArchived, got %v", err)
	}
}

func TestArchiveListIsOneWay(t *testing.T) {
	repo := newFakeShoppingRepo()
	publisher := &recordingPublisher{}
	svc := NewService(repo, publisher)
	seedList(repo)

	archived, err := svc.ArchiveList(context.Background(), "list-1", "owner-1")
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if archived.Status != StatusArchived || archived.ArchivedAt == nil {
		t.Fatalf("unexpected archived list: %+v", archived)
	}

	if _, err := svc.ArchiveList(context.Background(), "list-1", "owner-1"); !errors.Is(err, ErrListArchived) {
		t.Fatalf("expected ErrListArchived on second archive, got %v", err)
	}

	if len(publisher.listEvents) != 1 {
		t.Fatalf("expected 1 list event, got %d", len(publisher.listEvents))
	}
	if publisher.listEvents[0].Status != StatusArchived {
		t.Fatalf("expected archived status in event, got %s", publisher.listEvents[0].Status)
	}
}

func TestArchiveListViewerDenied(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	if _, err := svc.ArchiveList(context.Background(), "list-1", "viewer-1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestCreateItemAppendsPosition(t *testing.T) {
	repo := newFakeShoppingRepo()
	publisher := &recordingPublisher{}
	svc := NewService(repo, publisher)
	seedList(repo)

	item, err := svc.CreateItem(context.Background(), CreateItemInput{
		ListID: "list-1",
		Actor:  "owner-1",
		Name:   "Butter",
		Price:  3.20,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.Position != 2 {
		t.Fatalf("expected position 2, got %d", item.Position)
	}
	if item.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %v", item.Quantity)
	}
	if len(publisher.itemEvents) != 1 {
		t.Fatalf("expected 1 item event, got %d", len(publisher.itemEvents))
	}
}

func TestCreateItemViewerDenied(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	_, err := svc.CreateItem(context.Background(), CreateItemInput{
		ListID: "list-1",
		Actor:  "viewer-1",
		Name:   "Chocolate",
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestAddCollaborator(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	if _, err := svc.AddCollaborator(context.Background(), AddCollaboratorInput{
		ListID: "list-1", Actor: "editor-1", UserID: "new-1", Role: RoleEditor,
	}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied for non-owner, got %v", err)
	}

	if _, err := svc.AddCollaborator(context.Background(), AddCollaboratorInput{
		ListID: "list-1", Actor: "owner-1", UserID: "new-1", Role: RoleOwner,
	}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected invalid role for second owner, got %v", err)
	}

	collaborator, err := svc.AddCollaborator(context.Background(), AddCollaboratorInput{
		ListID: "list-1", Actor: "owner-1", UserID: "new-1", Name: "New", Role: RoleViewer,
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if collaborator.Role != RoleViewer {
		t.Fatalf("unexpected role: %s", collaborator.Role)
	}

	if _, err := svc.AddCollaborator(context.Background(), AddCollaboratorInput{
		ListID: "list-1", Actor: "owner-1", UserID: "new-1", Role: RoleViewer,
	}); !errors.Is(err, ErrCollaboratorExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestRemoveCollaborator(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	if err := svc.RemoveCollaborator(context.Background(), "list-1", "owner-1", "owner-1"); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("expected cannot-remove-owner, got %v", err)
	}

	if err := svc.RemoveCollaborator(context.Background(), "list-1", "owner-1", "viewer-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if err := svc.RemoveCollaborator(context.Background(), "list-1", "owner-1", "viewer-1"); !errors.Is(err, ErrCollaboratorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFetchListsCachesAndInvalidates(t *testing.T) {
	repo := newFakeShoppingRepo()
	svc := NewService(repo, nil)
	seedList(repo)

	for i := 0; i < 3; i++ {
		if _, _, err := svc.FetchLists(context.Background(), "owner-1", ListFilter{}); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected 1 repository call for repeated fetches, got %d", repo.listCalls)
	}

	// A write drops the cached collection for everyone on the list.
	if _, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ListID: "list-1", ItemID: "item-1", Actor: "owner-1", Completed: true,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	lists, _, err := svc.FetchLists(context.Background(), "owner-1", ListFilter{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", repo.listCalls)
	}
	if len(lists) != 1 || Totals(lists[0].Items).CompletedCount != 1 {
		t.Fatalf("refetched view must reflect the update")
	}
}

func seedList(repo *fakeShoppingRepo) {
	assignee := "editor-1"
	repo.lists["list-1"] = ShoppingList{
		ID:      "list-1",
		Name:    "Weekly groceries",
		OwnerID: "owner-1",
		Status:  StatusActive,
	}
	repo.items["item-1"] = ShoppingItem{ID: "item-1", ListID: "list-1", Name: "Milk", Quantity: 1, Price: 1.80, Position: 0}
	repo.items["item-2"] = ShoppingItem{ID: "item-2", ListID: "list-1", Name: "Bread", Quantity: 2, Price: 2.40, Position: 1, AssignedTo: &assignee}
	repo.collaborators["c-owner"] = Collaborator{ID: "c-owner", ListID: "list-1", UserID: "owner-1", Role: RoleOwner}
	repo.collaborators["c-editor"] = Collaborator{ID: "c-editor", ListID: "list-1", UserID: "editor-1", Role: RoleEditor}
	repo.collaborators["c-viewer"] = Collaborator{ID: "c-viewer", ListID: "list-1", UserID: "viewer-1", Role: RoleViewer}
}

type fakeShoppingRepo struct {
	mu            sync.Mutex
	lists         map[string]ShoppingList
	items         map[string]ShoppingItem
	collaborators map[string]Collaborator
	listCalls     int
}

func newFakeShoppingRepo() *fakeShoppingRepo {
	return &fakeShoppingRepo{
		lists:         make(map[string]ShoppingList),
		items:         make(map[string]ShoppingItem),
		collaborators: make(map[string]Collaborator),
	}
}

func (r *fakeShoppingRepo) Transaction(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeShoppingRepo) ListLists(_ context.Context, userID string, filter ListFilter) ([]ShoppingList, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++

	var matched []ShoppingList
	for _, list := range r.lists {
		if filter.Status != "" && list.Status != filter.Status {
			continue
		}
		member := list.OwnerID == userID
		for _, c := range r.collaborators {
			if c.ListID == list.ID && c.UserID == userID {
				member = true
			}
		}
		if member {
			matched = append(matched, r.hydrateLocked(list))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, int64(len(matched)), nil
}

func (r *fakeShoppingRepo) GetListByID(_ context.Context, listID string) (*ShoppingList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok {
		return nil, ErrListNotFound
	}
	hydrated := r.hydrateLocked(list)
	return &hydrated, nil
}

func (r *fakeShoppingRepo) CreateList(_ context.Context, list *ShoppingList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *list
	stored.Items = nil
	stored.Collaborators = nil
	r.lists[stored.ID] = stored
	return nil
}

func (r *fakeShoppingRepo) SetListStatus(_ context.Context, listID, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.lists[listID]
	if !ok || list.Status != from {
		return false, nil
	}
	list.Status = to
	r.lists[listID] = list
	return true, nil
}

func (r *fakeShoppingRepo) GetItemByID(_ context.Context, listID, itemID string) (*ShoppingItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok || item.ListID != listID {
		return nil, ErrItemNotFound
	}
	copied := item
	return &copied, nil
}

func (r *fakeShoppingRepo) CreateItem(_ context.Context, item *ShoppingItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeShoppingRepo) UpdateItem(_ context.Context, item *ShoppingItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	r.items[item.ID] = *item
	return nil
}

func (r *fakeShoppingRepo) MaxItemPosition(_ context.Context, listID string) (int, error) {
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

func (r *fakeShoppingRepo) AddCollaborator(_ context.Context, collaborator *Collaborator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collaborators[collaborator.ID] = *collaborator
	return nil
}

func (r *fakeShoppingRepo) RemoveCollaborator(_ context.Context, listID, userID string) (bool, error) {
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

func (r *fakeShoppingRepo) hydrateLocked(list ShoppingList) ShoppingList {
	for _, item := range r.items {
		if item.ListID == list.ID {
			list.Items = append(list.Items, item)
		}
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Position < list.Items[j].Position })
	for _, c := range r.collaborators {
		if c.ListID == list.ID {
			list.Collaborators = append(list.Collaborators, c)
		}
	}
	sort.Slice(list.Collaborators, func(i, j int) bool { return list.Collaborators[i].ID < list.Collaborators[j].ID })
	return list
}

type recordingPublisher struct {
	mu         sync.Mutex
	itemEvents []ShoppingItem
	listEvents []ShoppingList
}

func (p *recordingPublisher) ItemChanged(_ string, item ShoppingItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.itemEvents = append(p.itemEvents, item)
}

func (p *recordingPublisher) ListChanged(list ShoppingList) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listEvents = append(p.listEvents, list)
}
