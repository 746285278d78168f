package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/metrics"
	"pentrypal-go/pkg/logger"
)

// Controller owns the ephemeral shopping-session state for one user: the
// active list snapshot, the locally-tracked completed set, and the at most
// one item expanded for amount entry. All mutation is serialized through its
// mutex; the mutex is released while a store request is in flight, with the
// per-item inflight set preventing duplicate updates for the same item.
type Controller struct {
	userID string
	store  ListStore
	log    logger.Logger

	mu             sync.Mutex
	list           *shopping.ShoppingList
	completed      map[string]struct{}
	expandedItemID string
	pendingAmount  string
	inflight       map[string]struct{}
}

func NewController(userID string, store ListStore, log logger.Logger) *Controller {
	return &Controller{
		userID: userID,
		store:  store,
		log:    log.With("user_id", userID),
	}
}

// SelectList loads the list and enters shopping mode. On fetch failure the
// controller stays in select-list mode and the error is returned as-is.
func (c *Controller) SelectList(ctx context.Context, listID string) (*shopping.ShoppingList, error) {
	list, err := c.store.FetchList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.CanView(c.userID) {
		return nil, shopping.ErrPermissionDenied
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.list = list
	c.completed = make(map[string]struct{}, len(list.Items))
	for _, item := range list.Items {
		if item.Completed {
			c.completed[item.ID] = struct{}{}
		}
	}
	c.inflight = make(map[string]struct{})
	metrics.ActiveSessions.Inc()

	return list, nil
}

// Deselect returns to select-list mode, abandoning any in-flight update's
// UI effect. The update itself still lands in the store and is reconciled if
// the list is selected again.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// ActiveListID returns the selected list's id, or "" in select-list mode.
func (c *Controller) ActiveListID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list == nil {
		return ""
	}
	return c.list.ID
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list == nil {
		return State{}
	}

	merged := c.mergedListLocked()
	ids := make([]string, 0, len(c.completed))
	for id := range c.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return State{
		Active:           true,
		List:             merged,
		CompletedItemIDs: ids,
		ExpandedItemID:   c.expandedItemID,
		PendingAmount:    c.pendingAmount,
		Totals:           shopping.Totals(merged.Items),
	}
}

// ToggleItem flips an item's completion. A completed item is uncompleted
// immediately; an uncompleted one is expanded for amount entry instead, with
// the buffer seeded from the estimated price. Selecting a second item while
// one is expanded collapses the first without saving.
func (c *Controller) ToggleItem(ctx context.Context, itemID string) (ToggleResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list == nil {
		return ToggleResult{}, ErrNoActiveSession
	}
	item := c.list.FindItem(itemID)
	if item == nil {
		return ToggleResult{}, shopping.ErrItemNotFound
	}
	if !c.list.CanToggle(item, c.userID) {
		return ToggleResult{}, shopping.ErrPermissionDenied
	}

	if _, done := c.completed[itemID]; done {
		updated, err := c.setItemCompletionLocked(ctx, itemID, false, nil)
		if err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{ItemID: itemID, Item: updated}, nil
	}

	c.expandedItemID = itemID
	c.pendingAmount = SuggestAmount(item.Price)
	return ToggleResult{
		Expanded:        true,
		ItemID:          itemID,
		SuggestedAmount: c.pendingAmount,
	}, nil
}

// ConfirmAmount completes the item, recording the entered purchase amount.
// Malformed input is captured as 0, never rejected.
func (c *Controller) ConfirmAmount(ctx context.Context, itemID, rawInput string) (*shopping.ShoppingItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list == nil {
		return nil, ErrNoActiveSession
	}
	item := c.list.FindItem(itemID)
	if item == nil {
		return nil, shopping.ErrItemNotFound
	}
	if !c.list.CanToggle(item, c.userID) {
		return nil, shopping.ErrPermissionDenied
	}

	amount := ParseAmount(rawInput)
	c.expandedItemID = ""
	c.pendingAmount = ""

	return c.setItemCompletionLocked(ctx, itemID, true, &amount)
}

// CancelAmount collapses the expanded item without issuing any request.
func (c *Controller) CancelAmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expandedItemID = ""
	c.pendingAmount = ""
}

// RequestFinish checks for remaining items before archival. With remaining
// items and force unset it asks for confirmation; otherwise it returns the
// archive prompt summary.
func (c *Controller) RequestFinish(force bool) (FinishResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list == nil {
		return FinishResult{}, ErrNoActiveSession
	}

	var remaining []string
	for _, item := range c.list.Items {
		if _, done := c.completed[item.ID]; !done {
			remaining = append(remaining, item.Name)
		}
	}

	if len(remaining) > 0 && !force {
		return FinishResult{NeedsConfirmation: true, RemainingItems: remaining}, nil
	}

	totals := shopping.Totals(c.mergedListLocked().Items)
	return FinishResult{
		Prompt: &ArchivePrompt{
			CompletedCount: totals.CompletedCount,
			ItemsCount:     totals.ItemsCount,
			TotalSpent:     totals.TotalSpent,
		},
	}, nil
}

// ConfirmArchive archives the active list. On success the session resets to
// select-list mode and the refreshed active-lists collection is returned. On
// failure the session is preserved so the user can retry.
func (c *Controller) ConfirmArchive(ctx context.Context) (*ArchiveOutcome, error) {
	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	listID := c.list.ID
	c.mu.Unlock()

	archived, err := c.store.ArchiveList(ctx, listID, c.userID)

	c.mu.Lock()
	if err != nil {
		if errors.Is(err, shopping.ErrListNotFound) || errors.Is(err, shopping.ErrListArchived) {
			// The list is gone either way; drop back to select-list mode.
			c.resetLocked()
		}
		c.mu.Unlock()
		return nil, err
	}
	c.resetLocked()
	c.mu.Unlock()

	metrics.ListsArchived.Inc()

	active, _, err := c.store.FetchLists(ctx, c.userID, shopping.ListFilter{Status: shopping.StatusActive})
	if err != nil {
		c.log.BusinessError("session: refresh active lists after archive failed", err, "list_id", listID)
		active = nil
	}

	return &ArchiveOutcome{List: archived, ActiveLists: active}, nil
}

// setItemCompletionLocked issues the update request with an optimistic local
// change. Callers hold the mutex; it is released for the duration of the
// request and held again on return. Per item only one update may be in
// flight; a second toggle before the first resolves fails fast.
func (c *Controller) setItemCompletionLocked(ctx context.Context, itemID string, completed bool, amount *float64) (*shopping.ShoppingItem, error) {
	if _, busy := c.inflight[itemID]; busy {
		return nil, ErrUpdateInFlight
	}

	_, wasCompleted := c.completed[itemID]
	if completed {
		c.completed[itemID] = struct{}{}
	} else {
		delete(c.completed, itemID)
	}
	c.inflight[itemID] = struct{}{}

	input := shopping.UpdateItemInput{
		ListID:      c.list.ID,
		ItemID:      itemID,
		Actor:       c.userID,
		Completed:   completed,
		ActualPrice: amount,
	}

	c.mu.Unlock()
	updated, err := c.store.UpdateItem(ctx, input)
	c.mu.Lock()

	// The session may have been reset or switched while unlocked.
	if c.list == nil || c.list.ID != input.ListID {
		return updated, err
	}
	delete(c.inflight, itemID)

	if err != nil {
		if wasCompleted {
			c.completed[itemID] = struct{}{}
		} else {
			delete(c.completed, itemID)
		}
		if errors.Is(err, shopping.ErrListNotFound) {
			c.resetLocked()
		}
		metrics.ItemUpdates.WithLabelValues("error").Inc()
		return nil, err
	}

	c.applyItemLocked(*updated)
	metrics.ItemUpdates.WithLabelValues("ok").Inc()
	return updated, nil
}

func (c *Controller) resetLocked() {
	if c.list != nil {
		metrics.ActiveSessions.Dec()
	}
	c.list = nil
	c.completed = nil
	c.expandedItemID = ""
	c.pendingAmount = ""
	c.inflight = nil
}

// mergedListLocked overlays the local completed-set on the authoritative
// snapshot. An item the set does not hold as completed never exposes a
// purchased amount.
func (c *Controller) mergedListLocked() *shopping.ShoppingList {
	merged := *c.list
	merged.Items = make([]shopping.ShoppingItem, len(c.list.Items))
	for i, item := range c.list.Items {
		_, done := c.completed[item.ID]
		item.Completed = done
		if !done {
			item.PurchasedAmount = nil
			item.CompletedAt = nil
		}
		merged.Items[i] = item
	}
	return &merged
}
