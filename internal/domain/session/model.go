package session

import (
	"context"

	"pentrypal-go/internal/domain/shopping"
)

// ListStore is the request/response side of the list store contract. The
// shopping service satisfies it directly; tests substitute fakes.
type ListStore interface {
	FetchList(ctx context.Context, listID string) (*shopping.ShoppingList, error)
	FetchLists(ctx context.Context, userID string, filter shopping.ListFilter) ([]shopping.ShoppingList, int64, error)
	UpdateItem(ctx context.Context, input shopping.UpdateItemInput) (*shopping.ShoppingItem, error)
	ArchiveList(ctx context.Context, listID, actor string) (*shopping.ShoppingList, error)
}

// State is a read-only view of one shopping session for the transport layer.
// List is the merged view: the authoritative snapshot with the local
// completed-set applied on top.
type State struct {
	Active           bool
	List             *shopping.ShoppingList
	CompletedItemIDs []string
	ExpandedItemID   string
	PendingAmount    string
	Totals           shopping.ListTotals
}

// ToggleResult reports what a toggle did. Either the item was expanded for
// amount entry (Expanded true, SuggestedAmount seeded from the estimated
// price) or it was uncompleted and Item holds the authoritative result.
type ToggleResult struct {
	Expanded        bool
	ItemID          string
	SuggestedAmount string
	Item            *shopping.ShoppingItem
}

// FinishResult is the outcome of requesting to finish shopping. When items
// remain and the caller did not force, NeedsConfirmation is set along with
// the names of the remaining items ("continue shopping" is simply not calling
// again; "finish anyway" is calling with force). Otherwise Prompt carries the
// archive confirmation summary.
type FinishResult struct {
	NeedsConfirmation bool
	RemainingItems    []string
	Prompt            *ArchivePrompt
}

type ArchivePrompt struct {
	CompletedCount int
	ItemsCount     int
	TotalSpent     float64
}

// ArchiveOutcome is returned after a confirmed archive: the archived list and
// the refreshed active-lists collection (the archived list is gone from it).
type ArchiveOutcome struct {
	List        *shopping.ShoppingList
	ActiveLists []shopping.ShoppingList
}
