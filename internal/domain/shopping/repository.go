package shopping

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListLists(ctx context.Context, userID string, filter ListFilter) ([]ShoppingList, int64, error)
	GetListByID(ctx context.Context, listID string) (*ShoppingList, error)
	CreateList(ctx context.Context, list *ShoppingList) error
	SetListStatus(ctx context.Context, listID, from, to string) (bool, error)
	GetItemByID(ctx context.Context, listID, itemID string) (*ShoppingItem, error)
	CreateItem(ctx context.Context, item *ShoppingItem) error
	UpdateItem(ctx context.Context, item *ShoppingItem) error
	MaxItemPosition(ctx context.Context, listID string) (int, error)
	AddCollaborator(ctx context.Context, collaborator *Collaborator) error
	RemoveCollaborator(ctx context.Context, listID, userID string) (bool, error)
}
