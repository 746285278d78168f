package shopping

// Publisher receives change notifications after a mutation commits. The feed
// delivers at-least-once; consumers must apply events idempotently.
type Publisher interface {
	ItemChanged(listID string, item ShoppingItem)
	ListChanged(list ShoppingList)
}

type noopPublisher struct{}

func (noopPublisher) ItemChanged(string, ShoppingItem) {}

func (noopPublisher) ListChanged(ShoppingList) {}
