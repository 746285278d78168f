package events

import (
	"sync"

	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/metrics"
)

type Type string

const (
	TypeItemChanged Type = "item_changed"
	TypeListChanged Type = "list_changed"
)

// Event is one frame on the live-updates feed. Exactly one of Item or List is
// set, matching Type.
type Event struct {
	Type   Type
	ListID string
	Item   *shopping.ShoppingItem
	List   *shopping.ShoppingList
}

// Bus is the in-process pub/sub channel between the list store and its
// consumers (session controllers, the WebSocket feed). Delivery is
// at-least-once: a reconnecting consumer re-fetches the list and replays
// events on top, so every consumer applies events idempotently. A subscriber
// that cannot keep up with its buffer is dropped and must re-subscribe.
type Bus struct {
	buffer int

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	listID string
	ch     chan Event
	closed bool
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe attaches to the feed for one list. The returned cancel func is
// safe to call more than once. The channel is closed on cancel or when the
// subscriber falls too far behind.
func (b *Bus) Subscribe(listID string) (<-chan Event, func()) {
	sub := &subscriber{
		listID: listID,
		ch:     make(chan Event, b.buffer),
	}

	b.mu.Lock()
	room, ok := b.subs[listID]
	if !ok {
		room = make(map[*subscriber]struct{})
		b.subs[listID] = room
	}
	room[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.drop(sub)
	}
	return sub.ch, cancel
}

func (b *Bus) ItemChanged(listID string, item shopping.ShoppingItem) {
	copied := item
	b.publish(Event{Type: TypeItemChanged, ListID: listID, Item: &copied})
}

func (b *Bus) ListChanged(list shopping.ShoppingList) {
	copied := list
	b.publish(Event{Type: TypeListChanged, ListID: list.ID, List: &copied})
}

// publish never blocks: a mutation path must not wait on slow consumers, so
// full subscriber buffers drop the subscriber instead.
func (b *Bus) publish(event Event) {
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()

	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[event.ListID] {
		select {
		case sub.ch <- event:
		default:
			// Too slow to keep up; the consumer re-syncs on reconnect.
			b.drop(sub)
		}
	}
}

// drop must be called with b.mu held.
func (b *Bus) drop(sub *subscriber) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)

	if room, ok := b.subs[sub.listID]; ok {
		delete(room, sub)
		if len(room) == 0 {
			delete(b.subs, sub.listID)
		}
	}
}
