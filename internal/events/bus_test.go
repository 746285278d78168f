package events

import (
	"testing"
	"time"

	"pentrypal-go/internal/domain/shopping"
)

func TestBusDeliversToListSubscribers(t *testing.T) {
	bus := NewBus(4)

	ch, cancel := bus.Subscribe("list-1")
	defer cancel()
	otherCh, otherCancel := bus.Subscribe("list-2")
	defer otherCancel()

	bus.ItemChanged("list-1", shopping.ShoppingItem{ID: "item-1", ListID: "list-1", Completed: true})

	select {
	case event := <-ch:
		if event.Type != TypeItemChanged || event.Item == nil || event.Item.ID != "item-1" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}

	select {
	case event := <-otherCh:
		t.Fatalf("event leaked to another list's subscriber: %+v", event)
	default:
	}
}

func TestBusListChangedCarriesList(t *testing.T) {
	bus := NewBus(4)

	ch, cancel := bus.Subscribe("list-1")
	defer cancel()

	bus.ListChanged(shopping.ShoppingList{ID: "list-1", Status: shopping.StatusArchived})

	select {
	case event := <-ch:
		if event.Type != TypeListChanged || event.List == nil || event.List.Status != shopping.StatusArchived {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus(64)

	ch, cancel := bus.Subscribe("list-1")
	defer cancel()

	// A burst of mutations must land on the publisher's timescale, not the
	// consumer's.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			bus.ItemChanged("list-1", shopping.ShoppingItem{ID: "item-1", ListID: "list-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publishing blocked on an idle consumer")
	}

	for i := 0; i < 50; i++ {
		if _, ok := <-ch; !ok {
			t.Fatalf("subscriber dropped despite free buffer (received %d)", i)
		}
	}
}

func TestBusDropsSlowSubscriber(t *testing.T) {
	bus := NewBus(1)

	ch, cancel := bus.Subscribe("list-1")
	defer cancel()

	// First event fills the buffer, the second finds it full.
	bus.ItemChanged("list-1", shopping.ShoppingItem{ID: "item-1", ListID: "list-1"})
	bus.ItemChanged("list-1", shopping.ShoppingItem{ID: "item-2", ListID: "list-1"})

	if _, ok := <-ch; !ok {
		t.Fatalf("expected the buffered event before close")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel for dropped subscriber")
	}
}

func TestBusCancelIsIdempotent(t *testing.T) {
	bus := NewBus(4)

	ch, cancel := bus.Subscribe("list-1")
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}

	// Publishing to a list with no subscribers must not panic.
	bus.ItemChanged("list-1", shopping.ShoppingItem{ID: "item-1", ListID: "list-1"})
}
