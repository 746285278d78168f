package session

import (
	"context"
	"testing"
	"time"

	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/events"
)

func TestManagerReusesControllerPerUser(t *testing.T) {
	m := NewManager(newFakeListStore(), nil, testLogger())

	if m.Session("owner-1") != m.Session("owner-1") {
		t.Fatalf("expected one controller per user")
	}
	if m.Session("owner-1") == m.Session("editor-1") {
		t.Fatalf("expected distinct controllers per user")
	}
}

func TestManagerFeedsEventsIntoSession(t *testing.T) {
	bus := events.NewBus(16)
	m := NewManager(newFakeListStore(), bus, testLogger())

	if _, err := m.SelectList(context.Background(), "owner-1", "list-1"); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	bus.ItemChanged("list-1", completedCopy(t, "item-1"))

	waitFor(t, func() bool {
		state := m.State("owner-1")
		for _, id := range state.CompletedItemIDs {
			if id == "item-1" {
				return true
			}
		}
		return false
	})
}

func TestManagerDeselectDetachesFeed(t *testing.T) {
	bus := events.NewBus(16)
	m := NewManager(newFakeListStore(), bus, testLogger())

	if _, err := m.SelectList(context.Background(), "owner-1", "list-1"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	m.Deselect("owner-1")

	if m.State("owner-1").Active {
		t.Fatalf("expected select-list mode after deselect")
	}

	// Events published after deselect must not resurrect session state.
	bus.ItemChanged("list-1", completedCopy(t, "item-1"))
	time.Sleep(20 * time.Millisecond)
	if m.State("owner-1").Active {
		t.Fatalf("detached session must ignore feed events")
	}
}

func TestManagerConfirmArchiveDetaches(t *testing.T) {
	bus := events.NewBus(16)
	m := NewManager(newFakeListStore(), bus, testLogger())

	if _, err := m.SelectList(context.Background(), "owner-1", "list-1"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := m.ConfirmArchive(context.Background(), "owner-1"); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if m.State("owner-1").Active {
		t.Fatalf("expected select-list mode after archive")
	}
}

func completedCopy(t *testing.T, itemID string) shopping.ShoppingItem {
	t.Helper()
	item := newFakeListStore().list.FindItem(itemID)
	if item == nil {
		t.Fatalf("unknown item %s", itemID)
	}
	copied := *item
	copied.Completed = true
	return copied
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}
