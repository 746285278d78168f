package session

import (
	"context"
	"sync"

	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/events"
	"pentrypal-go/pkg/logger"
)

// Feed is the subscribe side of the live-updates channel.
type Feed interface {
	Subscribe(listID string) (<-chan events.Event, func())
}

// Manager hands out one Controller per user and keeps each subscribed to the
// feed of its active list. It is the constructor-injected replacement for
// what the mobile client kept in ambient global state.
type Manager struct {
	store ListStore
	feed  Feed
	log   logger.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
	cancels     map[string]func()
}

func NewManager(store ListStore, feed Feed, log logger.Logger) *Manager {
	return &Manager{
		store:       store,
		feed:        feed,
		log:         log,
		controllers: make(map[string]*Controller),
		cancels:     make(map[string]func()),
	}
}

// Session returns the user's controller, creating one on first use.
func (m *Manager) Session(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctrl, ok := m.controllers[userID]
	if !ok {
		ctrl = NewController(userID, m.store, m.log)
		m.controllers[userID] = ctrl
	}
	return ctrl
}

// SelectList enters shopping mode on the list and attaches the live-update
// subscription for it, replacing any previous one.
func (m *Manager) SelectList(ctx context.Context, userID, listID string) (*shopping.ShoppingList, error) {
	ctrl := m.Session(userID)

	list, err := ctrl.SelectList(ctx, listID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if cancel, ok := m.cancels[userID]; ok {
		cancel()
		delete(m.cancels, userID)
	}
	if m.feed != nil {
		ch, cancel := m.feed.Subscribe(listID)
		m.cancels[userID] = cancel
		go m.pump(ctrl, listID, ch, cancel)
	}
	m.mu.Unlock()

	return list, nil
}

// Deselect leaves shopping mode and detaches the feed subscription.
func (m *Manager) Deselect(userID string) {
	m.Session(userID).Deselect()
	m.detach(userID)
}

func (m *Manager) ToggleItem(ctx context.Context, userID, itemID string) (ToggleResult, error) {
	return m.Session(userID).ToggleItem(ctx, itemID)
}

func (m *Manager) ConfirmAmount(ctx context.Context, userID, itemID, rawInput string) (*shopping.ShoppingItem, error) {
	return m.Session(userID).ConfirmAmount(ctx, itemID, rawInput)
}

func (m *Manager) CancelAmount(userID string) {
	m.Session(userID).CancelAmount()
}

func (m *Manager) RequestFinish(userID string, force bool) (FinishResult, error) {
	return m.Session(userID).RequestFinish(force)
}

func (m *Manager) ConfirmArchive(ctx context.Context, userID string) (*ArchiveOutcome, error) {
	outcome, err := m.Session(userID).ConfirmArchive(ctx)
	if err != nil {
		return nil, err
	}
	m.detach(userID)
	return outcome, nil
}

func (m *Manager) State(userID string) State {
	return m.Session(userID).State()
}

func (m *Manager) detach(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.cancels[userID]; ok {
		cancel()
		delete(m.cancels, userID)
	}
}

// pump routes feed events into the controller until the subscription closes
// or the controller moves off the list.
func (m *Manager) pump(ctrl *Controller, listID string, ch <-chan events.Event, cancel func()) {
	defer cancel()
	for event := range ch {
		switch event.Type {
		case events.TypeItemChanged:
			if event.Item != nil {
				ctrl.ApplyItemChanged(*event.Item)
			}
		case events.TypeListChanged:
			if event.List != nil {
				ctrl.ApplyListChanged(*event.List)
			}
		}
		if ctrl.ActiveListID() != listID {
			return
		}
	}
}
