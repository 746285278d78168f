package session

import (
	"pentrypal-go/internal/domain/shopping"
)

// ApplyItemChanged merges an authoritative item state pushed over the live
// feed. Application is idempotent: the same event applied twice leaves the
// session in the same state. Items the snapshot does not know yet are merged
// in; items with a local update in flight keep their optimistic completion
// until that update resolves.
func (c *Controller) ApplyItemChanged(item shopping.ShoppingItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyItemLocked(item)
}

func (c *Controller) applyItemLocked(item shopping.ShoppingItem) {
	if c.list == nil || item.ListID != c.list.ID {
		return
	}

	if existing := c.list.FindItem(item.ID); existing != nil {
		*existing = item
	} else {
		c.list.Items = append(c.list.Items, item)
	}

	if _, busy := c.inflight[item.ID]; busy {
		return
	}

	if item.Completed {
		c.completed[item.ID] = struct{}{}
		// A completed item is never held open for amount entry.
		if c.expandedItemID == item.ID {
			c.expandedItemID = ""
			c.pendingAmount = ""
		}
	} else {
		delete(c.completed, item.ID)
	}
}

// ApplyListChanged merges an authoritative list state pushed over the live
// feed. An archive performed by another collaborator destroys the session.
func (c *Controller) ApplyListChanged(list shopping.ShoppingList) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list == nil || list.ID != c.list.ID {
		return
	}

	if list.Status == shopping.StatusArchived {
		c.resetLocked()
		return
	}

	c.list.Name = list.Name
	c.list.Status = list.Status
	c.list.OwnerID = list.OwnerID
	if list.Collaborators != nil {
		c.list.Collaborators = list.Collaborators
	}
	if list.Items != nil {
		c.list.Items = list.Items
		rebuilt := make(map[string]struct{}, len(list.Items))
		for _, item := range list.Items {
			_, busy := c.inflight[item.ID]
			_, done := c.completed[item.ID]
			if (busy && done) || (!busy && item.Completed) {
				rebuilt[item.ID] = struct{}{}
			}
		}
		c.completed = rebuilt
		if c.expandedItemID != "" {
			if _, done := c.completed[c.expandedItemID]; done || c.list.FindItem(c.expandedItemID) == nil {
				c.expandedItemID = ""
				c.pendingAmount = ""
			}
		}
	}
}
