package shopping

import (
	"fmt"
	"sync"
	"time"
)

const defaultListsCacheTTL = 15 * time.Second

// listsCache holds per-user list-collection query results. Entries are keyed
// by user and filter and invalidated whenever a list visible to that user
// changes, so the TTL only bounds staleness across processes.
type listsCache struct {
	mu    sync.RWMutex
	items map[string]map[string]listsCacheEntry
}

type listsCacheEntry struct {
	lists     []ShoppingList
	total     int64
	expiresAt time.Time
}

func newListsCache() *listsCache {
	return &listsCache{items: make(map[string]map[string]listsCacheEntry)}
}

func listsCacheKey(filter ListFilter) string {
	return fmt.Sprintf("%s:%d:%d", filter.Status, filter.Limit, filter.Offset)
}

func (c *listsCache) Get(userID, key string, now time.Time) ([]ShoppingList, int64, bool) {
	c.mu.RLock()
	entry, ok := c.items[userID][key]
	c.mu.RUnlock()
	if !ok || !entry.expiresAt.After(now) {
		return nil, 0, false
	}
	return entry.lists, entry.total, true
}

func (c *listsCache) Set(userID, key string, lists []ShoppingList, total int64, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byKey, ok := c.items[userID]
	if !ok {
		byKey = make(map[string]listsCacheEntry)
		c.items[userID] = byKey
	}
	byKey[key] = listsCacheEntry{lists: lists, total: total, expiresAt: expiresAt}
}

func (c *listsCache) InvalidateUsers(userIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, userID := range userIDs {
		delete(c.items, userID)
	}
}
