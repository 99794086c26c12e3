package syncengine

import (
	"sync"

	"github.com/colocapp/colocourses/internal/domain"
)

// Cache is the client-side authoritative view of the active coloc's items:
// an ordered, id-keyed collection reconciling bulk fetches (ReplaceAll),
// local mutation results and hub-pushed events (Upsert/Remove) without
// duplicates or lost updates.
type Cache struct {
	mu    sync.RWMutex
	order []string
	items map[string]*domain.Item
}

func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*domain.Item),
	}
}

// ReplaceAll swaps the whole cache for a fresh fetch result.
func (c *Cache) ReplaceAll(items []*domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = make([]string, 0, len(items))
	c.items = make(map[string]*domain.Item, len(items))
	for _, it := range items {
		if _, ok := c.items[it.ID]; ok {
			continue
		}
		c.order = append(c.order, it.ID)
		c.items[it.ID] = it
	}
}

// Upsert applies an item from either the local mutation path or a hub event.
// The existence check keeps a local write followed by its own echo (or a
// concurrent remote add) from producing a duplicate entry: known ids are
// updated in place, their position preserved.
func (c *Cache) Upsert(it *domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[it.ID]; !ok {
		c.order = append(c.order, it.ID)
	}
	c.items[it.ID] = it
}

// Remove drops an item by id; unknown ids are a no-op (the local path may
// have removed it before the hub echo arrived).
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveBought drops every bought item (the list:cleared event).
func (c *Cache) RemoveBought() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	kept := c.order[:0]
	for _, id := range c.order {
		if it := c.items[id]; it != nil && it.Bought {
			delete(c.items, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return removed
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.items = make(map[string]*domain.Item)
}

// Items returns the cached items in order.
func (c *Cache) Items() []*domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Item, 0, len(c.order))
	for _, id := range c.order {
		if it := c.items[id]; it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CategoryGroup is one rendered section of the list.
type CategoryGroup struct {
	Category string
	Items    []*domain.Item
}

// ByCategory groups cached items by category, categories in first-seen
// order, items keeping the underlying order within each category.
func (c *Cache) ByCategory() []CategoryGroup {
	items := c.Items()

	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, CategoryGroup{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// Summary aggregates the cached list.
type Summary struct {
	Items     int
	Bought    int
	TotalCost float64 // Σ price×quantity over ALL items, bought or not
}

// Summary computes the aggregate view surfaced above the list.
func (c *Cache) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var sum Summary
	for _, it := range c.items {
		sum.Items++
		if it.Bought {
			sum.Bought++
		}
		sum.TotalCost += it.EstimatedPrice * it.Quantity
	}
	return sum
}
