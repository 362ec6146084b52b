// Package collection provides the deduplicated result list behind every list
// view, plus the fan-out helpers that fill it.
package collection

import (
	"strings"
	"sync"
)

// Item is anything that can live in a Collection.
type Item interface {
	ItemID() int
	ItemName() string
}

// Collection is an ordered, ID-deduplicated list. Insertion order is arrival
// order. Items without a name are never stored.
type Collection[T Item] struct {
	mu    sync.RWMutex
	items []T
	index map[int]struct{}
}

// New creates an empty collection.
func New[T Item]() *Collection[T] {
	return &Collection[T]{index: make(map[int]struct{})}
}

// Merge appends every item whose ID is not present yet and returns how many
// were added.
func (c *Collection[T]) Merge(items ...T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mergeLocked(items)
}

// Replace drops the current contents and merges items.
func (c *Collection[T]) Replace(items []T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.index = make(map[int]struct{}, len(items))
	return c.mergeLocked(items)
}

func (c *Collection[T]) mergeLocked(items []T) int {
	added := 0
	for _, item := range items {
		if strings.TrimSpace(item.ItemName()) == "" {
			continue
		}
		id := item.ItemID()
		if _, ok := c.index[id]; ok {
			continue
		}
		c.index[id] = struct{}{}
		c.items = append(c.items, item)
		added++
	}
	return added
}

// Contains reports whether an item with id is present.
func (c *Collection[T]) Contains(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[id]
	return ok
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a copy of the items in insertion order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Reset empties the collection.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.index = make(map[int]struct{})
}
