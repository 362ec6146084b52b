package collection

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DetailCache memoizes detail payloads by ID for the lifetime of one session.
// Detail resources are immutable per ID, so a hit never goes stale within a
// session. Concurrent lookups of the same ID share a single fetch. Failures
// are not cached.
type DetailCache[T any] struct {
	mu      sync.RWMutex
	entries map[int]T
	group   singleflight.Group
}

// NewDetailCache creates an empty cache.
func NewDetailCache[T any]() *DetailCache[T] {
	return &DetailCache[T]{entries: make(map[int]T)}
}

// Get returns the cached payload for id or loads it with fetch. A shared
// lookup ignores the caller's cancellation but keeps its deadline; a
// cancelled caller returns ctx.Err() while the lookup completes for the rest.
func (c *DetailCache[T]) Get(ctx context.Context, id int, fetch FetchFunc[T]) (T, error) {
	c.mu.RLock()
	v, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		DetailCacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	DetailCacheLookups.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(strconv.Itoa(id), func() (any, error) {
		fetchCtx, cancel := detach(ctx)
		defer cancel()

		v, err := fetch(fetchCtx, id)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[id] = v
		c.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithCancel(detached)
}

// Wrap returns a FetchFunc that goes through the cache.
func (c *DetailCache[T]) Wrap(fetch FetchFunc[T]) FetchFunc[T] {
	return func(ctx context.Context, id int) (T, error) {
		return c.Get(ctx, id, fetch)
	}
}

// Len returns the number of cached payloads.
func (c *DetailCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
