package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/digi-client/pkg/collection"
	"github.com/Sternrassler/digi-client/pkg/logging"
	"github.com/rs/zerolog"
)

// ErrFirstPage wraps the failure of a feed's first page. It is the only page
// failure surfaced to callers.
var ErrFirstPage = errors.New("first page failed")

// Config holds feed configuration
type Config struct {
	// PageSize is the fixed number of items requested per page
	PageSize int
	// BatchSize bounds concurrent detail lookups of a filtered feed
	BatchSize int
	// Timeout per page fetch (and per detail sub-batch)
	Timeout time.Duration
}

// DefaultConfig returns the infinite-scroll defaults
func DefaultConfig() Config {
	return Config{
		PageSize:  20,
		BatchSize: 10,
		Timeout:   15 * time.Second,
	}
}

func (c Config) normalize() Config {
	if c.PageSize <= 0 {
		c.PageSize = 20
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items   []T
	HasMore bool
	Total   int
}

// PageSource fetches one page of a listing.
type PageSource[T any] func(ctx context.Context, page, pageSize int) (PageResult[T], error)

// Snapshot is a point-in-time view of a feed for rendering.
type Snapshot[T any] struct {
	Items   []T    `json:"items"`
	Page    int    `json:"page"`
	Phase   string `json:"phase"`
	HasMore bool   `json:"hasMore"`
	Loading bool   `json:"loading"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
}

// Feed loads a paged listing one page per scroll-threshold signal. Page 1
// replaces the collection, later pages append to it.
type Feed[T collection.Item] struct {
	name   string
	config Config
	source PageSource[T]
	accept func(T) bool
	logger zerolog.Logger

	mu     sync.Mutex
	cursor *Cursor
	items  *collection.Collection[T]
	total  int
	err    error
}

// NewFeed creates a feed in Idle(1). accept may be nil.
func NewFeed[T collection.Item](name string, source PageSource[T], config Config, accept func(T) bool) *Feed[T] {
	config = config.normalize()
	return &Feed[T]{
		name:   name,
		config: config,
		source: source,
		accept: accept,
		logger: logging.FeedLogger(name),
		cursor: NewCursor(config.PageSize),
		items:  collection.New[T](),
	}
}

// LoadMore handles a scroll-threshold signal. It reports whether a fetch was
// issued; the error is non-nil only when the first page failed.
func (f *Feed[T]) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	ticket, ok := f.cursor.Begin()
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, f.fetch(ctx, ticket)
}

// Refresh resets the cursor and reloads page 1. The current items stay
// visible until page 1 replaces them.
func (f *Feed[T]) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.cursor.Reset()
	f.err = nil
	ticket, _ := f.cursor.Begin()
	f.mu.Unlock()
	return f.fetch(ctx, ticket)
}

func (f *Feed[T]) fetch(ctx context.Context, t Ticket) error {
	start := time.Now()

	pageCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	res, err := f.source(pageCtx, t.Page, f.config.PageSize)
	cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		if !f.cursor.Fail(t) {
			pagesFetchedTotal.WithLabelValues(f.name, "discarded").Inc()
			return nil
		}
		pagesFetchedTotal.WithLabelValues(f.name, "error").Inc()
		return f.pageFailed(t.Page, err)
	}

	if !f.cursor.Current(t) {
		pagesFetchedTotal.WithLabelValues(f.name, "discarded").Inc()
		return nil
	}

	if t.Page == 1 {
		f.err = nil
	}
	if len(res.Items) == 0 {
		f.cursor.Complete(t, false)
		pagesFetchedTotal.WithLabelValues(f.name, "empty").Inc()
		f.logger.Debug().Int("page", t.Page).Msg("Empty page, feed exhausted")
		return nil
	}

	items := filter(res.Items, f.accept)
	if t.Page == 1 {
		f.items.Replace(items)
		f.total = res.Total
	} else {
		f.items.Merge(items...)
	}
	f.cursor.Complete(t, res.HasMore)
	pagesFetchedTotal.WithLabelValues(f.name, "ok").Inc()

	f.logger.Debug().
		Int("page", t.Page).
		Int("items", len(items)).
		Bool("has_more", res.HasMore).
		Dur("duration", time.Since(start)).
		Msg("Page merged")

	return nil
}

// pageFailed records a page failure. Caller holds f.mu.
func (f *Feed[T]) pageFailed(page int, err error) error {
	if page == 1 {
		f.err = firstPageError(err)
		f.logger.Warn().Err(err).Msg("First page fetch failed")
		return f.err
	}
	f.logger.Warn().Err(err).Int("page", page).Msg("Page fetch failed")
	return nil
}

func firstPageError(err error) error {
	return fmt.Errorf("%w: %w", ErrFirstPage, err)
}

// Items returns the collection contents.
func (f *Feed[T]) Items() []T { return f.items.Items() }

// HasMore reports whether further pages may exist.
func (f *Feed[T]) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor.HasMore()
}

// Loading reports whether a page fetch is in flight.
func (f *Feed[T]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor.Phase() == Fetching
}

// Err returns the screen-level error, set when the first page failed.
func (f *Feed[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Snapshot returns the feed state for rendering.
func (f *Feed[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshot(f.items, f.cursor, f.total, f.err)
}

func snapshot[T collection.Item](items *collection.Collection[T], c *Cursor, total int, err error) Snapshot[T] {
	s := Snapshot[T]{
		Items:   items.Items(),
		Page:    c.Page(),
		Phase:   c.Phase().String(),
		HasMore: c.HasMore(),
		Loading: c.Phase() == Fetching,
		Total:   total,
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

func filter[T any](items []T, accept func(T) bool) []T {
	if accept == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if accept(item) {
			out = append(out, item)
		}
	}
	return out
}
