package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/digi-client/pkg/collection"
	"github.com/Sternrassler/digi-client/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Matcher decides whether a listing item belongs to the filtered feed, given
// its detail payload, and returns the item to merge.
type Matcher[T, D any] func(item T, detail D) (T, bool)

// FilteredFeed pages through a superset listing and keeps only the items
// whose detail resource matches. Details are fetched in sequential
// sub-batches of Config.BatchSize, concurrently within a sub-batch, and every
// sub-batch is merged as soon as it resolves.
type FilteredFeed[T collection.Item, D any] struct {
	name   string
	config Config
	source PageSource[T]
	detail collection.FetchFunc[D]
	match  Matcher[T, D]
	accept func(T) bool
	logger zerolog.Logger

	mu     sync.Mutex
	cursor *Cursor
	items  *collection.Collection[T]
	total  int
	err    error
}

// NewFilteredFeed creates a filtered feed in Idle(1). accept may be nil.
func NewFilteredFeed[T collection.Item, D any](
	name string,
	source PageSource[T],
	detail collection.FetchFunc[D],
	match Matcher[T, D],
	config Config,
	accept func(T) bool,
) *FilteredFeed[T, D] {
	config = config.normalize()
	return &FilteredFeed[T, D]{
		name:   name,
		config: config,
		source: source,
		detail: detail,
		match:  match,
		accept: accept,
		logger: logging.FeedLogger(name),
		cursor: NewCursor(config.PageSize),
		items:  collection.New[T](),
	}
}

// LoadMore handles a scroll-threshold signal for the next page.
func (f *FilteredFeed[T, D]) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	ticket, ok := f.cursor.Begin()
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, f.fetch(ctx, ticket)
}

// LoadPage requests a specific page. Processed pages, a page request while
// another is in flight, and requests after exhaustion issue no fetch.
func (f *FilteredFeed[T, D]) LoadPage(ctx context.Context, page int) (bool, error) {
	f.mu.Lock()
	ticket, ok := f.cursor.BeginPage(page)
	f.mu.Unlock()
	if !ok {
		f.logger.Debug().Int("page", page).Msg("Page request ignored")
		return false, nil
	}
	return true, f.fetch(ctx, ticket)
}

// Refresh clears the collection and reloads page 1.
func (f *FilteredFeed[T, D]) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.cursor.Reset()
	f.items.Reset()
	f.total = 0
	f.err = nil
	ticket, _ := f.cursor.Begin()
	f.mu.Unlock()
	return f.fetch(ctx, ticket)
}

func (f *FilteredFeed[T, D]) fetch(ctx context.Context, t Ticket) error {
	start := time.Now()

	pageCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	res, err := f.source(pageCtx, t.Page, f.config.PageSize)
	cancel()

	f.mu.Lock()
	if err != nil {
		defer f.mu.Unlock()
		if !f.cursor.Fail(t) {
			pagesFetchedTotal.WithLabelValues(f.name, "discarded").Inc()
			return nil
		}
		pagesFetchedTotal.WithLabelValues(f.name, "error").Inc()
		if t.Page == 1 {
			f.err = firstPageError(err)
			f.logger.Warn().Err(err).Msg("First page fetch failed")
			return f.err
		}
		f.logger.Warn().Err(err).Int("page", t.Page).Msg("Page fetch failed")
		return nil
	}
	if !f.cursor.Current(t) {
		f.mu.Unlock()
		pagesFetchedTotal.WithLabelValues(f.name, "discarded").Inc()
		return nil
	}
	if t.Page == 1 {
		f.total = res.Total
		f.err = nil
	}
	if len(res.Items) == 0 {
		f.cursor.Complete(t, false)
		f.mu.Unlock()
		pagesFetchedTotal.WithLabelValues(f.name, "empty").Inc()
		return nil
	}
	f.mu.Unlock()

	matched := 0
	for lo := 0; lo < len(res.Items); lo += f.config.BatchSize {
		hi := min(lo+f.config.BatchSize, len(res.Items))

		kept := f.filterBatch(ctx, res.Items[lo:hi])

		f.mu.Lock()
		if !f.cursor.Current(t) {
			f.mu.Unlock()
			pagesFetchedTotal.WithLabelValues(f.name, "discarded").Inc()
			return nil
		}
		matched += f.items.Merge(kept...)
		f.mu.Unlock()
	}

	f.mu.Lock()
	completed := f.cursor.Complete(t, res.HasMore)
	f.mu.Unlock()
	if !completed {
		pagesFetchedTotal.WithLabelValues(f.name, "discarded").Inc()
		return nil
	}
	pagesFetchedTotal.WithLabelValues(f.name, "ok").Inc()

	f.logger.Debug().
		Int("page", t.Page).
		Int("scanned", len(res.Items)).
		Int("matched", matched).
		Bool("has_more", res.HasMore).
		Dur("duration", time.Since(start)).
		Msg("Filtered page merged")

	return nil
}

// filterBatch looks up every detail of batch concurrently and returns the
// matches in batch order.
func (f *FilteredFeed[T, D]) filterBatch(ctx context.Context, batch []T) []T {
	batchCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	results := make([]T, len(batch))
	ok := make([]bool, len(batch))

	var g errgroup.Group
	for i, item := range batch {
		i, item := i, item
		g.Go(func() error {
			d, err := f.detail(batchCtx, item.ItemID())
			if err != nil {
				detailLookupsTotal.WithLabelValues(f.name, "error").Inc()
				f.logger.Debug().Err(err).Int("id", item.ItemID()).Msg("Detail lookup failed")
				return nil
			}
			merged, match := f.match(item, d)
			if !match || (f.accept != nil && !f.accept(merged)) {
				detailLookupsTotal.WithLabelValues(f.name, "miss").Inc()
				return nil
			}
			detailLookupsTotal.WithLabelValues(f.name, "match").Inc()
			results[i] = merged
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]T, 0, len(batch))
	for i := range results {
		if ok[i] {
			kept = append(kept, results[i])
		}
	}
	return kept
}

// Items returns the merged matches.
func (f *FilteredFeed[T, D]) Items() []T { return f.items.Items() }

// Total returns the superset size reported with page 1.
func (f *FilteredFeed[T, D]) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// HasMore reports whether further superset pages may exist.
func (f *FilteredFeed[T, D]) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor.HasMore()
}

// Loading reports whether a page is being processed.
func (f *FilteredFeed[T, D]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor.Phase() == Fetching
}

// Err returns the screen-level error, set when the first page failed.
func (f *FilteredFeed[T, D]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Snapshot returns the feed state for rendering.
func (f *FilteredFeed[T, D]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshot(f.items, f.cursor, f.total, f.err)
}
