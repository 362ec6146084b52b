package collection

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Sternrassler/digi-client/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// ErrAllFailed is returned by FetchByID when not a single fetch succeeded.
var ErrAllFailed = errors.New("every fetch in the batch failed")

// FetchFunc loads one resource by ID.
type FetchFunc[T any] func(ctx context.Context, id int) (T, error)

// BulkOptions tunes FetchByID.
type BulkOptions[T any] struct {
	// Concurrency caps in-flight fetches. Zero means unbounded.
	Concurrency int

	// Sorted orders the result by ascending ItemID instead of request order.
	Sorted bool

	// Accept is an extra validity check on top of the name check.
	Accept func(T) bool
}

// FetchByID fetches IDs 1..n concurrently. A failing fetch leaves a gap and
// never aborts the batch; the result holds only valid items. ErrAllFailed is
// returned when every one of the n fetches failed.
func FetchByID[T Item](ctx context.Context, n int, fetch FetchFunc[T], opts BulkOptions[T]) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}

	logger := logging.NewLogger(logging.ComponentCollection)
	start := time.Now()
	slots := make([]T, n)
	ok := make([]bool, n)
	failed := make([]bool, n)

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i := 0; i < n; i++ {
		id := i + 1
		g.Go(func() error {
			item, err := fetch(ctx, id)
			if err != nil {
				logger.Debug().Err(err).Int("id", id).Msg("Bulk fetch item failed")
				failed[id-1] = true
				return nil
			}
			slots[id-1] = item
			ok[id-1] = true
			return nil
		})
	}
	_ = g.Wait()

	var (
		result   []T
		failures int
	)
	for i := range slots {
		switch {
		case failed[i]:
			failures++
			BulkFetchItems.WithLabelValues("failed").Inc()
		case ok[i] && valid(slots[i], opts.Accept):
			result = append(result, slots[i])
			BulkFetchItems.WithLabelValues("ok").Inc()
		default:
			BulkFetchItems.WithLabelValues("invalid").Inc()
		}
	}

	if opts.Sorted {
		sort.SliceStable(result, func(a, b int) bool {
			return result[a].ItemID() < result[b].ItemID()
		})
	}

	logger.Debug().
		Int("requested", n).
		Int("valid", len(result)).
		Int("failed", failures).
		Dur("duration", time.Since(start)).
		Msg("Bulk fetch complete")

	if failures == n {
		return nil, ErrAllFailed
	}
	return result, nil
}

func valid[T Item](item T, accept func(T) bool) bool {
	if item.ItemName() == "" {
		return false
	}
	return accept == nil || accept(item)
}
