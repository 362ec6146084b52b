package pagination

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detail struct {
	ID      int
	TypeIDs []int
	Names   []string
}

func matchType(typeID int) Matcher[entry, detail] {
	return func(item entry, d detail) (entry, bool) {
		for _, id := range d.TypeIDs {
			if id == typeID {
				item.Types = d.Names
				return item, true
			}
		}
		return item, false
	}
}

func filteredConfig() Config {
	return Config{PageSize: 50, BatchSize: 10, Timeout: 5 * time.Second}
}

func TestFilteredFeed_KeepsOnlyMatches(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = PageResult[entry]{Items: entries(1, 50), HasMore: true, Total: 1400}

	var detailCalls int64
	details := func(_ context.Context, id int) (detail, error) {
		atomic.AddInt64(&detailCalls, 1)
		switch id {
		case 4, 23, 47:
			return detail{ID: id, TypeIDs: []int{2, 5}, Names: []string{"Dragon", "Reptile"}}, nil
		case 30:
			return detail{}, errors.New("detail unavailable")
		}
		return detail{ID: id, TypeIDs: []int{1}}, nil
	}

	feed := NewFilteredFeed("type", src.fetch, details, matchType(5), filteredConfig(), nil)
	issued, err := feed.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, issued)

	items := feed.Items()
	assert.Equal(t, []int{4, 23, 47}, entryIDs(items))
	for _, it := range items {
		assert.Equal(t, []string{"Dragon", "Reptile"}, it.Types)
	}
	assert.Equal(t, 1400, feed.Total())
	assert.Equal(t, int64(50), atomic.LoadInt64(&detailCalls))
	assert.True(t, feed.HasMore())
}

func TestFilteredFeed_DuplicatePageRequestIsFree(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = PageResult[entry]{Items: entries(1, 10), HasMore: true}

	var detailCalls int64
	details := func(_ context.Context, id int) (detail, error) {
		atomic.AddInt64(&detailCalls, 1)
		return detail{ID: id, TypeIDs: []int{5}}, nil
	}

	feed := NewFilteredFeed("type", src.fetch, details, matchType(5), filteredConfig(), nil)
	ctx := context.Background()

	issued, err := feed.LoadPage(ctx, 1)
	require.NoError(t, err)
	require.True(t, issued)
	before := feed.Items()

	issued, err = feed.LoadPage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, 1, src.total())
	assert.Equal(t, int64(10), atomic.LoadInt64(&detailCalls))
	assert.Equal(t, before, feed.Items())
}

func TestFilteredFeed_BoundedSubBatches(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = PageResult[entry]{Items: entries(1, 45), HasMore: false}

	var inFlight, peak int64
	details := func(_ context.Context, id int) (detail, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		defer atomic.AddInt64(&inFlight, -1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return detail{ID: id, TypeIDs: []int{5}}, nil
	}

	feed := NewFilteredFeed("type", src.fetch, details, matchType(5), filteredConfig(), nil)
	_, err := feed.LoadMore(context.Background())
	require.NoError(t, err)

	assert.Len(t, feed.Items(), 45)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(10))
	assert.False(t, feed.HasMore())
}

func TestFilteredFeed_MergesEachSubBatchIncrementally(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = PageResult[entry]{Items: entries(1, 20), HasMore: false}

	release := make(chan struct{})
	details := func(_ context.Context, id int) (detail, error) {
		if id > 10 {
			<-release
		}
		return detail{ID: id, TypeIDs: []int{5}}, nil
	}

	feed := NewFilteredFeed("type", src.fetch, details, matchType(5), filteredConfig(), nil)

	done := make(chan struct{})
	go func() {
		_, _ = feed.LoadMore(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return len(feed.Items()) == 10 }, time.Second, time.Millisecond)
	assert.True(t, feed.Loading())

	close(release)
	<-done
	assert.Len(t, feed.Items(), 20)
	assert.False(t, feed.Loading())
}

func TestFilteredFeed_DedupAcrossShiftedPages(t *testing.T) {
	src := newFakeSource()
	src.pages[1] = PageResult[entry]{Items: entries(1, 10), HasMore: true}
	src.pages[2] = PageResult[entry]{Items: entries(8, 17), HasMore: false}

	details := func(_ context.Context, id int) (detail, error) {
		return detail{ID: id, TypeIDs: []int{5}}, nil
	}

	feed := NewFilteredFeed("type", src.fetch, details, matchType(5), filteredConfig(), nil)
	ctx := context.Background()
	_, _ = feed.LoadMore(ctx)
	_, _ = feed.LoadMore(ctx)

	assert.Equal(t, entryIDs(entries(1, 17)), entryIDs(feed.Items()))

	issued, _ := feed.LoadMore(ctx)
	assert.False(t, issued)
}

func TestFilteredFeed_EmptyPageAndFailures(t *testing.T) {
	src := newFakeSource()
	src.fails[1] = errors.New("dns failure")

	details := func(_ context.Context, id int) (detail, error) {
		return detail{ID: id, TypeIDs: []int{5}}, nil
	}

	feed := NewFilteredFeed("type", src.fetch, details, matchType(5), filteredConfig(), nil)
	ctx := context.Background()

	_, err := feed.LoadMore(ctx)
	require.ErrorIs(t, err, ErrFirstPage)
	assert.True(t, feed.HasMore())

	src.mu.Lock()
	delete(src.fails, 1)
	src.pages[1] = PageResult[entry]{Items: entries(1, 3), HasMore: true, Total: 3}
	src.pages[2] = PageResult[entry]{HasMore: true}
	src.mu.Unlock()

	require.NoError(t, feed.Refresh(ctx))
	assert.NoError(t, feed.Err())
	assert.Len(t, feed.Items(), 3)

	_, err = feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, feed.HasMore(), "empty page terminates the feed")
	assert.Equal(t, 3, feed.Snapshot().Total)
}
