// Package pagination provides incremental, scroll-driven loading of paged
// Digimon API listings.
//
// A Cursor is the explicit state machine behind every list:
//
//	Idle(page) --Begin--> Fetching(page) --Complete(hasMore)--> Idle(page+1)
//	                                      --Complete(!hasMore)-> Done
//	                                      --Fail--------------> Idle(page)
//
// Pages that completed are recorded in a processed-page set so that a
// duplicate scroll-threshold signal never reaches the network twice. Reset
// starts a new generation: results of fetches begun before it are discarded.
//
// Two feeds build on the cursor:
//
//	// Infinite scroll: page 1 replaces, later pages append.
//	feed := pagination.NewFeed("level", source, pagination.DefaultConfig(), nil)
//	feed.LoadMore(ctx)
//
//	// Filter-and-merge: every page item is checked against its detail
//	// resource in bounded sub-batches; matches merge incrementally.
//	typed := pagination.NewFilteredFeed("type", source, detail, match, cfg, nil)
//	typed.LoadMore(ctx)
//
// Error handling:
//   - A first-page failure is returned (wrapped with ErrFirstPage) and kept as
//     the feed's screen-level error until Refresh succeeds.
//   - A later-page failure is logged and swallowed; the collection is kept and
//     the cursor stays on the failed page.
//   - A failed detail lookup counts as a non-match.
package pagination
