// Package browse composes the client, collection and pagination packages into
// the screens of the Digimon browser: the catalog, the level and type
// indexes, the per-level and per-type feeds and the detail page.
package browse

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/digi-client/pkg/client"
	"github.com/Sternrassler/digi-client/pkg/collection"
	"github.com/Sternrassler/digi-client/pkg/digimon"
	"github.com/Sternrassler/digi-client/pkg/logging"
	"github.com/Sternrassler/digi-client/pkg/pagination"
	"github.com/rs/zerolog"
)

// API is the part of *client.Client the screens use.
type API interface {
	Digimon(ctx context.Context, id int) (*digimon.Digimon, error)
	DigimonPage(ctx context.Context, q client.PageQuery) (*digimon.Page, error)
	Level(ctx context.Context, id int) (*digimon.Level, error)
	Type(ctx context.Context, id int) (*digimon.Type, error)
}

// Options sizes the screens.
type Options struct {
	CatalogSize int
	LevelCount  int
	TypeCount   int

	// Concurrency caps bulk fan-out (0 = unbounded).
	Concurrency int

	LevelFeed pagination.Config
	TypeFeed  pagination.Config

	// DetailCache memoizes detail lookups within one type feed.
	DetailCache bool
}

// DefaultOptions matches the public API's catalog.
func DefaultOptions() Options {
	return Options{
		CatalogSize: 1000,
		LevelCount:  9,
		TypeCount:   30,
		LevelFeed:   pagination.Config{PageSize: 20, BatchSize: 10, Timeout: 15 * time.Second},
		TypeFeed:    pagination.Config{PageSize: 50, BatchSize: 10, Timeout: 15 * time.Second},
	}
}

// Session is a mounted feed screen.
type Session interface {
	LoadMore(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
	Snapshot() pagination.Snapshot[digimon.Summary]
}

// Browser builds screens on top of an API.
type Browser struct {
	api    API
	opts   Options
	logger zerolog.Logger
}

// New creates a Browser.
func New(api API, opts Options) *Browser {
	return &Browser{
		api:    api,
		opts:   opts,
		logger: logging.NewLogger(logging.ComponentBrowse),
	}
}

// Options returns the configured sizes.
func (b *Browser) Options() Options {
	return b.opts
}

// Catalog bulk-fetches IDs 1..CatalogSize and returns the listable ones in ID
// order. collection.ErrAllFailed means nothing could be loaded.
func (b *Browser) Catalog(ctx context.Context) ([]digimon.Summary, error) {
	mons, err := collection.FetchByID(ctx, b.opts.CatalogSize, b.api.Digimon, collection.BulkOptions[*digimon.Digimon]{
		Concurrency: b.opts.Concurrency,
		Accept:      (*digimon.Digimon).Listable,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	out := make([]digimon.Summary, 0, len(mons))
	for _, d := range mons {
		out = append(out, d.Summary())
	}
	b.logger.Debug().Int("items", len(out)).Msg("Catalog loaded")
	return out, nil
}

// SearchCatalog filters a loaded catalog by case-insensitive name substring.
func SearchCatalog(items []digimon.Summary, query string) []digimon.Summary {
	return collection.Search(items, query)
}

// Levels bulk-fetches the level index sorted by ID.
func (b *Browser) Levels(ctx context.Context) ([]digimon.Level, error) {
	levels, err := collection.FetchByID(ctx, b.opts.LevelCount, deref(b.api.Level), collection.BulkOptions[digimon.Level]{
		Concurrency: b.opts.Concurrency,
		Sorted:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	return levels, nil
}

// Types bulk-fetches the type index sorted by ID.
func (b *Browser) Types(ctx context.Context) ([]digimon.Type, error) {
	types, err := collection.FetchByID(ctx, b.opts.TypeCount, deref(b.api.Type), collection.BulkOptions[digimon.Type]{
		Concurrency: b.opts.Concurrency,
		Sorted:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("types: %w", err)
	}
	return types, nil
}

// Detail loads the detail page of one Digimon.
func (b *Browser) Detail(ctx context.Context, id int) (digimon.DetailView, error) {
	d, err := b.api.Digimon(ctx, id)
	if err != nil {
		return digimon.DetailView{}, fmt.Errorf("digimon %d: %w", id, err)
	}
	return d.View(), nil
}

func deref[T any](fetch func(context.Context, int) (*T, error)) collection.FetchFunc[T] {
	return func(ctx context.Context, id int) (T, error) {
		v, err := fetch(ctx, id)
		if err != nil {
			var zero T
			return zero, err
		}
		return *v, nil
	}
}
