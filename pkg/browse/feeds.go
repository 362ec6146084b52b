package browse

import (
	"context"
	"fmt"

	"github.com/Sternrassler/digi-client/pkg/client"
	"github.com/Sternrassler/digi-client/pkg/collection"
	"github.com/Sternrassler/digi-client/pkg/digimon"
	"github.com/Sternrassler/digi-client/pkg/pagination"
)

// LevelFeed mounts the infinite-scroll list of one level. Nothing is fetched
// until the first LoadMore.
func (b *Browser) LevelFeed(level string) *pagination.Feed[digimon.Summary] {
	return pagination.NewFeed(
		"level",
		b.pageSource(level),
		b.opts.LevelFeed,
		digimon.Summary.Listable,
	)
}

// TypeFeed mounts the filtered list of one type: it pages through the whole
// catalog and keeps the entries whose detail lists typeID.
func (b *Browser) TypeFeed(typeID int) *pagination.FilteredFeed[digimon.Summary, *digimon.Digimon] {
	detail := collection.FetchFunc[*digimon.Digimon](b.api.Digimon)
	if b.opts.DetailCache {
		detail = collection.NewDetailCache[*digimon.Digimon]().Wrap(detail)
	}

	return pagination.NewFilteredFeed(
		fmt.Sprintf("type-%d", typeID),
		b.pageSource(""),
		detail,
		matchType(typeID),
		b.opts.TypeFeed,
		digimon.Summary.Listable,
	)
}

func (b *Browser) pageSource(level string) pagination.PageSource[digimon.Summary] {
	return func(ctx context.Context, page, pageSize int) (pagination.PageResult[digimon.Summary], error) {
		p, err := b.api.DigimonPage(ctx, client.PageQuery{Page: page, PageSize: pageSize, Level: level})
		if err != nil {
			return pagination.PageResult[digimon.Summary]{}, err
		}
		return pagination.PageResult[digimon.Summary]{
			Items:   p.Content,
			HasMore: p.Pageable.HasMore(),
			Total:   p.Pageable.TotalElements,
		}, nil
	}
}

// matchType keeps items whose detail lists typeID and copies the detail's
// type names onto them.
func matchType(typeID int) pagination.Matcher[digimon.Summary, *digimon.Digimon] {
	return func(item digimon.Summary, d *digimon.Digimon) (digimon.Summary, bool) {
		if d == nil || !d.HasType(typeID) {
			return item, false
		}
		item.Types = d.TypeNames()
		if item.Image == "" {
			item.Image = d.PrimaryImage()
		}
		return item, true
	}
}
