package catalog

import (
	"context"
	"log/slog"

	"github.com/driverperks/catalog/app/cache"
	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/search"
)

// Composer overlays curated overrides onto a raw upstream page. Order is
// fixed: pinned items by rank, then included items, then the raw
// remainder. Blacklisted ids never appear, excluded ids are dropped from
// the raw portion, and no id is emitted twice.
type Composer struct {
	curated   database.CuratedItemRepository
	blacklist *blacklistCache
	lookup    ItemLookup
}

type workItem struct {
	item     *search.Item
	enriched bool
}

func NewComposer(curated database.CuratedItemRepository, store cache.Store, lookup ItemLookup) *Composer {
	return &Composer{
		curated:   curated,
		blacklist: newBlacklistCache(store, curated),
		lookup:    lookup,
	}
}

// Run composes one page. excludePinned suppresses the pinned block, used
// when the caller is browsing a specific category rather than the scope's
// default view.
func (c *Composer) Run(ctx context.Context, scope string, raw []search.Item, excludePinned bool) ([]search.Item, error) {
	banned := c.blacklist.get(ctx, scope)

	rawByID := make(map[string]*search.Item, len(raw))
	for i := range raw {
		rawByID[raw[i].ID] = &raw[i]
	}

	emitted := make(map[string]struct{})
	out := make([]search.Item, 0, len(raw))

	if !excludePinned {
		pinned, err := c.pinnedItems(ctx, scope, rawByID, banned)
		if err != nil {
			return nil, err
		}
		for _, item := range pinned {
			emitted[item.ID] = struct{}{}
			out = append(out, item)
		}
	}

	included, err := c.curated.ListByKind(scope, database.CuratedIncluded)
	if err != nil {
		return nil, err
	}
	for _, cur := range included {
		if _, banned := banned[cur.ItemID]; banned {
			continue
		}
		if _, seen := emitted[cur.ItemID]; seen {
			continue
		}
		item := itemFromCurated(cur, rawByID)
		emitted[item.ID] = struct{}{}
		out = append(out, item)
	}

	excluded, err := c.curated.ListIDsByKind(scope, database.CuratedExcluded)
	if err != nil {
		return nil, err
	}
	excludedSet := toSet(excluded)

	for i := range raw {
		id := raw[i].ID
		if _, seen := emitted[id]; seen {
			continue
		}
		if _, drop := excludedSet[id]; drop {
			continue
		}
		if _, drop := banned[id]; drop {
			continue
		}
		emitted[id] = struct{}{}
		out = append(out, raw[i])
	}

	return out, nil
}

// PinnedOnly serves the recommended-only special mode: the pinned list is
// the entire catalog, refreshed through single-item lookups.
func (c *Composer) PinnedOnly(ctx context.Context, scope string) ([]search.Item, error) {
	banned := c.blacklist.get(ctx, scope)
	return c.pinnedItems(ctx, scope, nil, banned)
}

func (c *Composer) pinnedItems(ctx context.Context, scope string, rawByID map[string]*search.Item, banned map[string]struct{}) ([]search.Item, error) {
	pinned, err := c.curated.ListByKind(scope, database.CuratedPinned)
	if err != nil {
		return nil, err
	}

	items := make([]search.Item, 0, len(pinned))
	var missing []*workItem
	for _, cur := range pinned {
		if _, drop := banned[cur.ItemID]; drop {
			continue
		}
		item := itemFromCurated(cur, rawByID)
		item.Pinned = true
		item.Rank = cur.Rank
		items = append(items, item)
		if items[len(items)-1].Price == nil || items[len(items)-1].Title == "" {
			missing = append(missing, &workItem{item: &items[len(items)-1]})
		}
	}

	enrich(ctx, c.lookup, missing)
	for _, w := range missing {
		if !w.enriched && w.item.Price == nil {
			slog.Debug("Pinned item served without price", "scope", scope, "item_id", w.item.ID)
		}
	}

	return items, nil
}

// itemFromCurated prefers the live raw item when the id appeared in the
// upstream page, falling back to the stored display snapshot.
func itemFromCurated(cur database.CuratedItem, rawByID map[string]*search.Item) search.Item {
	if live, ok := rawByID[cur.ItemID]; ok {
		return *live
	}
	return search.Item{
		ID:       cur.ItemID,
		Title:    cur.Title,
		ImageURL: cur.ImageURL,
		Price:    cur.Price,
		InStock:  true,
	}
}
