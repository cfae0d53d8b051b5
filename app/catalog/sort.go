package catalog

import (
	"sort"

	"github.com/driverperks/catalog/app/rules"
	"github.com/driverperks/catalog/app/search"
)

// sortItems applies the caller-facing sort locally. Best-match and
// newly-listed keep upstream order (with curated items already placed by
// the composer); the price sorts reorder the full composed page. Stable,
// so equal prices keep their composed order.
func sortItems(items []search.Item, sortToken string) {
	switch sortToken {
	case search.SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return lessByPrice(&items[i], &items[j], true)
		})
	case search.SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return lessByPrice(&items[i], &items[j], false)
		})
	}
}

// lessByPrice orders priced items before unpriced ones in either direction.
func lessByPrice(a, b *search.Item, asc bool) bool {
	switch {
	case a.Price == nil && b.Price == nil:
		return false
	case a.Price == nil:
		return false
	case b.Price == nil:
		return true
	}
	if asc {
		return *a.Price < *b.Price
	}
	return *a.Price > *b.Price
}

// filterPriceBand re-applies the merged band to the composed page, since
// curated items enter after the upstream post-filter. Unpriced items pass.
func filterPriceBand(items []search.Item, band rules.PriceBand) []search.Item {
	if band.Min == nil && band.Max == nil {
		return items
	}
	kept := items[:0]
	for i := range items {
		p := items[i].Price
		if p != nil {
			if band.Min != nil && *p < *band.Min {
				continue
			}
			if band.Max != nil && *p > *band.Max {
				continue
			}
		}
		kept = append(kept, items[i])
	}
	return kept
}

// filterPointsRange drops items outside the requested points window.
// Items without points are dropped only when a filter is active, since
// their cost is unknown.
func filterPointsRange(items []search.Item, min, max *int64) []search.Item {
	if min == nil && max == nil {
		return items
	}
	kept := items[:0]
	for i := range items {
		pts := items[i].Points
		if pts == nil {
			continue
		}
		if min != nil && *pts < *min {
			continue
		}
		if max != nil && *pts > *max {
			continue
		}
		kept = append(kept, items[i])
	}
	return kept
}
