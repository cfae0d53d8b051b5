package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/driverperks/catalog/app/rules"
)

// The upstream is not trusted to enforce most constraints, so every page
// is re-screened locally regardless of which filters went into the query.

var fold = cases.Fold()

// PostFilter drops items that violate the rule set. Applied to every
// upstream page and to pinned items served in recommended-only mode.
func PostFilter(items []Item, rs *rules.EffectiveRuleSet) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if Matches(&item, rs) {
			out = append(out, item)
		}
	}
	return out
}

// Matches reports whether a single item satisfies the rule set.
func Matches(item *Item, rs *rules.EffectiveRuleSet) bool {
	title := fold.String(item.Title)

	for _, id := range rs.ExcludeCategories {
		if item.CategoryID == id {
			return false
		}
	}

	for _, term := range rs.MustKeywords {
		if !strings.Contains(title, fold.String(term)) {
			return false
		}
	}
	for _, term := range rs.MustNotKeywords {
		if strings.Contains(title, fold.String(term)) {
			return false
		}
	}

	if len(rs.IncludeBrands) > 0 && !brandMatchesAny(item, title, rs.IncludeBrands) {
		return false
	}
	if brandMatchesAny(item, title, rs.ExcludeBrands) {
		return false
	}

	if item.Price != nil {
		if rs.Price.Min != nil && *item.Price < *rs.Price.Min {
			return false
		}
		if rs.Price.Max != nil && *item.Price > *rs.Price.Max {
			return false
		}
	}

	if rs.FreeShippingOnly && !item.FreeShipping {
		return false
	}
	if rs.BuyItNowOnly && !item.BuyItNow {
		return false
	}
	if rs.MaxHandlingDays != nil && item.HandlingDays != nil && *item.HandlingDays > *rs.MaxHandlingDays {
		return false
	}
	if rs.MinFeedbackScore != nil && item.SellerFeedbackScore < *rs.MinFeedbackScore {
		return false
	}
	if rs.MinPositivePercent != nil && item.SellerPositivePercent < *rs.MinPositivePercent {
		return false
	}

	// Items without condition metadata pass the allow-list: the upstream
	// omits the field on many listings and dropping them all would gut
	// otherwise-valid pages.
	if len(rs.Conditions) > 0 && item.Condition != "" && !containsFolded(rs.Conditions, item.Condition) {
		return false
	}

	if rs.ExcludeExplicit && isExplicit(item, title) {
		return false
	}

	return true
}

func brandMatchesAny(item *Item, foldedTitle string, brands []string) bool {
	itemBrand := fold.String(item.Brand)
	for _, brand := range brands {
		b := fold.String(brand)
		if b == "" {
			continue
		}
		if itemBrand == b || strings.Contains(foldedTitle, b) {
			return true
		}
	}
	return false
}

func containsFolded(haystack []string, needle string) bool {
	n := fold.String(needle)
	for _, s := range haystack {
		if fold.String(s) == n {
			return true
		}
	}
	return false
}

func isExplicit(item *Item, foldedTitle string) bool {
	if _, bad := adultCategoryIDs[item.CategoryID]; bad {
		return true
	}
	for _, term := range explicitTerms {
		if strings.Contains(foldedTitle, term) {
			return true
		}
	}
	return false
}
