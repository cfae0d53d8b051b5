package search

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/driverperks/catalog/app/rules"
)

// queryPlan is the upstream-facing translation of one search request.
type queryPlan struct {
	params url.Values
	phrase string
	// priceLocalOnly is set when the upstream price filter had to be
	// omitted (price sorts) and the band is enforced by the post-filter
	// over a widened window instead.
	priceLocalOnly bool
	window         int
	offset         int
}

// upstream sort tokens
var sortTokens = map[string]string{
	SortBestMatch:   "",
	SortPriceAsc:    "price",
	SortPriceDesc:   "-price",
	SortNewlyListed: "newlyListed",
}

// buildPlan normalizes a request into upstream query parameters. Returns
// a nil plan with a diagnostic when the upstream's precondition (keyword
// or category) cannot be met.
func buildPlan(req Request) (*queryPlan, *Debug) {
	rs := req.RuleSet

	phrase := buildPhrase(req)
	categories := rs.IncludeCategories
	if rs.ExcludeExplicit {
		var dropped int
		categories, dropped = dropAdultCategories(categories)
		if dropped > 0 {
			slog.Info("Dropped adult categories from query", "count", dropped)
		}
	}

	if phrase == "" && len(categories) == 0 {
		return nil, &Debug{Reason: "no keyword or category constraint; upstream requires at least one"}
	}

	if req.PageSize <= 0 {
		req.PageSize = 50
	}
	if req.Page <= 0 {
		req.Page = 1
	}

	plan := &queryPlan{
		params: url.Values{},
		phrase: phrase,
		window: req.PageSize,
		offset: (req.Page - 1) * req.PageSize,
	}

	if phrase != "" {
		plan.params.Set("q", phrase)
	}
	if len(categories) > 0 {
		plan.params.Set("category_ids", strings.Join(categories, ","))
	}

	var filters []string

	// The upstream's combination of a price filter with a price sort is
	// unreliable (errors or wrong results for some ranges). Under price
	// sorts the band is enforced locally over a doubled window instead.
	hasBand := rs.Price.Min != nil || rs.Price.Max != nil
	priceSort := req.Sort == SortPriceAsc || req.Sort == SortPriceDesc
	if hasBand && priceSort {
		plan.priceLocalOnly = true
		plan.window = req.PageSize * 2
	} else if hasBand {
		filters = append(filters, priceFilter(rs.Price))
	}

	if rs.FreeShippingOnly {
		filters = append(filters, "maxDeliveryCost:0")
	}
	if rs.BuyItNowOnly {
		filters = append(filters, "buyingOptions:{FIXED_PRICE}")
	}
	if len(rs.Conditions) > 0 {
		filters = append(filters, "conditions:{"+strings.Join(rs.Conditions, "|")+"}")
	}
	if len(filters) > 0 {
		plan.params.Set("filter", strings.Join(filters, ","))
	}

	if token, ok := sortTokens[req.Sort]; ok && token != "" {
		plan.params.Set("sort", token)
	}

	plan.params.Set("limit", strconv.Itoa(plan.window))
	plan.params.Set("offset", strconv.Itoa(plan.offset))

	return plan, nil
}

// buildPhrase collapses the must-keyword set, the caller overlay, and the
// brand includes into one search phrase. Brand terms are appended to
// broaden relevance; exact enforcement happens in the post-filter.
func buildPhrase(req Request) string {
	var parts []string
	seen := make(map[string]struct{})
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		parts = append(parts, term)
	}

	for _, kw := range req.RuleSet.MustKeywords {
		add(kw)
	}
	add(req.Keyword)
	for _, brand := range req.RuleSet.IncludeBrands {
		add(brand)
	}

	return strings.Join(parts, " ")
}

func dropAdultCategories(ids []string) ([]string, int) {
	kept := ids[:0:0]
	dropped := 0
	for _, id := range ids {
		if _, bad := adultCategoryIDs[id]; bad {
			dropped++
			continue
		}
		kept = append(kept, id)
	}
	return kept, dropped
}

func priceFilter(band rules.PriceBand) string {
	switch {
	case band.Min != nil && band.Max != nil:
		return fmt.Sprintf("price:[%s..%s]", formatPrice(*band.Min), formatPrice(*band.Max))
	case band.Min != nil:
		return fmt.Sprintf("price:[%s..]", formatPrice(*band.Min))
	default:
		return fmt.Sprintf("price:[..%s]", formatPrice(*band.Max))
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
