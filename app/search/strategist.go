package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/driverperks/catalog/app/rules"
)

// The upstream enforces a hard ceiling on how deep limit/offset paging
// can reach. Pages beyond it are approximated by synthesizing alternate
// queries that surface different subsets of the same corpus: each named
// strategy contributes its own ceiling-sized block of pages. Strategies
// only ever mutate the keyword phrase, the price band, or the sort token;
// category and safety constraints are untouchable. This is best-effort:
// items may repeat across strategy blocks and are not deduplicated
// globally.

// PageCeiling is the deepest page the upstream serves directly.
const PageCeiling = 100

var strategyNames = []string{
	"keyword-variation",
	"category-split",
	"price-split",
	"brand-variation",
	"sort-variation",
	"date-split",
	"condition-variation",
	"seller-variation",
	"location-variation",
}

// StrategyCount is the number of synthetic query strategies.
const StrategyCount = 9

// PagePlan is the deterministic mapping of a requested page onto either a
// direct upstream page or a (strategy, inner page) pair.
type PagePlan struct {
	Direct        bool
	StrategyIndex int
	StrategyName  string
	InnerPage     int
}

// PlanPage maps a target page onto a plan. Pages within the ceiling pass
// through; beyond it, each consecutive ceiling-sized block cycles through
// the strategies in order, so the first overflow block lands on strategy
// 0. Pure and idempotent.
func PlanPage(page int) PagePlan {
	if page <= PageCeiling {
		return PagePlan{Direct: true, InnerPage: page}
	}

	block := (page-1)/PageCeiling - 1
	idx := block % StrategyCount
	return PagePlan{
		StrategyIndex: idx,
		StrategyName:  strategyNames[idx],
		InnerPage:     (page-1)%PageCeiling + 1,
	}
}

// Strategist serves page requests, transparently rewriting pages beyond
// the upstream ceiling into synthetic queries.
type Strategist struct {
	client Searcher
}

// Searcher is the slice of the adapter the strategist needs.
type Searcher interface {
	Search(ctx context.Context, req Request) *Result
}

func NewStrategist(client Searcher) *Strategist {
	return &Strategist{client: client}
}

// FetchPage executes the request, rewriting it through a synthetic
// strategy when the page exceeds the upstream ceiling. The response is
// relabeled with the originally requested page number.
func (s *Strategist) FetchPage(ctx context.Context, req Request) *Result {
	plan := PlanPage(req.Page)
	if plan.Direct {
		return s.client.Search(ctx, req)
	}

	slog.Debug("Serving synthetic page",
		"requested_page", req.Page,
		"strategy", plan.StrategyName,
		"inner_page", plan.InnerPage)

	mutated := applyStrategy(req, plan)
	result := s.client.Search(ctx, mutated)
	result.Page = req.Page
	return result
}

// applyStrategy rewrites the request for one strategy block. Mutations
// are deterministic so repeated requests for the same page replay the
// same upstream query.
func applyStrategy(req Request, plan PagePlan) Request {
	out := req
	out.Page = plan.InnerPage

	switch plan.StrategyIndex {
	case 0: // keyword-variation: exclude bulk listings to shift the subset
		out.Keyword = appendTerm(req.Keyword, "-lot")
	case 1: // category-split: narrow toward canonical listings
		out.Keyword = appendTerm(req.Keyword, "genuine")
	case 2: // price-split: lower half of the band
		out.RuleSet.Price = lowerHalf(req.RuleSet.Price)
	case 3: // brand-variation
		out.Keyword = appendTerm(req.Keyword, "brand")
	case 4: // sort-variation
		out.Sort = SortPriceAsc
	case 5: // date-split: newest listings first
		out.Sort = SortNewlyListed
	case 6: // condition-variation
		out.Keyword = appendTerm(req.Keyword, "used")
	case 7: // seller-variation
		out.Keyword = appendTerm(req.Keyword, "warranty")
	case 8: // location-variation
		out.Keyword = appendTerm(req.Keyword, "usa")
	}

	return out
}

func appendTerm(keyword, term string) string {
	if keyword == "" {
		return term
	}
	if strings.Contains(" "+keyword+" ", " "+term+" ") {
		return keyword
	}
	return keyword + " " + term
}

// lowerHalf narrows a price band to its lower half. Unbounded sides get
// deterministic defaults so the split stays reproducible.
func lowerHalf(band rules.PriceBand) rules.PriceBand {
	min := 0.0
	if band.Min != nil {
		min = *band.Min
	}
	max := 10000.0
	if band.Max != nil {
		max = *band.Max
	}
	mid := (min + max) / 2
	out := band
	out.Max = &mid
	return out
}
