package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/points"
	"github.com/driverperks/catalog/app/rules"
	"github.com/driverperks/catalog/app/search"
)

var ErrScopeNotFound = errors.New("scope not found")

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Orchestrator assembles one catalog page end to end: rule merge, cache
// lookup, upstream fetch, curated composition, points conversion, and
// local filtering.
type Orchestrator struct {
	scopes   database.ScopeRepository
	rules    database.RuleRepository
	policies database.PointsPolicyRepository
	aliases  rules.AliasTable
	fetcher  PageFetcher
	composer *Composer
	cache    *ResultCache
}

func NewOrchestrator(
	scopes database.ScopeRepository,
	ruleRepo database.RuleRepository,
	policies database.PointsPolicyRepository,
	aliases rules.AliasTable,
	fetcher PageFetcher,
	composer *Composer,
	resultCache *ResultCache,
) *Orchestrator {
	return &Orchestrator{
		scopes:   scopes,
		rules:    ruleRepo,
		policies: policies,
		aliases:  aliases,
		fetcher:  fetcher,
		composer: composer,
		cache:    resultCache,
	}
}

// Preview serves one composed page for a scope.
func (o *Orchestrator) Preview(ctx context.Context, scopeSlug string, req PreviewRequest) (*Response, error) {
	sc, err := o.scopes.GetScope(scopeSlug)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrScopeNotFound
	}

	normalizeRequest(&req)

	fragments, err := o.loadFragments(scopeSlug, req.RuleSetID)
	if err != nil {
		return nil, err
	}

	merged := rules.Merge(fragments, overlayFragment(req))
	merged.IncludeCategories = o.aliases.Resolve(merged.IncludeCategories)
	merged.ExcludeCategories = o.aliases.Resolve(merged.ExcludeCategories)

	conv := o.converter(scopeSlug, sc)

	if merged.SpecialMode == rules.SpecialModeRecommendedOnly {
		return o.recommendedOnly(ctx, scopeSlug, merged, conv, req)
	}

	if !merged.HasQueryTerms() {
		return applyFastMode(emptyResponse(req, &search.Debug{
			Reason: "merged rules carry no keyword or category constraint",
		}), req.Fast), nil
	}

	// Category browsing suppresses pins; browse-all scopes and pin-free
	// pages are too volatile to share cache entries with the default view.
	excludePinned := req.CategoryID != ""
	bypassCache := excludePinned || sc.BrowseAll

	fp := Fingerprint(&merged, req.Keyword, req.Sort)
	if !bypassCache {
		if cached := o.cache.Get(scopeSlug, fp, req.Page, req.Sort); cached != nil {
			return applyFastMode(cached, req.Fast), nil
		}
	}

	result := o.fetcher.FetchPage(ctx, search.Request{
		RuleSet:  merged,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
		Sort:     req.Sort,
	})

	composed, err := o.composer.Run(ctx, scopeSlug, result.Items, excludePinned)
	if err != nil {
		return nil, err
	}

	composed = filterPriceBand(composed, merged.Price)
	points.ConvertAll(conv, composed)
	composed = filterPointsRange(composed, req.PointsMin, req.PointsMax)
	sortItems(composed, req.Sort)

	resp := buildResponse(composed, result, req)

	// Upstream failures produce valid-looking empty pages; caching those
	// for the full TTL would pin the outage. Only clean misses get stored.
	// The cached payload always carries the total; fast mode is a
	// serve-time projection so fast and exact callers share entries.
	if !bypassCache && result.Debug == nil {
		o.cache.Set(scopeSlug, fp, req.Page, req.Sort, resp)
	}

	return applyFastMode(resp, req.Fast), nil
}

// GetItem proxies a single-item lookup with points annotated.
func (o *Orchestrator) GetItem(ctx context.Context, scopeSlug, itemID string) (*search.Item, error) {
	sc, err := o.scopes.GetScope(scopeSlug)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrScopeNotFound
	}

	item, err := o.composer.lookup.GetItem(ctx, itemID)
	if err != nil || item == nil {
		return nil, err
	}

	conv := o.converter(scopeSlug, sc)
	batch := []search.Item{*item}
	points.ConvertAll(conv, batch)
	return &batch[0], nil
}

// recommendedOnly serves the pinned list as the whole catalog, filtered
// and paginated like a normal page. No upstream search happens.
func (o *Orchestrator) recommendedOnly(ctx context.Context, scopeSlug string, merged rules.EffectiveRuleSet, conv points.Converter, req PreviewRequest) (*Response, error) {
	items, err := o.composer.PinnedOnly(ctx, scopeSlug)
	if err != nil {
		return nil, err
	}

	// The caller keyword filters locally here since there is no upstream
	// relevance ranking to lean on.
	local := merged
	if req.Keyword != "" {
		local.MustKeywords = append(append([]string{}, local.MustKeywords...), req.Keyword)
	}
	items = search.PostFilter(items, &local)

	points.ConvertAll(conv, items)
	items = filterPointsRange(items, req.PointsMin, req.PointsMax)
	sortItems(items, req.Sort)

	total := len(items)
	start := (req.Page - 1) * req.PageSize
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}

	return applyFastMode(&Response{
		Items:      items[start:end],
		Total:      &total,
		TotalPages: pageCount(total, req.PageSize),
		Page:       req.Page,
		PageSize:   req.PageSize,
		HasMore:    end < total,
	}, req.Fast), nil
}

func (o *Orchestrator) loadFragments(scopeSlug, ruleSetID string) ([]rules.Fragment, error) {
	if ruleSetID != "" {
		fragment, err := o.rules.GetFragment(scopeSlug, ruleSetID)
		if err != nil {
			return nil, err
		}
		if fragment == nil {
			return nil, nil
		}
		return []rules.Fragment{*fragment}, nil
	}
	return o.rules.GetActiveFragments(scopeSlug)
}

func (o *Orchestrator) converter(scopeSlug string, sc *database.Scope) points.Converter {
	policy, err := o.policies.GetPolicy(scopeSlug)
	if err != nil {
		slog.Warn("Failed to load points policy, using flat fallback", "scope", scopeSlug, "error", err)
		policy = nil
	}

	ratio := 0.0
	if sc.PricePerPoint != nil {
		ratio = *sc.PricePerPoint
	}
	return points.NewConverter(policy, ratio)
}

// overlayFragment lifts caller query parameters into a fragment merged
// last, so they narrow rather than replace the stored rules.
func overlayFragment(req PreviewRequest) *rules.Fragment {
	overlay := &rules.Fragment{
		Price: rules.PriceBand{Min: req.PriceMin, Max: req.PriceMax},
	}
	if req.CategoryID != "" {
		overlay.Categories.Include = []string{req.CategoryID}
	}
	return overlay
}

func normalizeRequest(req *PreviewRequest) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	switch req.Sort {
	case search.SortBestMatch, search.SortPriceAsc, search.SortPriceDesc, search.SortNewlyListed:
	default:
		req.Sort = search.SortBestMatch
	}
}

func emptyResponse(req PreviewRequest, debug *search.Debug) *Response {
	total := 0
	return &Response{
		Items:    []search.Item{},
		Total:    &total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Debug:    debug,
	}
}

// applyFastMode projects a full response into the fast-mode contract,
// where total and total_pages are withheld and has_more is the only
// pagination signal. Responses are always built and cached with the
// total so fast and exact callers can share cache entries.
func applyFastMode(resp *Response, fast bool) *Response {
	if !fast || resp.Total == nil {
		return resp
	}
	masked := *resp
	masked.Total = nil
	masked.TotalPages = 0
	return &masked
}

func buildResponse(composed []search.Item, result *search.Result, req PreviewRequest) *Response {
	pageItems := composed
	if len(pageItems) > req.PageSize {
		pageItems = pageItems[:req.PageSize]
	}

	total := result.Total
	return &Response{
		Items:      pageItems,
		Total:      &total,
		TotalPages: pageCount(total, req.PageSize),
		Page:       req.Page,
		PageSize:   req.PageSize,
		HasMore:    result.HasMore || len(composed) > req.PageSize,
		Debug:      result.Debug,
	}
}

func pageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
