package search

import (
	"github.com/driverperks/catalog/app/rules"
)

// Normalized sort tokens accepted from callers and mapped onto upstream
// sort parameters.
const (
	SortBestMatch   = "best_match"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortNewlyListed = "newly_listed"
)

// Item is a normalized marketplace item. Transient: never persisted,
// always re-fetched from upstream or read from the composed-page cache.
type Item struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	Price                 *float64 `json:"price,omitempty"`
	Currency              string   `json:"currency,omitempty"`
	ImageURL              string   `json:"image_url,omitempty"`
	ItemURL               string   `json:"item_url,omitempty"`
	Condition             string   `json:"condition,omitempty"`
	CategoryID            string   `json:"category_id,omitempty"`
	Brand                 string   `json:"brand,omitempty"`
	SellerFeedbackScore   int      `json:"seller_feedback_score,omitempty"`
	SellerPositivePercent float64  `json:"seller_positive_percent,omitempty"`
	BuyItNow              bool     `json:"buy_it_now"`
	FreeShipping          bool     `json:"free_shipping"`
	HandlingDays          *int     `json:"handling_days,omitempty"`
	InStock               bool     `json:"in_stock"`
	Points                *int64   `json:"points,omitempty"`
	Pinned                bool     `json:"pinned,omitempty"`
	Rank                  *int     `json:"rank,omitempty"`
}

// Debug carries the diagnostic payload attached to empty results. Callers
// treat zero items and upstream failure as the same observable outcome
// unless they inspect this.
type Debug struct {
	Reason string            `json:"reason,omitempty"`
	Status int               `json:"status,omitempty"`
	Body   string            `json:"body,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// Result is one normalized page of upstream results. Total is the
// upstream's own estimate and is best-effort only.
type Result struct {
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
	Debug   *Debug `json:"debug,omitempty"`
}

// Request describes one upstream search call.
type Request struct {
	RuleSet  rules.EffectiveRuleSet
	Keyword  string // caller overlay, merged into the phrase
	Page     int
	PageSize int
	Sort     string
}

func emptyResult(page int, debug *Debug) *Result {
	return &Result{Items: []Item{}, Page: page, Debug: debug}
}
