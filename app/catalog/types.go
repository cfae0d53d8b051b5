package catalog

import (
	"context"

	"github.com/driverperks/catalog/app/search"
)

// PreviewRequest is the caller-facing query contract consumed by the
// route layer.
type PreviewRequest struct {
	Page       int
	PageSize   int
	Sort       string
	Keyword    string
	RuleSetID  string // optional single-fragment selection
	PriceMin   *float64
	PriceMax   *float64
	PointsMin  *int64
	PointsMax  *int64
	CategoryID string
	// Fast skips the expensive exact count: Total comes back nil and
	// HasMore is the authoritative pagination signal.
	Fast bool
}

// Response is one composed catalog page.
type Response struct {
	Items      []search.Item `json:"items"`
	Total      *int          `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	HasMore    bool          `json:"has_more"`
	Debug      *search.Debug `json:"debug,omitempty"`
}

// PageFetcher is the strategist-wrapped search adapter.
type PageFetcher interface {
	FetchPage(ctx context.Context, req search.Request) *search.Result
}

// ItemLookup is the single-item detail endpoint used for pinned-item
// enrichment.
type ItemLookup interface {
	GetItem(ctx context.Context, id string) (*search.Item, error)
}

var _ PageFetcher = (*search.Strategist)(nil)
var _ ItemLookup = (*search.Client)(nil)
