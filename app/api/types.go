package api

import (
	"context"

	"github.com/driverperks/catalog/app/catalog"
	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/search"
	"github.com/driverperks/catalog/app/tasks"
)

type OrchestratorInterface interface {
	Preview(ctx context.Context, scope string, req catalog.PreviewRequest) (*catalog.Response, error)
	GetItem(ctx context.Context, scope, itemID string) (*search.Item, error)
}

var _ OrchestratorInterface = (*catalog.Orchestrator)(nil)

type Handler struct {
	orchestrator OrchestratorInterface
	scopeRepo    database.ScopeRepository
	ruleRepo     database.RuleRepository
	curatedRepo  database.CuratedItemRepository
	cacheRepo    database.CacheRepository
	lookup       tasks.ItemLookupInterface
	scheduler    tasks.TaskSchedulerInterface
}

// curatedRequest is the admin payload for curated item writes.
type curatedRequest struct {
	ItemID   string   `json:"item_id" binding:"required"`
	Kind     string   `json:"kind" binding:"required"`
	Rank     *int     `json:"rank,omitempty"`
	Title    string   `json:"title,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Note     string   `json:"note,omitempty"`
}
