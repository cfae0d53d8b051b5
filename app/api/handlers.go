package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driverperks/catalog/app/catalog"
	"github.com/driverperks/catalog/app/cfg"
	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/tasks"
)

func NewHandler(orchestrator OrchestratorInterface, scopeRepo database.ScopeRepository,
	ruleRepo database.RuleRepository, curatedRepo database.CuratedItemRepository,
	cacheRepo database.CacheRepository, lookup tasks.ItemLookupInterface,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		scopeRepo:    scopeRepo,
		ruleRepo:     ruleRepo,
		curatedRepo:  curatedRepo,
		cacheRepo:    cacheRepo,
		lookup:       lookup,
		scheduler:    scheduler,
	}
}

// GetCatalogItems serves one composed catalog page for a scope.
func (h *Handler) GetCatalogItems(c *gin.Context) {
	scope := c.Param("scope")
	if scope == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	req := catalog.PreviewRequest{
		Page:       intQuery(c, "page", 1),
		PageSize:   intQuery(c, "page_size", 0),
		Sort:       c.Query("sort"),
		Keyword:    c.Query("keyword"),
		RuleSetID:  c.Query("ruleset_id"),
		CategoryID: c.Query("category_id"),
		PriceMin:   floatQuery(c, "price_min"),
		PriceMax:   floatQuery(c, "price_max"),
		PointsMin:  int64Query(c, "points_min"),
		PointsMax:  int64Query(c, "points_max"),
		Fast:       c.Query("fast") == "true" || c.Query("fast") == "1",
	}

	resp, err := h.orchestrator.Preview(c.Request.Context(), scope, req)
	if err != nil {
		if err == catalog.ErrScopeNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scope not found"})
			return
		}
		slog.Error("Catalog page failed", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCatalogItem serves a single item with points annotated.
func (h *Handler) GetCatalogItem(c *gin.Context) {
	scope := c.Param("scope")
	itemID := c.Param("id")
	if scope == "" || itemID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	item, err := h.orchestrator.GetItem(c.Request.Context(), scope, itemID)
	if err != nil {
		if err == catalog.ErrScopeNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scope not found"})
			return
		}
		slog.Error("Item lookup failed", "scope", scope, "item_id", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
	}

	if count, err := h.cacheRepo.CountEntries(); err == nil {
		stats["cached_pages"] = count
	}

	c.JSON(http.StatusOK, stats)
}

// APIRefreshCurated enqueues a display-data refresh for stale pinned and
// included items.
func (h *Handler) APIRefreshCurated(c *gin.Context) {
	task := tasks.NewRefreshCuratedTask(h.curatedRepo, h.lookup)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Curated refresh enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// APIGetScopeRules lists the active rule fragments of a scope.
func (h *Handler) APIGetScopeRules(c *gin.Context) {
	scope := c.Param("scope")

	sc, err := h.scopeRepo.GetScope(scope)
	if err != nil {
		slog.Error("Database error", "operation", "get_scope", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if sc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scope not found"})
		return
	}

	fragments, err := h.ruleRepo.GetActiveFragments(scope)
	if err != nil {
		slog.Error("Database error", "operation", "get_fragments", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"scope":     scope,
		"fragments": fragments,
		"total":     len(fragments),
	})
}

// APIFlushScopeCache enqueues a cache flush after rule or curation edits.
func (h *Handler) APIFlushScopeCache(c *gin.Context) {
	scope := c.Param("scope")

	sc, err := h.scopeRepo.GetScope(scope)
	if err != nil {
		slog.Error("Database error", "operation", "get_scope", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if sc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scope not found"})
		return
	}

	task := tasks.NewFlushScopeTask(scope, h.cacheRepo)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing flush task", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue flush task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cache flush enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// APIUpsertCurated creates or updates a curated item for a scope.
func (h *Handler) APIUpsertCurated(c *gin.Context) {
	scope := c.Param("scope")

	var req curatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": err.Error()})
		return
	}

	kind := database.CuratedKind(req.Kind)
	switch kind {
	case database.CuratedPinned, database.CuratedIncluded, database.CuratedExcluded, database.CuratedBlacklisted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid curated kind"})
		return
	}

	item := database.CuratedItem{
		Scope:    scope,
		ItemID:   req.ItemID,
		Kind:     kind,
		Rank:     req.Rank,
		Title:    req.Title,
		ImageURL: req.ImageURL,
		Price:    req.Price,
		Note:     req.Note,
	}
	if err := h.curatedRepo.Upsert(item); err != nil {
		slog.Error("Database error", "operation", "upsert_curated", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// APIDeleteCurated removes a curated item; pinned ranks are renumbered.
func (h *Handler) APIDeleteCurated(c *gin.Context) {
	scope := c.Param("scope")
	itemID := c.Param("id")
	kind := database.CuratedKind(c.Query("kind"))

	switch kind {
	case database.CuratedPinned, database.CuratedIncluded, database.CuratedExcluded, database.CuratedBlacklisted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid curated kind"})
		return
	}

	if err := h.curatedRepo.Delete(scope, itemID, kind); err != nil {
		slog.Error("Database error", "operation", "delete_curated", "scope", scope, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func int64Query(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
