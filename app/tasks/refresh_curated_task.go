package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/search"
)

const (
	refreshStaleAfter = 24 * time.Hour
	refreshBatchSize  = 50
)

// ItemLookupInterface is the single-item detail endpoint used to refresh
// cached display data on curated items.
type ItemLookupInterface interface {
	GetItem(ctx context.Context, id string) (*search.Item, error)
}

// RefreshCuratedTask re-fetches display data (title, image, price) for
// pinned and included items that have not been refreshed recently, so
// pinned placeholders stay presentable even when the item drops out of
// upstream search results.
type RefreshCuratedTask struct {
	Task
	curatedRepo database.CuratedItemRepository
	lookup      ItemLookupInterface
}

func NewRefreshCuratedTask(curatedRepo database.CuratedItemRepository, lookup ItemLookupInterface) *RefreshCuratedTask {
	return &RefreshCuratedTask{
		Task:        NewTask(TaskTypeRefreshCurated, ""),
		curatedRepo: curatedRepo,
		lookup:      lookup,
	}
}

func (t *RefreshCuratedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stale, err := t.curatedRepo.ListStaleDisplay(time.Now().Add(-refreshStaleAfter), refreshBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale curated items: %w", err)
	}

	refreshedCount := 0
	errorCount := 0

	for _, item := range stale {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fresh, err := t.lookup.GetItem(ctx, item.ItemID)
		if err != nil || fresh == nil {
			slog.Warn("Failed to refresh curated item", "scope", item.Scope, "item_id", item.ItemID, "error", err)
			errorCount++
			continue
		}

		if err := t.curatedRepo.UpdateDisplay(item.ID, fresh.Title, fresh.ImageURL, fresh.Price); err != nil {
			slog.Error("Failed to store refreshed display data", "scope", item.Scope, "item_id", item.ItemID, "error", err)
			errorCount++
			continue
		}
		refreshedCount++
	}

	slog.Info("Task completed",
		"type", "RefreshCurated",
		"duration", t.GetDuration(),
		"success", refreshedCount,
		"errors", errorCount)

	return nil
}
