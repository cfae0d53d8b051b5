package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/driverperks/catalog/app/database"
)

// SweepCacheTask deletes expired result cache rows. Reads already skip
// expired entries, so this only reclaims space.
type SweepCacheTask struct {
	Task
	cacheRepo database.CacheRepository
}

func NewSweepCacheTask(cacheRepo database.CacheRepository) *SweepCacheTask {
	return &SweepCacheTask{
		Task:      NewTask(TaskTypeSweepCache, ""),
		cacheRepo: cacheRepo,
	}
}

func (t *SweepCacheTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.cacheRepo.DeleteExpired()
	if err != nil {
		return fmt.Errorf("failed to sweep result cache: %w", err)
	}

	slog.Info("Task completed",
		"type", "SweepCache",
		"duration", t.GetDuration(),
		"deleted", deleted)

	return nil
}
