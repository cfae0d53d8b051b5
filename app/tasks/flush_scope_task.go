package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/driverperks/catalog/app/database"
)

// FlushScopeTask drops every cached result page for one scope. Enqueued
// by the admin API after rule or curation changes.
type FlushScopeTask struct {
	Task
	cacheRepo database.CacheRepository
}

func NewFlushScopeTask(scope string, cacheRepo database.CacheRepository) *FlushScopeTask {
	return &FlushScopeTask{
		Task:      NewTask(TaskTypeFlushScope, scope),
		cacheRepo: cacheRepo,
	}
}

func (t *FlushScopeTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.cacheRepo.FlushScope(t.Scope)
	if err != nil {
		return fmt.Errorf("failed to flush scope cache: %w", err)
	}

	slog.Info("Task completed",
		"type", "FlushScope",
		"scope", t.Scope,
		"duration", t.GetDuration(),
		"deleted", deleted)

	return nil
}
