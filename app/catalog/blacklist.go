package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/driverperks/catalog/app/cache"
	"github.com/driverperks/catalog/app/database"
)

const blacklistTTL = 60 * time.Second

// blacklistCache answers "is this item id banned for this scope" without
// hitting the database on every request. Entries live for a minute, so a
// newly blacklisted item can linger on result pages for at most that long.
type blacklistCache struct {
	store   cache.Store
	curated database.CuratedItemRepository
}

func newBlacklistCache(store cache.Store, curated database.CuratedItemRepository) *blacklistCache {
	return &blacklistCache{store: store, curated: curated}
}

func (b *blacklistCache) get(ctx context.Context, scope string) map[string]struct{} {
	key := "blacklist:" + scope

	if raw, err := b.store.Get(ctx, key); err == nil && raw != "" {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			return toSet(ids)
		}
	}

	ids, err := b.curated.ListIDsByKind(scope, database.CuratedBlacklisted)
	if err != nil {
		// Degrade to an empty blacklist rather than failing the page
		slog.Warn("Failed to load blacklist, serving without it", "scope", scope, "error", err)
		return map[string]struct{}{}
	}
	if ids == nil {
		ids = []string{}
	}

	if raw, err := json.Marshal(ids); err == nil {
		if err := b.store.Set(ctx, key, string(raw), blacklistTTL); err != nil {
			slog.Warn("Failed to cache blacklist", "scope", scope, "error", err)
		}
	}

	return toSet(ids)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
