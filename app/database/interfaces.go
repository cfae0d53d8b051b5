package database

import (
	"time"

	"github.com/driverperks/catalog/app/points"
	"github.com/driverperks/catalog/app/rules"
)

type ScopeRepository interface {
	GetScope(slug string) (*Scope, error)
}

type RuleRepository interface {
	// GetActiveFragments returns enabled fragments ordered by ascending
	// priority, decoded from their stored payloads.
	GetActiveFragments(scope string) ([]rules.Fragment, error)
	// GetFragment returns one fragment by id, nil when absent.
	GetFragment(scope, id string) (*rules.Fragment, error)
}

type CuratedItemRepository interface {
	// ListByKind returns curated items of one kind. Pinned items come
	// back in rank order, nulls last.
	ListByKind(scope string, kind CuratedKind) ([]CuratedItem, error)
	ListIDsByKind(scope string, kind CuratedKind) ([]string, error)
	Upsert(item CuratedItem) error
	// Delete removes one curated row and renumbers surviving pinned
	// ranks contiguously from 1.
	Delete(scope, itemID string, kind CuratedKind) error
	UpdateDisplay(id string, title, imageURL string, price *float64) error
	ListStaleDisplay(olderThan time.Time, limit int) ([]CuratedItem, error)
}

type PointsPolicyRepository interface {
	// GetPolicy returns the scope's conversion policy, nil when none is
	// configured.
	GetPolicy(scope string) (*points.Policy, error)
}

type CacheRepository interface {
	// Get returns a live cache entry or nil. Expired rows are deleted
	// eagerly on read.
	Get(scope, fingerprint string, page int, sort string) (*CacheEntry, error)
	// Set upserts an entry; the loser of a concurrent write race updates
	// the winner's row instead of failing.
	Set(entry CacheEntry) error
	FlushScope(scope string) (int64, error)
	DeleteExpired() (int64, error)
	// CountEntries returns the number of live cached pages.
	CountEntries() (int, error)
}
