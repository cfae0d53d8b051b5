package database

import (
	"time"
)

// Scope is the tenant boundary under which rules, curation, and cache
// entries are partitioned.
type Scope struct {
	Slug          string
	Name          string
	PricePerPoint *float64 // currency units per loyalty point, fallback ratio
	BrowseAll     bool     // browse-all mode bypasses the result cache
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CuratedKind string

const (
	CuratedPinned      CuratedKind = "pinned"
	CuratedIncluded    CuratedKind = "included"
	CuratedExcluded    CuratedKind = "excluded"
	CuratedBlacklisted CuratedKind = "blacklisted"
)

// CuratedItem is one manually curated marketplace item. Display fields
// are cached copies refreshed in the background; the live record always
// wins when the item also appears in upstream results.
type CuratedItem struct {
	ID        string
	Scope     string
	ItemID    string
	Kind      CuratedKind
	Rank      *int
	Title     string
	ImageURL  string
	Price     *float64
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CacheEntry is one composed result page. Never served past expiry.
type CacheEntry struct {
	Scope       string
	Fingerprint string
	Page        int
	Sort        string
	Payload     []byte
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
