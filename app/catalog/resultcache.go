package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/rules"
)

const DefaultResultTTL = 15 * time.Minute

// Fingerprint derives the content-addressed cache key component from the
// effective rule set, the free-text keyword overlay, and the sort. Two
// requests producing the same merged constraints share cache entries
// regardless of which fragments produced them.
func Fingerprint(rs *rules.EffectiveRuleSet, keyword, sort string) string {
	canonical := rs.Canonical()
	payload, err := json.Marshal(&canonical)
	if err != nil {
		// Marshalling a plain struct cannot fail in practice
		payload = nil
	}
	sum := sha256.Sum256(append(payload, []byte("|"+keyword+"|"+sort)...))
	return hex.EncodeToString(sum[:])
}

// ResultCache wraps the persistent page cache with serialization and TTL
// handling. All failures degrade to cache misses.
type ResultCache struct {
	repo database.CacheRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewResultCache(repo database.CacheRepository, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{repo: repo, ttl: ttl, now: time.Now}
}

func (rc *ResultCache) Get(scope, fingerprint string, page int, sort string) *Response {
	entry, err := rc.repo.Get(scope, fingerprint, page, sort)
	if err != nil {
		slog.Warn("Result cache read failed", "scope", scope, "error", err)
		return nil
	}
	if entry == nil {
		return nil
	}

	var resp Response
	if err := json.Unmarshal(entry.Payload, &resp); err != nil {
		slog.Warn("Discarding undecodable cached page", "scope", scope, "error", err)
		return nil
	}
	return &resp
}

func (rc *ResultCache) Set(scope, fingerprint string, page int, sort string, resp *Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("Failed to serialize page for cache", "scope", scope, "error", err)
		return
	}

	entry := database.CacheEntry{
		Scope:       scope,
		Fingerprint: fingerprint,
		Page:        page,
		Sort:        sort,
		Payload:     payload,
		ExpiresAt:   rc.now().Add(rc.ttl),
	}
	if err := rc.repo.Set(entry); err != nil {
		slog.Warn("Result cache write failed", "scope", scope, "error", err)
	}
}
