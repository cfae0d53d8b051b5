package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

var _ CacheRepository = (*CacheRepo)(nil)

// CacheRepo stores composed result pages. Concurrent writers racing on
// the same key both succeed: the upsert makes the loser update the
// winner's row. No locking beyond that is used or needed.
type CacheRepo struct {
	db *DB
}

func NewCacheRepo(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

func (r *CacheRepo) Get(scope, fingerprint string, page int, sort string) (*CacheEntry, error) {
	var entry CacheEntry
	err := r.db.QueryRow(`
		SELECT scope, fingerprint, page, sort, payload, expires_at, created_at
		FROM result_cache
		WHERE scope = $1 AND fingerprint = $2 AND page = $3 AND sort = $4
	`, scope, fingerprint, page, sort).Scan(
		&entry.Scope, &entry.Fingerprint, &entry.Page, &entry.Sort,
		&entry.Payload, &entry.ExpiresAt, &entry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if entry.ExpiresAt.Before(time.Now()) {
		if _, err := r.db.Exec(`
			DELETE FROM result_cache
			WHERE scope = $1 AND fingerprint = $2 AND page = $3 AND sort = $4
		`, scope, fingerprint, page, sort); err != nil {
			slog.Warn("Failed to delete expired cache entry", "scope", scope, "error", err)
		}
		return nil, nil
	}

	return &entry, nil
}

func (r *CacheRepo) Set(entry CacheEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO result_cache (scope, fingerprint, page, sort, payload, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (scope, fingerprint, page, sort) DO UPDATE SET
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
	`, entry.Scope, entry.Fingerprint, entry.Page, entry.Sort, entry.Payload, entry.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	return nil
}

func (r *CacheRepo) FlushScope(scope string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM result_cache WHERE scope = $1`, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to flush scope cache: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func (r *CacheRepo) CountEntries() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM result_cache WHERE expires_at >= NOW()`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}

func (r *CacheRepo) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM result_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
