package database

import (
	"fmt"
	"time"
)

var _ CuratedItemRepository = (*CuratedItemRepo)(nil)

// CuratedItemRepo handles pinned/included/excluded/blacklisted items.
type CuratedItemRepo struct {
	db *DB
}

func NewCuratedItemRepo(db *DB) *CuratedItemRepo {
	return &CuratedItemRepo{db: db}
}

const curatedColumns = `id, scope, item_id, kind, rank, COALESCE(title, ''),
	COALESCE(image_url, ''), price, COALESCE(note, ''), created_at, updated_at`

func (r *CuratedItemRepo) ListByKind(scope string, kind CuratedKind) ([]CuratedItem, error) {
	rows, err := r.db.Query(`
		SELECT `+curatedColumns+`
		FROM curated_items
		WHERE scope = $1 AND kind = $2
		ORDER BY rank ASC NULLS LAST, created_at ASC
	`, scope, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list curated items: %w", err)
	}
	defer rows.Close()

	return scanCuratedItems(rows)
}

func (r *CuratedItemRepo) ListIDsByKind(scope string, kind CuratedKind) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT item_id FROM curated_items
		WHERE scope = $1 AND kind = $2
	`, scope, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list curated item ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan curated item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating curated item ids: %w", err)
	}

	return ids, nil
}

func (r *CuratedItemRepo) Upsert(item CuratedItem) error {
	_, err := r.db.Exec(`
		INSERT INTO curated_items (scope, item_id, kind, rank, title, image_url, price, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (scope, item_id, kind) DO UPDATE SET
			rank = EXCLUDED.rank,
			title = EXCLUDED.title,
			image_url = EXCLUDED.image_url,
			price = EXCLUDED.price,
			note = EXCLUDED.note,
			updated_at = NOW()
	`, item.Scope, item.ItemID, item.Kind, item.Rank, item.Title, item.ImageURL, item.Price, item.Note)

	if err != nil {
		return fmt.Errorf("failed to upsert curated item: %w", err)
	}

	return nil
}

// Delete removes one curated row. For pinned items the surviving sibling
// ranks are renumbered contiguously from 1 in the same transaction.
func (r *CuratedItemRepo) Delete(scope, itemID string, kind CuratedKind) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM curated_items
		WHERE scope = $1 AND item_id = $2 AND kind = $3
	`, scope, itemID, kind); err != nil {
		return fmt.Errorf("failed to delete curated item: %w", err)
	}

	if kind == CuratedPinned {
		if _, err := tx.Exec(`
			UPDATE curated_items c
			SET rank = numbered.new_rank, updated_at = NOW()
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY rank ASC NULLS LAST, created_at ASC) AS new_rank
				FROM curated_items
				WHERE scope = $1 AND kind = $2 AND rank IS NOT NULL
			) numbered
			WHERE c.id = numbered.id AND c.rank IS DISTINCT FROM numbered.new_rank
		`, scope, kind); err != nil {
			return fmt.Errorf("failed to renumber pinned ranks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit curated item delete: %w", err)
	}

	return nil
}

func (r *CuratedItemRepo) UpdateDisplay(id string, title, imageURL string, price *float64) error {
	_, err := r.db.Exec(`
		UPDATE curated_items
		SET title = $2, image_url = $3, price = $4, updated_at = NOW()
		WHERE id = $1
	`, id, title, imageURL, price)

	if err != nil {
		return fmt.Errorf("failed to update curated item display data: %w", err)
	}

	return nil
}

// ListStaleDisplay returns pinned and included items whose cached display
// data has not been refreshed since the cutoff.
func (r *CuratedItemRepo) ListStaleDisplay(olderThan time.Time, limit int) ([]CuratedItem, error) {
	rows, err := r.db.Query(`
		SELECT `+curatedColumns+`
		FROM curated_items
		WHERE kind IN ('pinned', 'included') AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale curated items: %w", err)
	}
	defer rows.Close()

	return scanCuratedItems(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanCuratedItems(rows rowScanner) ([]CuratedItem, error) {
	var items []CuratedItem
	for rows.Next() {
		var item CuratedItem
		err := rows.Scan(
			&item.ID, &item.Scope, &item.ItemID, &item.Kind, &item.Rank,
			&item.Title, &item.ImageURL, &item.Price, &item.Note,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan curated item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating curated items: %w", err)
	}

	return items, nil
}
