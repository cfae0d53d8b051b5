package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/driverperks/catalog/app/rules"
)

var _ RuleRepository = (*RuleRepo)(nil)
var _ ScopeRepository = (*RuleRepo)(nil)

// RuleRepo reads scopes and their rule fragments. The core only reads;
// writes are owned by the administrative tooling.
type RuleRepo struct {
	db *DB
}

func NewRuleRepo(db *DB) *RuleRepo {
	return &RuleRepo{db: db}
}

func (r *RuleRepo) GetScope(slug string) (*Scope, error) {
	var scope Scope
	err := r.db.QueryRow(`
		SELECT slug, name, price_per_point, browse_all, created_at, updated_at
		FROM scopes
		WHERE slug = $1
	`, slug).Scan(
		&scope.Slug, &scope.Name, &scope.PricePerPoint, &scope.BrowseAll,
		&scope.CreatedAt, &scope.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scope: %w", err)
	}

	return &scope, nil
}

func (r *RuleRepo) GetActiveFragments(scope string) ([]rules.Fragment, error) {
	rows, err := r.db.Query(`
		SELECT id, payload
		FROM rule_fragments
		WHERE scope = $1 AND enabled = true
		ORDER BY priority ASC, created_at ASC
	`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule fragments: %w", err)
	}
	defer rows.Close()

	var fragments []rules.Fragment
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan rule fragment: %w", err)
		}

		var fragment rules.Fragment
		if err := json.Unmarshal(payload, &fragment); err != nil {
			// A single broken payload must not take the scope down
			slog.Warn("Skipping undecodable rule fragment", "scope", scope, "id", id, "error", err)
			continue
		}
		fragments = append(fragments, fragment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule fragments: %w", err)
	}

	return fragments, nil
}

func (r *RuleRepo) GetFragment(scope, id string) (*rules.Fragment, error) {
	var payload []byte
	err := r.db.QueryRow(`
		SELECT payload
		FROM rule_fragments
		WHERE scope = $1 AND id = $2 AND enabled = true
	`, scope, id).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule fragment: %w", err)
	}

	var fragment rules.Fragment
	if err := json.Unmarshal(payload, &fragment); err != nil {
		return nil, fmt.Errorf("failed to decode rule fragment %s: %w", id, err)
	}

	return &fragment, nil
}
