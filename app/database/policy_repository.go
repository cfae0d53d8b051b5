package database

import (
	"database/sql"
	"fmt"

	"github.com/driverperks/catalog/app/points"
)

var _ PointsPolicyRepository = (*PointsPolicyRepo)(nil)

type PointsPolicyRepo struct {
	db *DB
}

func NewPointsPolicyRepo(db *DB) *PointsPolicyRepo {
	return &PointsPolicyRepo{db: db}
}

// GetPolicy returns the scope's conversion policy. Absence is not an
// error: callers derive a flat-rate fallback instead.
func (r *PointsPolicyRepo) GetPolicy(scope string) (*points.Policy, error) {
	var policy points.Policy
	var config []byte
	err := r.db.QueryRow(`
		SELECT strategy, config, min_points, max_points, rounding
		FROM points_policies
		WHERE scope = $1
	`, scope).Scan(&policy.Strategy, &config, &policy.MinPoints, &policy.MaxPoints, &policy.Rounding)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get points policy: %w", err)
	}

	policy.Config = config
	return &policy, nil
}
