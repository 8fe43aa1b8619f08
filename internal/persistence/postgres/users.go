package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UserLedger maps the users table.
type UserLedger struct {
	db DBTX
}

// NewUserLedger constructs a UserLedger.
func NewUserLedger(db DBTX) *UserLedger {
	return &UserLedger{db: db}
}

// GetZone returns the user's home zone.
func (r *UserLedger) GetZone(ctx context.Context, userID int64) (int64, bool, error) {
	const query = `SELECT zone_id FROM users WHERE user_id = $1`

	var zoneID *int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&zoneID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load user %d zone: %w", userID, err)
	}
	if zoneID == nil {
		return 0, false, nil
	}
	return *zoneID, true, nil
}

// Credit adds to the user's cumulative totals.
func (r *UserLedger) Credit(ctx context.Context, userID, ecoPoints, treesPlanted int64) (bool, error) {
	const stmt = `UPDATE users
        SET eco_points = eco_points + $1, trees_planted = trees_planted + $2
        WHERE user_id = $3`

	tag, err := r.db.Exec(ctx, stmt, ecoPoints, treesPlanted, userID)
	if err != nil {
		return false, fmt.Errorf("credit user %d: %w", userID, err)
	}
	return tag.RowsAffected() > 0, nil
}
