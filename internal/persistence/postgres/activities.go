package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
)

// ActivityLedger maps the activities table.
type ActivityLedger struct {
	db DBTX
}

// NewActivityLedger constructs an ActivityLedger.
func NewActivityLedger(db DBTX) *ActivityLedger {
	return &ActivityLedger{db: db}
}

// UpdateLinked updates the first linked submission activity. The row is locked
// by the sub-select so at most one row changes.
func (r *ActivityLedger) UpdateLinked(ctx context.Context, submissionID int64, userID *int64, status domain.Status, ecoPoints *int64) (int64, bool, error) {
	if userID == nil {
		return 0, false, nil
	}

	const stmt = `UPDATE activities
        SET status = $1, eco_points = $2
        WHERE activity_id = (
            SELECT activity_id FROM activities
            WHERE submission_id = $3 AND user_id = $4 AND activity_type = $5
            ORDER BY activity_id
            LIMIT 1
            FOR UPDATE
        )
        RETURNING activity_id`

	var activityID int64
	err := r.db.QueryRow(ctx, stmt, string(status), ecoPoints, submissionID, *userID, domain.ActivityTypeSubmission).Scan(&activityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("update activity linked to submission %d: %w", submissionID, err)
	}
	return activityID, true, nil
}

// LockLegacyCandidates selects unlinked pending rows FOR UPDATE, newest first.
func (r *ActivityLedger) LockLegacyCandidates(ctx context.Context, userID int64, from, to time.Time) ([]domain.Activity, error) {
	const query = `SELECT activity_id, user_id, activity_type, submission_id, status, eco_points, trees_planted, location, created_at
        FROM activities
        WHERE submission_id IS NULL
          AND user_id = $1
          AND activity_type = $2
          AND status = $3
          AND created_at BETWEEN $4 AND $5
        ORDER BY created_at DESC, activity_id DESC
        FOR UPDATE`

	rows, err := r.db.Query(ctx, query, userID, domain.ActivityTypeSubmission, string(domain.StatusPending), from, to)
	if err != nil {
		return nil, fmt.Errorf("load legacy activities for user %d: %w", userID, err)
	}
	defer rows.Close()

	results := make([]domain.Activity, 0)
	for rows.Next() {
		var (
			a      domain.Activity
			status string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.SubmissionID, &status, &a.EcoPoints, &a.TreesPlanted, &a.Location, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan legacy activity: %w", err)
		}
		a.Status = domain.Status(status)
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy activities: %w", err)
	}
	return results, nil
}

// ClaimLegacy links a legacy row. The guard on submission_id and status makes
// the claim a no-op if another transaction got there first.
func (r *ActivityLedger) ClaimLegacy(ctx context.Context, activityID, submissionID int64, status domain.Status, ecoPoints *int64) (bool, error) {
	const stmt = `UPDATE activities
        SET status = $1, eco_points = $2, submission_id = $3
        WHERE activity_id = $4
          AND submission_id IS NULL
          AND status = $5`

	tag, err := r.db.Exec(ctx, stmt, string(status), ecoPoints, submissionID, activityID, string(domain.StatusPending))
	if err != nil {
		return false, fmt.Errorf("claim activity %d for submission %d: %w", activityID, submissionID, err)
	}
	return tag.RowsAffected() == 1, nil
}
