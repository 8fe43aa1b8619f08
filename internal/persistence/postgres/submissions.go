package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
)

// SubmissionLedger maps the submissions table.
type SubmissionLedger struct {
	db DBTX
}

// NewSubmissionLedger constructs a SubmissionLedger.
func NewSubmissionLedger(db DBTX) *SubmissionLedger {
	return &SubmissionLedger{db: db}
}

// UpdateValidation writes the decision columns.
func (r *SubmissionLedger) UpdateValidation(ctx context.Context, v domain.SubmissionValidation) (bool, error) {
	const stmt = `UPDATE submissions
        SET status = $1, validated_by = $2, validated_at = $3, rejection_reason = $4
        WHERE submission_id = $5`

	tag, err := r.db.Exec(ctx, stmt, string(v.Status), v.ValidatedBy, v.ValidatedAt, v.RejectionReason, v.SubmissionID)
	if err != nil {
		return false, fmt.Errorf("update submission %d: %w", v.SubmissionID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetMeta returns submitted_at and the zone's display name, or nil when the
// submission does not exist.
func (r *SubmissionLedger) GetMeta(ctx context.Context, submissionID int64) (*domain.SubmissionMeta, error) {
	const query = `SELECT s.submitted_at, z.name
        FROM submissions s
        LEFT JOIN zones z ON z.zone_id = s.zone_id
        WHERE s.submission_id = $1`

	var meta domain.SubmissionMeta
	if err := r.db.QueryRow(ctx, query, submissionID).Scan(&meta.SubmittedAt, &meta.ZoneName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load submission %d metadata: %w", submissionID, err)
	}
	return &meta, nil
}

// GetZone returns the zone of the submission.
func (r *SubmissionLedger) GetZone(ctx context.Context, submissionID int64) (int64, bool, error) {
	const query = `SELECT zone_id FROM submissions WHERE submission_id = $1`

	var zoneID *int64
	if err := r.db.QueryRow(ctx, query, submissionID).Scan(&zoneID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load submission %d zone: %w", submissionID, err)
	}
	if zoneID == nil {
		return 0, false, nil
	}
	return *zoneID, true, nil
}

// GetPhoto returns the photo bytes when the submission belongs to zoneID.
func (r *SubmissionLedger) GetPhoto(ctx context.Context, submissionID, zoneID int64) ([]byte, error) {
	const query = `SELECT photo_data FROM submissions WHERE submission_id = $1 AND zone_id = $2`

	var data []byte
	if err := r.db.QueryRow(ctx, query, submissionID, zoneID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load submission %d photo: %w", submissionID, err)
	}
	return data, nil
}
