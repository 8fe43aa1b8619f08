package domain

import (
	"context"
	"time"
)

// SubmissionLedger maps submission rows. Zero-row results are reported with
// booleans or nil values rather than errors.
type SubmissionLedger interface {
	UpdateValidation(ctx context.Context, v SubmissionValidation) (bool, error)
	GetMeta(ctx context.Context, submissionID int64) (*SubmissionMeta, error)
	GetZone(ctx context.Context, submissionID int64) (zoneID int64, found bool, err error)
	GetPhoto(ctx context.Context, submissionID, zoneID int64) ([]byte, error)
}

// ActivityLedger maps activity-feed rows.
type ActivityLedger interface {
	// UpdateLinked updates at most one submission activity linked to submissionID
	// and owned by userID. A nil userID never matches.
	UpdateLinked(ctx context.Context, submissionID int64, userID *int64, status Status, ecoPoints *int64) (activityID int64, updated bool, err error)
	// LockLegacyCandidates returns pending, unlinked submission activities of the
	// user created in [from, to], locked for the rest of the transaction.
	LockLegacyCandidates(ctx context.Context, userID int64, from, to time.Time) ([]Activity, error)
	// ClaimLegacy links a legacy row to submissionID if it is still unlinked and pending.
	ClaimLegacy(ctx context.Context, activityID, submissionID int64, status Status, ecoPoints *int64) (bool, error)
}

// UserLedger maps cumulative user statistics.
type UserLedger interface {
	GetZone(ctx context.Context, userID int64) (zoneID int64, found bool, err error)
	Credit(ctx context.Context, userID, ecoPoints, treesPlanted int64) (bool, error)
}

// Ledgers groups the accessors bound to one transaction.
type Ledgers struct {
	Submissions SubmissionLedger
	Activities  ActivityLedger
	Users       UserLedger
}

// Store runs fn inside a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, l Ledgers) error) error
}
