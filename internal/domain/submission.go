package domain

import "time"

// Status is the validation state shared by submissions and their activity rows.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ActivityTypeSubmission is the only activity type the validation workflow touches.
const ActivityTypeSubmission = "submission"

// RoleValidator is the role allowed to view submission photos and record decisions.
const RoleValidator = "eco_validator"

// Terminal reports whether the status ends the validation workflow.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Zone is an administrative grouping; validators only act inside their own zone.
type Zone struct {
	ID   int64
	Name string
}

// User carries the cumulative statistics credited on approval.
type User struct {
	ID           int64
	ZoneID       *int64
	Role         string
	EcoPoints    int64
	TreesPlanted int64
}

// Submission is proof of an eco activity awaiting a validator's decision.
type Submission struct {
	ID              int64
	UserID          *int64
	ZoneID          *int64
	SubmittedAt     time.Time
	Status          Status
	ValidatedBy     *int64
	ValidatedAt     *time.Time
	RejectionReason *string
	Photo           []byte
}

// SubmissionMeta is the subset of a submission used to find legacy activity rows.
type SubmissionMeta struct {
	SubmittedAt time.Time
	ZoneName    *string
}

// SubmissionValidation is the column set written when a decision is recorded.
type SubmissionValidation struct {
	SubmissionID    int64
	Status          Status
	ValidatedBy     *int64
	ValidatedAt     *time.Time
	RejectionReason *string
}

// Activity is a feed row. Legacy rows have a nil SubmissionID.
type Activity struct {
	ID           int64
	UserID       int64
	Type         string
	SubmissionID *int64
	Status       Status
	EcoPoints    *int64
	TreesPlanted int64
	Location     *string
	CreatedAt    time.Time
}

// Caller identifies the authenticated user behind a request.
type Caller struct {
	UserID int64
	Role   string
}

// Photo is a submission photo ready to be streamed.
type Photo struct {
	SubmissionID int64
	Data         []byte
	ContentType  string
}
