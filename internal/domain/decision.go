package domain

import (
	"strings"
	"time"
)

// Decision is a validator's verdict on a submission plus the credit it carries.
type Decision struct {
	SubmissionID    int64
	Status          Status
	ValidatedBy     *int64
	ValidatedAt     *time.Time
	RejectionReason *string
	// UserID is the submitting user whose activity and totals are updated.
	UserID       *int64
	EcoPoints    int64
	TreesPlanted int64
}

// Validate checks the decision before any transaction is opened.
func (d Decision) Validate() error {
	if !d.Status.Terminal() {
		return invalid("status", "must be approved or rejected")
	}
	if d.SubmissionID <= 0 {
		return invalid("submission_id", "must be a positive integer")
	}
	if d.UserID != nil && *d.UserID <= 0 {
		return invalid("user_id", "must be a positive integer")
	}
	if d.ValidatedBy != nil && *d.ValidatedBy <= 0 {
		return invalid("validated_by", "must be a positive integer")
	}
	if d.EcoPoints < 0 {
		return invalid("eco_points", "must be >= 0")
	}
	if d.TreesPlanted < 0 {
		return invalid("trees_planted", "must be >= 0")
	}
	if d.Status == StatusRejected && (d.RejectionReason == nil || strings.TrimSpace(*d.RejectionReason) == "") {
		return invalid("rejection_reason", "is required when rejecting")
	}
	return nil
}

func (d Decision) submissionValidation() SubmissionValidation {
	v := SubmissionValidation{
		SubmissionID: d.SubmissionID,
		Status:       d.Status,
		ValidatedBy:  d.ValidatedBy,
		ValidatedAt:  d.ValidatedAt,
	}
	if d.Status == StatusRejected {
		reason := strings.TrimSpace(*d.RejectionReason)
		v.RejectionReason = &reason
	}
	return v
}

// activityPoints is the eco-points value mirrored into the activity row.
// Rejections always clear it, whatever the caller sent.
func (d Decision) activityPoints() *int64 {
	if d.Status != StatusApproved {
		return nil
	}
	points := d.EcoPoints
	return &points
}

// credits reports whether the decision increments the user's totals. Approvals
// carrying zero points are deliberately not credited.
func (d Decision) credits() bool {
	return d.Status == StatusApproved && d.UserID != nil && d.EcoPoints > 0
}
