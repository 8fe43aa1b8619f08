package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
)

// localTimestampLayouts are accepted for validated_at when no offset is sent.
var localTimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// DecisionRequest is the payload for POST /v1/submissions/decisions.
type DecisionRequest struct {
	SubmissionID    *int64  `json:"submission_id"`
	Status          *string `json:"status"`
	ValidatedBy     *int64  `json:"validated_by"`
	ValidatedAt     *string `json:"validated_at"`
	RejectionReason *string `json:"rejection_reason"`
	UserID          *int64  `json:"user_id"`
	EcoPoints       *int64  `json:"eco_points"`
	TreesPlanted    *int64  `json:"trees_planted"`
}

// Validate ensures the required fields are present. Value checks live in
// domain.Decision.Validate.
func (r DecisionRequest) Validate() error {
	if r.SubmissionID == nil {
		return errors.New("submission_id is required")
	}
	if r.Status == nil || *r.Status == "" {
		return errors.New("status is required")
	}
	return nil
}

// ToDecision converts the request, resolving offset-less timestamps in loc.
// The status is passed through verbatim and a user_id of 0 means no user.
func (r DecisionRequest) ToDecision(loc *time.Location) (domain.Decision, error) {
	d := domain.Decision{
		SubmissionID:    *r.SubmissionID,
		Status:          domain.Status(*r.Status),
		ValidatedBy:     r.ValidatedBy,
		RejectionReason: r.RejectionReason,
	}
	if r.UserID != nil && *r.UserID != 0 {
		d.UserID = r.UserID
	}
	if r.EcoPoints != nil {
		d.EcoPoints = *r.EcoPoints
	}
	if r.TreesPlanted != nil {
		d.TreesPlanted = *r.TreesPlanted
	}
	if r.ValidatedAt != nil && strings.TrimSpace(*r.ValidatedAt) != "" {
		ts, err := parseTimestamp(*r.ValidatedAt, loc)
		if err != nil {
			return domain.Decision{}, err
		}
		d.ValidatedAt = &ts
	}
	return d, nil
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("validated_at: unsupported timestamp %q", raw)
}

// DecisionResponse is the body returned by the decision endpoint.
type DecisionResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse is the body of non-photo error replies on the photo endpoint.
type ErrorResponse struct {
	Type      string `json:"type"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}
