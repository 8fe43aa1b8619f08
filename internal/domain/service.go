// Package domain defines the submission validation workflow: the access guard
// for submission photos and the engine that reconciles a validator's decision
// into submissions, activities and user totals.
package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/vibe-with-wyn/green-roots/internal/observability"
)

// ActivityMatch describes how the activity feed was updated for a decision.
type ActivityMatch string

const (
	// MatchLinked means an activity already referencing the submission was updated.
	MatchLinked ActivityMatch = observability.MatchLinked
	// MatchLegacy means an unlinked legacy row was matched, updated and linked.
	MatchLegacy ActivityMatch = observability.MatchLegacy
	// MatchUnmatched means the fallback ran and found nothing to update.
	MatchUnmatched ActivityMatch = observability.MatchUnmatched
	// MatchSkipped means the fallback was not attempted (no subject user or metadata).
	MatchSkipped ActivityMatch = observability.MatchSkipped
)

// Outcome reports what a committed decision changed.
type Outcome struct {
	SubmissionUpdated bool
	ActivityMatch     ActivityMatch
	// ActivityID is set for MatchLinked and MatchLegacy.
	ActivityID int64
	Credited   bool
}

// Option configures a Service.
type Option func(*Service)

// WithMatchStrategy replaces the legacy activity matching heuristic.
func WithMatchStrategy(m MatchStrategy) Option {
	return func(s *Service) {
		if m != nil {
			s.match = m
		}
	}
}

// WithClock overrides the clock used for metrics timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service records validation decisions.
type Service struct {
	store  Store
	logger *slog.Logger
	match  MatchStrategy
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:  store,
		logger: logger,
		match:  MatchLegacyActivity,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordValidationDecision applies a decision atomically: the submission row is
// updated, the activity feed is reconciled (exact link first, legacy fallback
// second) and, for approvals with points, the user's totals are credited.
//
// Invalid input returns a *ValidationError before the transaction opens. Any
// store failure rolls everything back and returns a *StoreError.
func (s *Service) RecordValidationDecision(ctx context.Context, d Decision) (Outcome, error) {
	start := s.now()
	if err := d.Validate(); err != nil {
		observability.RecordDecision(string(d.Status), "invalid", s.now().Sub(start))
		return Outcome{}, err
	}

	var out Outcome
	err := s.store.WithinTx(ctx, func(ctx context.Context, l Ledgers) error {
		out = Outcome{}
		return s.apply(ctx, l, d, &out)
	})
	if err != nil {
		err = storeError("record decision", err)
		s.logger.ErrorContext(ctx, "record validation decision failed",
			"submission_id", d.SubmissionID, "status", d.Status, "error", err)
		observability.RecordDecision(string(d.Status), "store_error", s.now().Sub(start))
		return Outcome{}, err
	}

	committed := s.now()
	observability.RecordDecision(string(d.Status), "success", committed.Sub(start))
	observability.RecordDecisionCommitted(committed)
	observability.RecordReconciliation(string(out.ActivityMatch))
	if out.Credited {
		observability.RecordCredit(d.EcoPoints)
	}
	return out, nil
}

func (s *Service) apply(ctx context.Context, l Ledgers, d Decision, out *Outcome) error {
	updated, err := l.Submissions.UpdateValidation(ctx, d.submissionValidation())
	if err != nil {
		return storeError("update submission", err)
	}
	out.SubmissionUpdated = updated
	if !updated {
		s.logger.WarnContext(ctx, "decision recorded for unknown submission", "submission_id", d.SubmissionID)
	}

	points := d.activityPoints()
	activityID, linked, err := l.Activities.UpdateLinked(ctx, d.SubmissionID, d.UserID, d.Status, points)
	if err != nil {
		return storeError("update linked activity", err)
	}
	if linked {
		out.ActivityMatch = MatchLinked
		out.ActivityID = activityID
	} else if err := s.reconcileLegacy(ctx, l, d, points, out); err != nil {
		return err
	}

	if d.credits() {
		credited, err := l.Users.Credit(ctx, *d.UserID, d.EcoPoints, d.TreesPlanted)
		if err != nil {
			return storeError("credit user", err)
		}
		out.Credited = credited
		if !credited {
			s.logger.WarnContext(ctx, "approval credit skipped for unknown user", "user_id", *d.UserID, "submission_id", d.SubmissionID)
		}
	}
	return nil
}

// reconcileLegacy links the decision to an activity row created before
// activities carried a submission reference. Finding nothing is not an error.
func (s *Service) reconcileLegacy(ctx context.Context, l Ledgers, d Decision, points *int64, out *Outcome) error {
	meta, err := l.Submissions.GetMeta(ctx, d.SubmissionID)
	if err != nil {
		return storeError("load submission metadata", err)
	}
	if meta == nil || d.UserID == nil {
		out.ActivityMatch = MatchSkipped
		return nil
	}

	from := meta.SubmittedAt.Add(-LegacyMatchWindow)
	to := meta.SubmittedAt.Add(LegacyMatchWindow)
	candidates, err := l.Activities.LockLegacyCandidates(ctx, *d.UserID, from, to)
	if err != nil {
		return storeError("load legacy activities", err)
	}

	selected := s.match(candidates, d, *meta)
	if selected == nil {
		out.ActivityMatch = MatchUnmatched
		s.logger.WarnContext(ctx, "no activity row reconciled for decision",
			"submission_id", d.SubmissionID, "user_id", *d.UserID, "candidates", len(candidates))
		return nil
	}

	claimed, err := l.Activities.ClaimLegacy(ctx, selected.ID, d.SubmissionID, d.Status, points)
	if err != nil {
		return storeError("claim legacy activity", err)
	}
	if !claimed {
		out.ActivityMatch = MatchUnmatched
		s.logger.WarnContext(ctx, "legacy activity already claimed",
			"submission_id", d.SubmissionID, "activity_id", selected.ID)
		return nil
	}
	out.ActivityMatch = MatchLegacy
	out.ActivityID = selected.ID
	return nil
}
