package domain

import "time"

// LegacyMatchWindow is how far from a submission's submitted-at a legacy
// activity row may have been created and still be matched to it.
const LegacyMatchWindow = 10 * time.Minute

// MatchStrategy selects at most one legacy activity row for a decision. It is a
// pure function: candidates come from the store, the result is claimed by the
// engine afterwards.
type MatchStrategy func(candidates []Activity, decision Decision, meta SubmissionMeta) *Activity

// MatchLegacyActivity is the default MatchStrategy. A candidate qualifies when it
// is an unlinked, pending submission activity of the decision's user, created
// within LegacyMatchWindow of the submission, with a matching tree count and,
// when the submission's zone has a name, a matching location. The most recently
// created candidate wins; equal timestamps fall back to the higher id.
//
// A decision with zero trees matches any tree count. That lets a zero-tree
// approval claim a legacy row that recorded trees.
func MatchLegacyActivity(candidates []Activity, decision Decision, meta SubmissionMeta) *Activity {
	if decision.UserID == nil {
		return nil
	}
	from := meta.SubmittedAt.Add(-LegacyMatchWindow)
	to := meta.SubmittedAt.Add(LegacyMatchWindow)

	var best *Activity
	for i := range candidates {
		c := &candidates[i]
		if c.SubmissionID != nil || c.UserID != *decision.UserID {
			continue
		}
		if c.Type != ActivityTypeSubmission || c.Status != StatusPending {
			continue
		}
		if decision.TreesPlanted != 0 && c.TreesPlanted != decision.TreesPlanted {
			continue
		}
		if meta.ZoneName != nil && (c.Location == nil || *c.Location != *meta.ZoneName) {
			continue
		}
		if c.CreatedAt.Before(from) || c.CreatedAt.After(to) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) || (c.CreatedAt.Equal(best.CreatedAt) && c.ID > best.ID) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	selected := *best
	return &selected
}
