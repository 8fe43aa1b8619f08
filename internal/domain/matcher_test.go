package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func legacyRow(id int64, created time.Time, trees int64, location string) Activity {
	a := Activity{
		ID:           id,
		UserID:       7,
		Type:         ActivityTypeSubmission,
		Status:       StatusPending,
		TreesPlanted: trees,
		CreatedAt:    created,
	}
	if location != "" {
		a.Location = &location
	}
	return a
}

func TestMatchLegacyActivityWindow(t *testing.T) {
	submitted := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	meta := SubmissionMeta{SubmittedAt: submitted}
	d := Decision{SubmissionID: 42, Status: StatusApproved, UserID: ptr(int64(7)), TreesPlanted: 3}

	inside := legacyRow(1, submitted.Add(-9*time.Minute), 3, "")
	outside := legacyRow(2, submitted.Add(11*time.Minute), 3, "")
	edge := legacyRow(3, submitted.Add(-LegacyMatchWindow), 3, "")

	got := MatchLegacyActivity([]Activity{inside, outside}, d, meta)
	require.NotNil(t, got)
	require.Equal(t, int64(1), got.ID)

	require.Nil(t, MatchLegacyActivity([]Activity{outside}, d, meta))

	got = MatchLegacyActivity([]Activity{edge}, d, meta)
	require.NotNil(t, got, "window bounds are inclusive")
}

func TestMatchLegacyActivityFilters(t *testing.T) {
	submitted := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	zone := "North Ridge"
	meta := SubmissionMeta{SubmittedAt: submitted, ZoneName: &zone}
	d := Decision{SubmissionID: 42, Status: StatusApproved, UserID: ptr(int64(7)), TreesPlanted: 3}

	wrongTrees := legacyRow(1, submitted, 2, zone)
	wrongLocation := legacyRow(2, submitted, 3, "South Bay")
	noLocation := legacyRow(3, submitted, 3, "")
	otherUser := legacyRow(4, submitted, 3, zone)
	otherUser.UserID = 8
	linked := legacyRow(5, submitted, 3, zone)
	linked.SubmissionID = ptr(int64(41))
	decided := legacyRow(6, submitted, 3, zone)
	decided.Status = StatusApproved
	otherType := legacyRow(7, submitted, 3, zone)
	otherType.Type = "planting"

	require.Nil(t, MatchLegacyActivity([]Activity{wrongTrees, wrongLocation, noLocation, otherUser, linked, decided, otherType}, d, meta))

	good := legacyRow(9, submitted.Add(time.Minute), 3, zone)
	got := MatchLegacyActivity([]Activity{wrongTrees, good}, d, meta)
	require.NotNil(t, got)
	require.Equal(t, int64(9), got.ID)
}

// A zero-tree decision matches rows with any tree count. This mirrors the
// historical heuristic and can pick a row that recorded trees.
func TestMatchLegacyActivityZeroTreesIsWildcard(t *testing.T) {
	submitted := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	d := Decision{SubmissionID: 42, Status: StatusApproved, UserID: ptr(int64(7))}

	got := MatchLegacyActivity([]Activity{legacyRow(1, submitted, 5, "")}, d, SubmissionMeta{SubmittedAt: submitted})
	require.NotNil(t, got)
	require.Equal(t, int64(5), got.TreesPlanted)
}

func TestMatchLegacyActivityPrefersNewest(t *testing.T) {
	submitted := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	d := Decision{SubmissionID: 42, Status: StatusApproved, UserID: ptr(int64(7)), TreesPlanted: 1}
	meta := SubmissionMeta{SubmittedAt: submitted}

	older := legacyRow(10, submitted.Add(-5*time.Minute), 1, "")
	newer := legacyRow(4, submitted.Add(2*time.Minute), 1, "")
	got := MatchLegacyActivity([]Activity{older, newer}, d, meta)
	require.Equal(t, int64(4), got.ID)

	tieLow := legacyRow(20, submitted, 1, "")
	tieHigh := legacyRow(21, submitted, 1, "")
	rows := []Activity{tieHigh, tieLow}
	got = MatchLegacyActivity(rows, d, meta)
	require.Equal(t, int64(21), got.ID)

	got.Status = StatusRejected
	require.Equal(t, StatusPending, rows[0].Status, "result is a copy")
}

func TestMatchLegacyActivityNeedsUser(t *testing.T) {
	submitted := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	d := Decision{SubmissionID: 42, Status: StatusApproved}
	require.Nil(t, MatchLegacyActivity([]Activity{legacyRow(1, submitted, 0, "")}, d, SubmissionMeta{SubmittedAt: submitted}))
}
