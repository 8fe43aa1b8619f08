package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
)

func TestParseTimestamp(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)

	ts, err := parseTimestamp("2025-03-03 18:30:00", manila)
	require.NoError(t, err)
	require.True(t, ts.Equal(time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC)))

	ts, err = parseTimestamp("2025-03-03T18:30:00Z", manila)
	require.NoError(t, err)
	require.True(t, ts.Equal(time.Date(2025, time.March, 3, 18, 30, 0, 0, time.UTC)))

	_, err = parseTimestamp("03/03/2025", manila)
	require.Error(t, err)
}

func TestDecisionRequestToDecision(t *testing.T) {
	id, user, points := int64(42), int64(7), int64(50)
	status := "approved"
	req := DecisionRequest{SubmissionID: &id, Status: &status, UserID: &user, EcoPoints: &points}
	require.NoError(t, req.Validate())

	d, err := req.ToDecision(time.UTC)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, d.Status)
	require.Equal(t, int64(50), d.EcoPoints)
	require.Zero(t, d.TreesPlanted)
	require.Nil(t, d.ValidatedAt)
}

func TestDecisionRequestKeepsStatusVerbatim(t *testing.T) {
	id := int64(42)
	status := " approved "
	req := DecisionRequest{SubmissionID: &id, Status: &status}
	require.NoError(t, req.Validate())

	d, err := req.ToDecision(time.UTC)
	require.NoError(t, err)
	require.Equal(t, domain.Status(" approved "), d.Status)
	require.True(t, domain.IsValidation(d.Validate()))
}

func TestDecisionRequestZeroUserMeansNoUser(t *testing.T) {
	id, user := int64(42), int64(0)
	status := "approved"
	d, err := DecisionRequest{SubmissionID: &id, Status: &status, UserID: &user}.ToDecision(time.UTC)
	require.NoError(t, err)
	require.Nil(t, d.UserID)
	require.NoError(t, d.Validate())
}

func TestDecisionRequestValidateRequiresFields(t *testing.T) {
	id := int64(1)
	require.Error(t, DecisionRequest{}.Validate())
	require.Error(t, DecisionRequest{SubmissionID: &id}.Validate())
}
