package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDecisionValidate(t *testing.T) {
	cases := []struct {
		name  string
		d     Decision
		field string
	}{
		{"pending status", Decision{SubmissionID: 1, Status: StatusPending}, "status"},
		{"unknown status", Decision{SubmissionID: 1, Status: "archived"}, "status"},
		{"zero submission", Decision{Status: StatusApproved}, "submission_id"},
		{"negative user", Decision{SubmissionID: 1, Status: StatusApproved, UserID: ptr(int64(-1))}, "user_id"},
		{"zero validator", Decision{SubmissionID: 1, Status: StatusApproved, ValidatedBy: ptr(int64(0))}, "validated_by"},
		{"negative points", Decision{SubmissionID: 1, Status: StatusApproved, EcoPoints: -5}, "eco_points"},
		{"negative trees", Decision{SubmissionID: 1, Status: StatusApproved, TreesPlanted: -1}, "trees_planted"},
		{"reject without reason", Decision{SubmissionID: 1, Status: StatusRejected}, "rejection_reason"},
		{"reject with blank reason", Decision{SubmissionID: 1, Status: StatusRejected, RejectionReason: ptr("  ")}, "rejection_reason"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}

	require.NoError(t, Decision{SubmissionID: 1, Status: StatusApproved}.Validate())
	require.NoError(t, Decision{SubmissionID: 1, Status: StatusRejected, RejectionReason: ptr("blurry")}.Validate())
}

func TestDecisionDerivedValues(t *testing.T) {
	approved := Decision{SubmissionID: 1, Status: StatusApproved, UserID: ptr(int64(7)), EcoPoints: 50, RejectionReason: ptr("ignored")}
	require.Nil(t, approved.submissionValidation().RejectionReason)
	require.Equal(t, int64(50), *approved.activityPoints())
	require.True(t, approved.credits())

	rejected := Decision{SubmissionID: 1, Status: StatusRejected, UserID: ptr(int64(7)), EcoPoints: 50, RejectionReason: ptr(" blurry ")}
	require.Equal(t, "blurry", *rejected.submissionValidation().RejectionReason)
	require.Nil(t, rejected.activityPoints())
	require.False(t, rejected.credits())

	require.False(t, Decision{Status: StatusApproved, UserID: ptr(int64(7))}.credits(), "zero points never credit")
	require.False(t, Decision{Status: StatusApproved, EcoPoints: 10}.credits(), "no user never credits")
}
