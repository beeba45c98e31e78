package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifySubmissionFirstOnTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	due := now.Add(24 * time.Hour)
	assert.Equal(t, SubmissionSubmitted, ClassifySubmission(now, &due, false))
}

func TestClassifySubmissionResubmitOnTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	due := now.Add(24 * time.Hour)
	assert.Equal(t, SubmissionResubmitted, ClassifySubmission(now, &due, true))
}

func TestClassifySubmissionLateOverridesResubmit(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)
	assert.Equal(t, SubmissionLate, ClassifySubmission(now, &due, true))
	assert.Equal(t, SubmissionLate, ClassifySubmission(now, &due, false))
}

func TestClassifySubmissionNoDueDateNeverLate(t *testing.T) {
	now := time.Now().UTC()
	assert.Equal(t, SubmissionSubmitted, ClassifySubmission(now, nil, false))
	assert.Equal(t, SubmissionResubmitted, ClassifySubmission(now, nil, true))
}

func TestParseDecisionAction(t *testing.T) {
	action, ok := ParseDecisionAction("approve")
	assert.True(t, ok)
	assert.Equal(t, ActionApprove, action)

	action, ok = ParseDecisionAction("reject")
	assert.True(t, ok)
	assert.Equal(t, ActionReject, action)

	_, ok = ParseDecisionAction("escalate")
	assert.False(t, ok)
}

func TestEnrollmentStatusTerminal(t *testing.T) {
	assert.False(t, EnrollmentStatusPending.Terminal())
	assert.True(t, EnrollmentStatusApproved.Terminal())
	assert.True(t, EnrollmentStatusRejected.Terminal())
}
