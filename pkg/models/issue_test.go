package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to IssueStatus
		allowed  bool
	}{
		{IssueStatusOpen, IssueStatusInProgress, true},
		{IssueStatusInProgress, IssueStatusOpen, true},
		{IssueStatusOpen, IssueStatusResolved, true},
		{IssueStatusOpen, IssueStatusClosed, true},
		{IssueStatusOpen, IssueStatusIgnored, true},
		{IssueStatusInProgress, IssueStatusResolved, true},
		{IssueStatusInProgress, IssueStatusClosed, true},
		{IssueStatusInProgress, IssueStatusIgnored, true},

		{IssueStatusResolved, IssueStatusOpen, true},
		{IssueStatusClosed, IssueStatusOpen, true},
		{IssueStatusIgnored, IssueStatusOpen, true},

		{IssueStatusResolved, IssueStatusInProgress, false},
		{IssueStatusResolved, IssueStatusClosed, false},
		{IssueStatusClosed, IssueStatusIgnored, false},
		{IssueStatusIgnored, IssueStatusResolved, false},

		{IssueStatusOpen, IssueStatusOpen, false},
		{IssueStatusResolved, IssueStatusResolved, false},

		{IssueStatusOpen, IssueStatus("archived"), false},
		{IssueStatus("archived"), IssueStatusOpen, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to),
			"transition %s -> %s", c.from, c.to)
	}
}

func TestIssueStatusTerminal(t *testing.T) {
	assert.False(t, IssueStatusOpen.IsTerminal())
	assert.False(t, IssueStatusInProgress.IsTerminal())
	assert.True(t, IssueStatusResolved.IsTerminal())
	assert.True(t, IssueStatusClosed.IsTerminal())
	assert.True(t, IssueStatusIgnored.IsTerminal())
}

func TestIssueEnumsValidity(t *testing.T) {
	assert.True(t, IssueTypeBug.IsValid())
	assert.True(t, IssueTypeOther.IsValid())
	assert.False(t, IssueType("crash").IsValid())

	assert.True(t, SeverityCritical.IsValid())
	assert.False(t, Severity("catastrophic").IsValid())

	assert.True(t, CategoryCodeSmell.IsValid())
	assert.False(t, Category("style-issue").IsValid())

	assert.True(t, ResolutionMethodAIAssisted.IsValid())
	assert.False(t, ResolutionMethod("magic").IsValid())

	assert.True(t, EstimatedEffortLow.IsValid())
	assert.False(t, EstimatedEffort("huge").IsValid())
}

func TestIssueCountsTowardStats(t *testing.T) {
	for _, s := range []IssueStatus{IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved} {
		i := Issue{Status: s}
		assert.True(t, i.CountsTowardStats(), "status %s", s)
	}
	for _, s := range []IssueStatus{IssueStatusClosed, IssueStatusIgnored} {
		i := Issue{Status: s}
		assert.False(t, i.CountsTowardStats(), "status %s", s)
	}
}

func TestAIAnalysisValidate(t *testing.T) {
	assert.NoError(t, AIAnalysis{Confidence: 0}.Validate())
	assert.NoError(t, AIAnalysis{Confidence: 100, EstimatedEffort: EstimatedEffortHigh}.Validate())
	assert.Error(t, AIAnalysis{Confidence: -1}.Validate())
	assert.Error(t, AIAnalysis{Confidence: 101}.Validate())
	assert.Error(t, AIAnalysis{Confidence: 50, EstimatedEffort: "enormous"}.Validate())
}

func TestIssueAIAnalysisRoundtrip(t *testing.T) {
	var i Issue

	got, err := i.AIAnalysis()
	require.NoError(t, err)
	assert.Nil(t, got)

	a := &AIAnalysis{
		Confidence:      85,
		Explanation:     "unchecked error return",
		SuggestedFix:    "handle the error",
		EstimatedEffort: EstimatedEffortLow,
		Tags:            []string{"errcheck"},
	}
	require.NoError(t, i.SetAIAnalysis(a))

	got, err = i.AIAnalysis()
	require.NoError(t, err)
	assert.Equal(t, a, got)

	require.NoError(t, i.SetAIAnalysis(nil))
	got, err = i.AIAnalysis()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIssueSetAIAnalysisRejectsInvalid(t *testing.T) {
	var i Issue
	err := i.SetAIAnalysis(&AIAnalysis{Confidence: 150})
	require.Error(t, err)
	assert.Nil(t, i.AIAnalysisJSON)
}

func TestIssueClearResolution(t *testing.T) {
	userID := uint(7)
	i := Issue{
		ResolutionMethod:      ResolutionMethodManual,
		ResolutionDescription: "fixed",
		AppliedFix:            "patch",
		ResolvedByID:          &userID,
		CommitHash:            "abc123",
		PullRequestURL:        "https://example.com/pr/1",
	}
	i.ClearResolution()
	assert.Equal(t, Issue{}, i)
}
