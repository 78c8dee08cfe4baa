package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisStatusCanStartAnalysis(t *testing.T) {
	assert.True(t, AnalysisStatusPending.CanStartAnalysis())
	assert.True(t, AnalysisStatusCompleted.CanStartAnalysis())
	assert.True(t, AnalysisStatusFailed.CanStartAnalysis())
	assert.False(t, AnalysisStatusAnalyzing.CanStartAnalysis())
	assert.False(t, AnalysisStatus("queued").CanStartAnalysis())
}

func TestAnalysisStatusTerminal(t *testing.T) {
	assert.False(t, AnalysisStatusPending.IsTerminal())
	assert.False(t, AnalysisStatusAnalyzing.IsTerminal())
	assert.True(t, AnalysisStatusCompleted.IsTerminal())
	assert.True(t, AnalysisStatusFailed.IsTerminal())
}

func TestRepoOwnerAndName(t *testing.T) {
	r := Repo{Name: "golangci/golangci-api"}
	assert.Equal(t, "golangci", r.Owner())
	assert.Equal(t, "golangci-api", r.Repo())
}
