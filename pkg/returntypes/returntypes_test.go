package returntypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
)

func TestPriorityDisplay(t *testing.T) {
	assert.Equal(t, "Lowest", PriorityDisplay(1))
	assert.Equal(t, "Low", PriorityDisplay(2))
	assert.Equal(t, "Medium", PriorityDisplay(3))
	assert.Equal(t, "High", PriorityDisplay(4))
	assert.Equal(t, "Highest", PriorityDisplay(5))

	// out of range falls back to the default label
	assert.Equal(t, "Medium", PriorityDisplay(0))
	assert.Equal(t, "Medium", PriorityDisplay(42))
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "#dc3545", SeverityColor(models.SeverityCritical))
	assert.Equal(t, "#fd7e14", SeverityColor(models.SeverityHigh))
	assert.Equal(t, "#ffc107", SeverityColor(models.SeverityMedium))
	assert.Equal(t, "#28a745", SeverityColor(models.SeverityLow))
	assert.Equal(t, "#17a2b8", SeverityColor(models.SeverityInfo))
	assert.Equal(t, "#6c757d", SeverityColor(models.Severity("unknown")))
}

func TestNewIssueInfoDerivesPresentation(t *testing.T) {
	issue := models.Issue{
		RepoID:       3,
		Title:        "leaked goroutine",
		Type:         models.IssueTypeBug,
		Severity:     models.SeverityCritical,
		Category:     models.CategoryLogicError,
		FilePath:     "worker.go",
		Status:       models.IssueStatusOpen,
		Priority:     4,
		ReportedByID: 1,
	}

	info := NewIssueInfo(&issue)
	assert.Equal(t, "High", info.PriorityDisplay)
	assert.Equal(t, "#dc3545", info.SeverityColor)
	assert.Equal(t, "critical", info.Severity)
	assert.Equal(t, "open", info.Status)
}

func TestNewRunInfo(t *testing.T) {
	finished := time.Date(2019, 3, 7, 12, 30, 0, 0, time.UTC)
	run := models.AnalysisRun{
		RepoID:       3,
		AnalysisGUID: "run-guid",
		Status:       models.AnalysisStatusFailed,
		FailReason:   "clone timeout",
		StartedAt:    finished.Add(-time.Hour),
		FinishedAt:   &finished,
	}

	info := NewRunInfo(&run)
	assert.Equal(t, "run-guid", info.AnalysisGUID)
	assert.Equal(t, "failed", info.Status)
	assert.Equal(t, "clone timeout", info.FailReason)
	assert.Equal(t, &finished, info.FinishedAt)
}

func TestNewCommentInfo(t *testing.T) {
	comment := models.IssueComment{
		IssueID:  5,
		AuthorID: 2,
		Content:  "duplicate of #3",
	}
	comment.ID = 9

	info := NewCommentInfo(&comment)
	assert.Equal(t, uint(9), info.ID)
	assert.Equal(t, uint(5), info.IssueID)
	assert.Equal(t, uint(2), info.AuthorID)
	assert.Equal(t, "duplicate of #3", info.Content)
}

func TestNewRepoInfoUsesDisplayName(t *testing.T) {
	score := 83
	repo := models.Repo{
		Name:           "golangci/golangci-api",
		DisplayName:    "GolangCI/golangci-api",
		GithubID:       42,
		AnalysisStatus: models.AnalysisStatusCompleted,
		HealthScore:    &score,
	}

	info := NewRepoInfo(&repo)
	assert.Equal(t, "GolangCI/golangci-api", info.Name)
	assert.Equal(t, "completed", info.AnalysisStatus)
	assert.Equal(t, &score, info.HealthScore)
}
