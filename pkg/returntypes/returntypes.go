package returntypes

import (
	"time"

	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
)

type Error struct {
	Error string `json:"error,omitempty"`
}

type RepoInfo struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	GithubID       int64      `json:"githubId"`
	Language       string     `json:"language,omitempty"`
	IsPrivate      bool       `json:"isPrivate,omitempty"`
	AnalysisStatus string     `json:"analysisStatus"`
	LastAnalyzedAt *time.Time `json:"lastAnalyzedAt,omitempty"`
	AnalysisCount  int        `json:"analysisCount"`

	TotalIssues    int  `json:"totalIssues"`
	CriticalIssues int  `json:"criticalIssues"`
	WarningIssues  int  `json:"warningIssues"`
	InfoIssues     int  `json:"infoIssues"`
	HealthScore    *int `json:"healthScore,omitempty"`
}

type WrappedRepoInfo struct {
	Repo RepoInfo `json:"repo"`
}

type RepoListResponse struct {
	Repos []RepoInfo `json:"repos"`
}

type IssueInfo struct {
	ID          uint   `json:"id"`
	RepoID      uint   `json:"repoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	FilePath    string `json:"filePath"`
	Line        *int   `json:"line,omitempty"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`

	PriorityDisplay string `json:"priorityDisplay"`
	SeverityColor   string `json:"severityColor"`

	ReportedByID uint       `json:"reportedById"`
	AssignedToID *uint      `json:"assignedToId,omitempty"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type IssueListResponse struct {
	Issues []IssueInfo `json:"issues"`
}

type RunInfo struct {
	AnalysisGUID string     `json:"analysisGuid"`
	RepoID       uint       `json:"repoId"`
	Status       string     `json:"status"`
	FailReason   string     `json:"failReason,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

type CommentInfo struct {
	ID        uint      `json:"id"`
	IssueID   uint      `json:"issueId"`
	AuthorID  uint      `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentListResponse struct {
	Comments []CommentInfo `json:"comments"`
}

func NewIssueInfo(issue *models.Issue) IssueInfo {
	return IssueInfo{
		ID:              issue.ID,
		RepoID:          issue.RepoID,
		Title:           issue.Title,
		Description:     issue.Description,
		Type:            string(issue.Type),
		Severity:        string(issue.Severity),
		Category:        string(issue.Category),
		FilePath:        issue.FilePath,
		Line:            issue.Line,
		Status:          string(issue.Status),
		Priority:        issue.Priority,
		PriorityDisplay: PriorityDisplay(issue.Priority),
		SeverityColor:   SeverityColor(issue.Severity),
		ReportedByID:    issue.ReportedByID,
		AssignedToID:    issue.AssignedToID,
		ResolvedAt:      issue.ResolvedAt,
		CreatedAt:       issue.CreatedAt,
	}
}

func NewRunInfo(run *models.AnalysisRun) RunInfo {
	return RunInfo{
		AnalysisGUID: run.AnalysisGUID,
		RepoID:       run.RepoID,
		Status:       string(run.Status),
		FailReason:   run.FailReason,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func NewCommentInfo(comment *models.IssueComment) CommentInfo {
	return CommentInfo{
		ID:        comment.ID,
		IssueID:   comment.IssueID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

func NewRepoInfo(repo *models.Repo) RepoInfo {
	return RepoInfo{
		ID:             repo.ID,
		Name:           repo.DisplayName,
		GithubID:       repo.GithubID,
		Language:       repo.Language,
		IsPrivate:      repo.IsPrivate,
		AnalysisStatus: string(repo.AnalysisStatus),
		LastAnalyzedAt: repo.LastAnalyzedAt,
		AnalysisCount:  repo.AnalysisCount,
		TotalIssues:    repo.TotalIssues,
		CriticalIssues: repo.CriticalIssues,
		WarningIssues:  repo.WarningIssues,
		InfoIssues:     repo.InfoIssues,
		HealthScore:    repo.HealthScore,
	}
}

// PriorityDisplay is a presentation-only label, not stored state.
func PriorityDisplay(priority int) string {
	switch priority {
	case 1:
		return "Lowest"
	case 2:
		return "Low"
	case 3:
		return "Medium"
	case 4:
		return "High"
	case 5:
		return "Highest"
	}
	return "Medium"
}

// SeverityColor is a presentation-only hex color, not stored state.
func SeverityColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "#dc3545"
	case models.SeverityHigh:
		return "#fd7e14"
	case models.SeverityMedium:
		return "#ffc107"
	case models.SeverityLow:
		return "#28a745"
	case models.SeverityInfo:
		return "#17a2b8"
	}
	return "#6c757d"
}
