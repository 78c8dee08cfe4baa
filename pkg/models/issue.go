package models

import (
	"encoding/json"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

const MaxIssueTitleLen = 200

const (
	MinIssuePriority     = 1
	MaxIssuePriority     = 5
	DefaultIssuePriority = 3
)

type IssueType string

const (
	IssueTypeBug           IssueType = "bug"
	IssueTypeSecurity      IssueType = "security"
	IssueTypePerformance   IssueType = "performance"
	IssueTypeCodeQuality   IssueType = "code-quality"
	IssueTypeDocumentation IssueType = "documentation"
	IssueTypeDependency    IssueType = "dependency"
	IssueTypeStyle         IssueType = "style"
	IssueTypeTest          IssueType = "test"
	IssueTypeEnhancement   IssueType = "enhancement"
	IssueTypeOther         IssueType = "other"
)

func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypeBug, IssueTypeSecurity, IssueTypePerformance, IssueTypeCodeQuality,
		IssueTypeDocumentation, IssueTypeDependency, IssueTypeStyle, IssueTypeTest,
		IssueTypeEnhancement, IssueTypeOther:
		return true
	}
	return false
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

type Category string

const (
	CategorySyntaxError          Category = "syntax-error"
	CategoryLogicError           Category = "logic-error"
	CategorySecurityVuln         Category = "security-vulnerability"
	CategoryPerformanceIssue     Category = "performance-issue"
	CategoryCodeSmell            Category = "code-smell"
	CategoryUnusedCode           Category = "unused-code"
	CategoryDeprecatedAPI        Category = "deprecated-api"
	CategoryMissingDocumentation Category = "missing-documentation"
	CategoryTestCoverage         Category = "test-coverage"
	CategoryDependencyIssue      Category = "dependency-issue"
	CategoryOther                Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategorySyntaxError, CategoryLogicError, CategorySecurityVuln,
		CategoryPerformanceIssue, CategoryCodeSmell, CategoryUnusedCode,
		CategoryDeprecatedAPI, CategoryMissingDocumentation, CategoryTestCoverage,
		CategoryDependencyIssue, CategoryOther:
		return true
	}
	return false
}

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in-progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
	IssueStatusIgnored    IssueStatus = "ignored"
)

func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed, IssueStatusIgnored:
		return true
	}
	return false
}

func (s IssueStatus) IsTerminal() bool {
	return s == IssueStatusResolved || s == IssueStatusClosed || s == IssueStatusIgnored
}

// CanTransitionTo implements the issue workflow:
// open <-> in-progress, {open,in-progress} -> {resolved,closed,ignored},
// and explicit reopen of any terminal status back to open.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}

	if s.IsTerminal() {
		return next == IssueStatusOpen // reopen
	}

	// open and in-progress may move anywhere else
	return true
}

type ResolutionMethod string

const (
	ResolutionMethodManual     ResolutionMethod = "manual"
	ResolutionMethodAIAssisted ResolutionMethod = "ai-assisted"
	ResolutionMethodAutomated  ResolutionMethod = "automated"
)

func (m ResolutionMethod) IsValid() bool {
	switch m {
	case ResolutionMethodManual, ResolutionMethodAIAssisted, ResolutionMethodAutomated:
		return true
	}
	return false
}

type EstimatedEffort string

const (
	EstimatedEffortLow    EstimatedEffort = "low"
	EstimatedEffortMedium EstimatedEffort = "medium"
	EstimatedEffortHigh   EstimatedEffort = "high"
)

func (e EstimatedEffort) IsValid() bool {
	switch e {
	case EstimatedEffortLow, EstimatedEffortMedium, EstimatedEffortHigh:
		return true
	}
	return false
}

// AIAnalysis is an optional machine-produced annotation on an issue.
type AIAnalysis struct {
	Confidence      int             `json:"confidence"` // 0-100
	Explanation     string          `json:"explanation,omitempty"`
	SuggestedFix    string          `json:"suggestedFix,omitempty"`
	EstimatedEffort EstimatedEffort `json:"estimatedEffort,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	RelatedIssues   []string        `json:"relatedIssues,omitempty"`
}

func (a AIAnalysis) Validate() error {
	if a.Confidence < 0 || a.Confidence > 100 {
		return errors.Errorf("confidence %d out of [0,100]", a.Confidence)
	}
	if a.EstimatedEffort != "" && !a.EstimatedEffort.IsValid() {
		return errors.Errorf("unknown estimated effort %q", a.EstimatedEffort)
	}
	return nil
}

type Issue struct {
	gorm.Model

	RepoID uint // set at creation, never reassigned

	// GitHub issue information (if it's a GitHub issue)
	GithubIssueID     *int64
	GithubIssueNumber *int

	Title       string
	Description string

	Type     IssueType
	Severity Severity
	Category Category

	// code location
	FilePath          string
	Line              *int
	Column            *int
	CodeSnippet       string
	AffectedLineStart *int
	AffectedLineEnd   *int

	Status IssueStatus

	AIAnalysisJSON []byte // marshalled AIAnalysis, nil when absent

	// resolution record: populated iff Status == resolved
	ResolutionMethod      ResolutionMethod
	ResolutionDescription string
	AppliedFix            string
	ResolvedByID          *uint
	ResolvedAt            *time.Time
	CommitHash            string
	PullRequestURL        string

	ReportedByID uint // set at creation, never reassigned
	AssignedToID *uint

	Priority     int
	ViewCount    int
	LastViewedAt *time.Time
}

func (i *Issue) IsResolved() bool {
	return i.Status == IssueStatusResolved
}

// CountsTowardStats reports whether the issue contributes to the repo's
// aggregated stats snapshot.
func (i *Issue) CountsTowardStats() bool {
	return i.Status != IssueStatusClosed && i.Status != IssueStatusIgnored
}

func (i *Issue) SetAIAnalysis(a *AIAnalysis) error {
	if a == nil {
		i.AIAnalysisJSON = nil
		return nil
	}

	if err := a.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "can't marshal ai analysis")
	}

	i.AIAnalysisJSON = data
	return nil
}

func (i *Issue) AIAnalysis() (*AIAnalysis, error) {
	if len(i.AIAnalysisJSON) == 0 {
		return nil, nil
	}

	var a AIAnalysis
	if err := json.Unmarshal(i.AIAnalysisJSON, &a); err != nil {
		return nil, errors.Wrap(err, "can't unmarshal ai analysis")
	}

	return &a, nil
}

// ClearResolution drops the whole resolution record, used on reopen.
func (i *Issue) ClearResolution() {
	i.ResolutionMethod = ""
	i.ResolutionDescription = ""
	i.AppliedFix = ""
	i.ResolvedByID = nil
	i.ResolvedAt = nil
	i.CommitHash = ""
	i.PullRequestURL = ""
}
