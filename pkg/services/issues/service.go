package issues

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/db/gormdb"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/request"
)

type ReportRequest struct {
	RepoID uint

	Title       string
	Description string

	Type     models.IssueType
	Severity models.Severity
	Category models.Category

	FilePath          string
	Line              *int
	Column            *int
	CodeSnippet       string
	AffectedLineStart *int
	AffectedLineEnd   *int

	GithubIssueID     *int64
	GithubIssueNumber *int

	AIAnalysis *models.AIAnalysis
}

func (r ReportRequest) FillLogContext(lctx logutil.Context) {
	lctx["repo_id"] = r.RepoID
	lctx["severity"] = string(r.Severity)
}

type ResolveRequest struct {
	IssueID uint

	Method      models.ResolutionMethod
	Description string
	AppliedFix  string

	CommitHash     string
	PullRequestURL string
}

func (r ResolveRequest) FillLogContext(lctx logutil.Context) {
	lctx["issue_id"] = r.IssueID
	lctx["method"] = string(r.Method)
}

type Service interface {
	//url:/v1/issues method:POST
	Report(rc *request.AuthorizedContext, req *ReportRequest) (*models.Issue, error)

	//url:/v1/issues/{issueid}/comments method:POST
	AddComment(rc *request.AuthorizedContext, issueID uint, content string) (*models.Issue, error)

	//url:/v1/issues/{issueid}/resolve method:POST
	Resolve(rc *request.AuthorizedContext, req *ResolveRequest) (*models.Issue, error)

	//url:/v1/issues/{issueid}/status method:PUT
	ChangeStatus(rc *request.AuthorizedContext, issueID uint, newStatus models.IssueStatus) (*models.Issue, error)

	//url:/v1/issues/{issueid}/assignee method:PUT
	Reassign(rc *request.AuthorizedContext, issueID uint, assigneeID *uint) (*models.Issue, error)

	//url:/v1/issues/{issueid}/priority method:PUT
	SetPriority(rc *request.AuthorizedContext, issueID uint, priority int) (*models.Issue, error)

	//url:/v1/issues/{issueid}/view method:POST
	RecordView(rc *request.AnonymousContext, issueID uint) error

	//url:/v1/repos/{repoid}/issues method:GET
	ListByRepo(rc *request.AnonymousContext, repoID uint) ([]models.Issue, error)

	//url:/v1/issues method:GET
	ListOpen(rc *request.AnonymousContext) ([]models.Issue, error)

	//url:/v1/issues/attention method:GET
	ListNeedingAttention(rc *request.AnonymousContext) ([]models.Issue, error)

	//url:/v1/issues/{issueid}/comments method:GET
	ListComments(rc *request.AnonymousContext, issueID uint) ([]models.IssueComment, error)
}

type BasicService struct {
	Now func() time.Time
}

func NewBasicService() *BasicService {
	return &BasicService{
		Now: time.Now,
	}
}

func (s BasicService) validateReport(req *ReportRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apierrors.NewValidationErrorf("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > models.MaxIssueTitleLen {
		return apierrors.NewValidationErrorf("title", "must not exceed %d characters", models.MaxIssueTitleLen)
	}
	if strings.TrimSpace(req.Description) == "" {
		return apierrors.NewValidationErrorf("description", "must not be empty")
	}
	if !req.Type.IsValid() {
		return apierrors.NewValidationErrorf("type", "unknown issue type %q", req.Type)
	}
	if !req.Severity.IsValid() {
		return apierrors.NewValidationErrorf("severity", "unknown severity %q", req.Severity)
	}
	if !req.Category.IsValid() {
		return apierrors.NewValidationErrorf("category", "unknown category %q", req.Category)
	}
	if strings.TrimSpace(req.FilePath) == "" {
		return apierrors.NewValidationErrorf("filePath", "must not be empty")
	}
	return nil
}

func (s BasicService) Report(rc *request.AuthorizedContext, req *ReportRequest) (*models.Issue, error) {
	if err := s.validateReport(req); err != nil {
		return nil, err
	}

	var repo models.Repo
	if err := rc.DB.First(&repo, req.RepoID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, apierrors.NewNotFoundError("repo", req.RepoID)
		}
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch repo %d", req.RepoID))
	}

	issue := models.Issue{
		RepoID:            repo.ID,
		GithubIssueID:     req.GithubIssueID,
		GithubIssueNumber: req.GithubIssueNumber,
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		Type:              req.Type,
		Severity:          req.Severity,
		Category:          req.Category,
		FilePath:          strings.TrimSpace(req.FilePath),
		Line:              req.Line,
		Column:            req.Column,
		CodeSnippet:       req.CodeSnippet,
		AffectedLineStart: req.AffectedLineStart,
		AffectedLineEnd:   req.AffectedLineEnd,
		Status:            models.IssueStatusOpen,
		ReportedByID:      rc.User.ID,
		Priority:          models.DefaultIssuePriority,
	}
	if err := issue.SetAIAnalysis(req.AIAnalysis); err != nil {
		return nil, apierrors.NewValidationErrorf("aiAnalysis", "%s", err)
	}

	if err := rc.DB.Create(&issue).Error; err != nil {
		return nil, apierrors.NewStorageError(errors.Wrap(err, "can't create issue"))
	}

	rc.Log.Infof("Reported issue %d (%s/%s) for repo %s", issue.ID, issue.Type, issue.Severity, repo.Name)
	return &issue, nil
}

func (s BasicService) getIssue(db *gorm.DB, issueID uint) (*models.Issue, error) {
	var issue models.Issue
	if err := db.First(&issue, issueID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, apierrors.NewNotFoundError("issue", issueID)
		}
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch issue %d", issueID))
	}
	return &issue, nil
}

func (s BasicService) AddComment(rc *request.AuthorizedContext, issueID uint, content string) (*models.Issue, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierrors.NewValidationErrorf("content", "must not be empty")
	}

	issue, err := s.getIssue(rc.DB, issueID)
	if err != nil {
		return nil, err
	}

	comment := models.IssueComment{
		IssueID:  issue.ID,
		AuthorID: rc.User.ID,
		Content:  content,
	}
	comment.CreatedAt = s.Now()
	if err := rc.DB.Create(&comment).Error; err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't add comment to issue %d", issueID))
	}

	return issue, nil
}

func (s BasicService) Resolve(rc *request.AuthorizedContext, req *ResolveRequest) (retIssue *models.Issue, retErr error) {
	if !req.Method.IsValid() {
		return nil, apierrors.NewValidationErrorf("method", "unknown resolution method %q", req.Method)
	}

	issue, err := s.getIssue(rc.DB, req.IssueID)
	if err != nil {
		return nil, err
	}

	if !issue.Status.CanTransitionTo(models.IssueStatusResolved) {
		return nil, apierrors.NewInvalidStateError(string(issue.Status), "resolve issue")
	}

	tx, finishTx, err := gormdb.StartTx(rc.DB)
	if err != nil {
		return nil, apierrors.NewStorageError(err)
	}
	defer finishTx(&retErr)

	now := s.Now()
	resolvedBy := rc.User.ID
	// guard on the pre-checked status so a parallel transition loses cleanly
	res := tx.Model(&models.Issue{}).
		Where("id = ? AND status = ?", issue.ID, issue.Status).
		Updates(map[string]interface{}{
			"status":                 models.IssueStatusResolved,
			"resolution_method":      req.Method,
			"resolution_description": req.Description,
			"applied_fix":            req.AppliedFix,
			"resolved_by_id":         resolvedBy,
			"resolved_at":            now,
			"commit_hash":            req.CommitHash,
			"pull_request_url":       req.PullRequestURL,
		})
	if res.Error != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(res.Error, "can't resolve issue %d", issue.ID))
	}
	if res.RowsAffected == 0 {
		return nil, apierrors.NewInvalidStateError(string(issue.Status), "resolve issue")
	}

	err = tx.Model(&models.User{}).
		Where("id = ?", resolvedBy).
		Update("issues_fixed", gorm.Expr("issues_fixed + 1")).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't update resolver %d stats", resolvedBy))
	}

	issue.Status = models.IssueStatusResolved
	issue.ResolutionMethod = req.Method
	issue.ResolutionDescription = req.Description
	issue.AppliedFix = req.AppliedFix
	issue.ResolvedByID = &resolvedBy
	issue.ResolvedAt = &now
	issue.CommitHash = req.CommitHash
	issue.PullRequestURL = req.PullRequestURL

	rc.Log.Infof("Resolved issue %d via %s", issue.ID, req.Method)
	return issue, nil
}

func (s BasicService) ChangeStatus(rc *request.AuthorizedContext, issueID uint, newStatus models.IssueStatus) (*models.Issue, error) {
	if !newStatus.IsValid() {
		return nil, apierrors.NewValidationErrorf("status", "unknown status %q", newStatus)
	}
	if newStatus == models.IssueStatusResolved {
		// a resolution record is required, only Resolve can produce one
		return nil, apierrors.NewValidationErrorf("status", "resolved status must be set via the resolve operation")
	}

	issue, err := s.getIssue(rc.DB, issueID)
	if err != nil {
		return nil, err
	}

	if !issue.Status.CanTransitionTo(newStatus) {
		return nil, apierrors.NewInvalidStateError(string(issue.Status), "change status to "+string(newStatus))
	}

	updates := map[string]interface{}{
		"status": newStatus,
	}
	if issue.Status.IsTerminal() && newStatus == models.IssueStatusOpen {
		// reopen drops the resolution record
		updates["resolution_method"] = ""
		updates["resolution_description"] = ""
		updates["applied_fix"] = ""
		updates["resolved_by_id"] = nil
		updates["resolved_at"] = nil
		updates["commit_hash"] = ""
		updates["pull_request_url"] = ""
	}

	res := rc.DB.Model(&models.Issue{}).
		Where("id = ? AND status = ?", issue.ID, issue.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(res.Error, "can't change status of issue %d", issue.ID))
	}
	if res.RowsAffected == 0 {
		return nil, apierrors.NewInvalidStateError(string(issue.Status), "change status to "+string(newStatus))
	}

	prevStatus := issue.Status
	issue.Status = newStatus
	if prevStatus.IsTerminal() && newStatus == models.IssueStatusOpen {
		issue.ClearResolution()
	}

	rc.Log.Infof("Changed issue %d status: %s -> %s", issue.ID, prevStatus, newStatus)
	return issue, nil
}

func (s BasicService) Reassign(rc *request.AuthorizedContext, issueID uint, assigneeID *uint) (*models.Issue, error) {
	issue, err := s.getIssue(rc.DB, issueID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		var assignee models.User
		if err := rc.DB.First(&assignee, *assigneeID).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil, apierrors.NewNotFoundError("user", *assigneeID)
			}
			return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch user %d", *assigneeID))
		}
	}

	err = rc.DB.Model(issue).Update("assigned_to_id", assigneeID).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't reassign issue %d", issue.ID))
	}

	issue.AssignedToID = assigneeID
	return issue, nil
}

func (s BasicService) SetPriority(rc *request.AuthorizedContext, issueID uint, priority int) (*models.Issue, error) {
	if priority < models.MinIssuePriority || priority > models.MaxIssuePriority {
		return nil, apierrors.NewValidationErrorf("priority", "must be in [%d, %d]",
			models.MinIssuePriority, models.MaxIssuePriority)
	}

	issue, err := s.getIssue(rc.DB, issueID)
	if err != nil {
		return nil, err
	}

	if err := rc.DB.Model(issue).Update("priority", priority).Error; err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't set priority of issue %d", issue.ID))
	}

	issue.Priority = priority
	return issue, nil
}

// RecordView is a pure side effect: no validation, no error on absent issue.
func (s BasicService) RecordView(rc *request.AnonymousContext, issueID uint) error {
	err := rc.DB.Model(&models.Issue{}).
		Where("id = ?", issueID).
		Updates(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + 1"),
			"last_viewed_at": s.Now(),
		}).Error
	if err != nil {
		return apierrors.NewStorageError(errors.Wrapf(err, "can't record view of issue %d", issueID))
	}
	return nil
}

func (s BasicService) ListByRepo(rc *request.AnonymousContext, repoID uint) ([]models.Issue, error) {
	var issues []models.Issue
	err := rc.DB.
		Where("repo_id = ?", repoID).
		Order("created_at desc, id desc").
		Find(&issues).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't list issues of repo %d", repoID))
	}
	return issues, nil
}

func (s BasicService) ListOpen(rc *request.AnonymousContext) ([]models.Issue, error) {
	var issues []models.Issue
	err := rc.DB.
		Where("status IN (?)", []string{string(models.IssueStatusOpen), string(models.IssueStatusInProgress)}).
		Order("created_at desc, id desc").
		Find(&issues).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrap(err, "can't list open issues"))
	}
	return issues, nil
}

func (s BasicService) ListNeedingAttention(rc *request.AnonymousContext) ([]models.Issue, error) {
	var issues []models.Issue
	err := rc.DB.
		Where("status = ? AND severity = ?", models.IssueStatusOpen, models.SeverityCritical).
		Order("created_at asc, id asc").
		Find(&issues).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrap(err, "can't list issues needing attention"))
	}
	return issues, nil
}

func (s BasicService) ListComments(rc *request.AnonymousContext, issueID uint) ([]models.IssueComment, error) {
	if _, err := s.getIssue(rc.DB, issueID); err != nil {
		return nil, err
	}

	var comments []models.IssueComment
	err := rc.DB.
		Where("issue_id = ?", issueID).
		Order("id asc").
		Find(&comments).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't list comments of issue %d", issueID))
	}
	return comments, nil
}
