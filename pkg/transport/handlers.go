package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/apperrors"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/request"
	"github.com/Shubhamkahar196/CodeFixer/pkg/returntypes"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/issues"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repo"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repoanalysis"
)

// UserIDHeader carries the identity verified by the upstream auth layer.
const UserIDHeader = "X-Auth-User-Id"

type Server struct {
	Log        logutil.Log
	ErrTracker apperrors.Tracker
	DB         *gorm.DB

	RepoService         repo.Service
	RepoAnalysisService repoanalysis.Service
	IssueService        issues.Service
}

func (s Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/repos", s.handleCreateRepo).Methods(http.MethodPost)
	r.HandleFunc("/v1/repos", s.handleListRepos).Methods(http.MethodGet)
	r.HandleFunc("/v1/repos/pending", s.handleListPendingAnalysis).Methods(http.MethodGet)
	r.HandleFunc("/v1/repos/{repoid}", s.handleGetRepo).Methods(http.MethodGet)

	r.HandleFunc("/v1/repos/{repoid}/analyzes", s.handleStartAnalysis).Methods(http.MethodPost)
	r.HandleFunc("/v1/repos/{repoid}/analyzes/complete", s.handleCompleteAnalysis).Methods(http.MethodPut)
	r.HandleFunc("/v1/repos/{repoid}/analyzes/fail", s.handleFailAnalysis).Methods(http.MethodPut)
	r.HandleFunc("/v1/analyzes/{analysisguid}", s.handleGetRun).Methods(http.MethodGet)

	r.HandleFunc("/v1/repos/{repoid}/issues", s.handleListRepoIssues).Methods(http.MethodGet)
	r.HandleFunc("/v1/issues", s.handleReportIssue).Methods(http.MethodPost)
	r.HandleFunc("/v1/issues", s.handleListOpenIssues).Methods(http.MethodGet)
	r.HandleFunc("/v1/issues/attention", s.handleListNeedingAttention).Methods(http.MethodGet)
	r.HandleFunc("/v1/issues/{issueid}/comments", s.handleAddComment).Methods(http.MethodPost)
	r.HandleFunc("/v1/issues/{issueid}/comments", s.handleListComments).Methods(http.MethodGet)
	r.HandleFunc("/v1/issues/{issueid}/resolve", s.handleResolveIssue).Methods(http.MethodPost)
	r.HandleFunc("/v1/issues/{issueid}/status", s.handleChangeIssueStatus).Methods(http.MethodPut)
	r.HandleFunc("/v1/issues/{issueid}/assignee", s.handleReassignIssue).Methods(http.MethodPut)
	r.HandleFunc("/v1/issues/{issueid}/priority", s.handleSetIssuePriority).Methods(http.MethodPut)
	r.HandleFunc("/v1/issues/{issueid}/view", s.handleRecordIssueView).Methods(http.MethodPost)
}

func (s Server) makeBaseContext(r *http.Request) request.BaseContext {
	lctx := logutil.Context{}
	return request.BaseContext{
		Ctx:       r.Context(),
		Log:       logutil.WrapLogWithContext(s.Log, lctx),
		Lctx:      lctx,
		DB:        s.DB,
		StartedAt: time.Now(),
	}
}

func (s Server) anonymousContext(r *http.Request) *request.AnonymousContext {
	return &request.AnonymousContext{
		BaseContext: s.makeBaseContext(r),
	}
}

func (s Server) authorizedContext(r *http.Request) (*request.AuthorizedContext, error) {
	userIDStr := r.Header.Get(UserIDHeader)
	if userIDStr == "" {
		return nil, apierrors.NewValidationErrorf("user", "no verified identity on request")
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return nil, apierrors.NewValidationErrorf("user", "malformed user id %q", userIDStr)
	}

	var user models.User
	if err := s.DB.First(&user, uint(userID)).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, apierrors.NewNotFoundError("user", uint(userID))
		}
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch user %d", userID))
	}
	if !user.IsActive {
		return nil, apierrors.NewValidationErrorf("user", "account is deactivated")
	}

	return &request.AuthorizedContext{
		BaseContext: s.makeBaseContext(r),
		User:        &user,
	}, nil
}

func (s Server) respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		if !apierrors.IsValidationError(err) && !apierrors.IsNotFoundError(err) && !apierrors.IsInvalidStateError(err) {
			s.ErrTracker.WithHTTPRequest(r).Track(apperrors.LevelError, err.Error(), nil)
		}
		encodeError(w, err)
		return
	}

	encodeResponse(w, v)
}

func parseUintVar(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, apierrors.NewValidationErrorf(name, "must be a positive integer")
	}
	return uint(v), nil
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierrors.NewValidationErrorf("body", "invalid payload json: %s", err)
	}
	return nil
}

func (s Server) handleCreateRepo(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req repo.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.RepoService.Create(rc, &req)
	s.respond(w, r, ret, err)
}

func (s Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.RepoService.List(rc)
	s.respond(w, r, ret, err)
}

func (s Server) handleGetRepo(w http.ResponseWriter, r *http.Request) {
	repoID, err := parseUintVar(r, "repoid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.RepoService.Get(s.anonymousContext(r), repoID)
	s.respond(w, r, ret, err)
}

func (s Server) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	repoID, err := parseUintVar(r, "repoid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.RepoAnalysisService.StartAnalysis(rc, repoID)
	s.respondRepo(w, r, ret, err)
}

func (s Server) handleCompleteAnalysis(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	repoID, err := parseUintVar(r, "repoid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.RepoAnalysisService.CompleteAnalysis(rc, repoID)
	s.respondRepo(w, r, ret, err)
}

func (s Server) handleFailAnalysis(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	repoID, err := parseUintVar(r, "repoid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.RepoAnalysisService.FailAnalysis(rc, repoID, req.Reason)
	s.respondRepo(w, r, ret, err)
}

func (s Server) respondRepo(w http.ResponseWriter, r *http.Request, ret *models.Repo, err error) {
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}
	s.respond(w, r, returntypes.WrappedRepoInfo{Repo: returntypes.NewRepoInfo(ret)}, nil)
}

func (s Server) handleListPendingAnalysis(w http.ResponseWriter, r *http.Request) {
	repos, err := s.RepoAnalysisService.ListPendingAnalysis(s.anonymousContext(r))
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	resp := returntypes.RepoListResponse{
		Repos: make([]returntypes.RepoInfo, 0, len(repos)),
	}
	for i := range repos {
		resp.Repos = append(resp.Repos, returntypes.NewRepoInfo(&repos[i]))
	}
	s.respond(w, r, resp, nil)
}

func (s Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ret, err := s.RepoAnalysisService.GetRun(s.anonymousContext(r), mux.Vars(r)["analysisguid"])
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}
	s.respond(w, r, returntypes.NewRunInfo(ret), nil)
}

func (s Server) handleReportIssue(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req issues.ReportRequest
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.Report(rc, &req)
	s.respondIssue(w, r, ret, err)
}

func (s Server) respondIssue(w http.ResponseWriter, r *http.Request, ret *models.Issue, err error) {
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}
	s.respond(w, r, returntypes.NewIssueInfo(ret), nil)
}

func (s Server) respondIssueList(w http.ResponseWriter, r *http.Request, ret []models.Issue, err error) {
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	resp := returntypes.IssueListResponse{
		Issues: make([]returntypes.IssueInfo, 0, len(ret)),
	}
	for i := range ret {
		resp.Issues = append(resp.Issues, returntypes.NewIssueInfo(&ret[i]))
	}
	s.respond(w, r, resp, nil)
}

func (s Server) handleListRepoIssues(w http.ResponseWriter, r *http.Request) {
	repoID, err := parseUintVar(r, "repoid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.ListByRepo(s.anonymousContext(r), repoID)
	s.respondIssueList(w, r, ret, err)
}

func (s Server) handleListOpenIssues(w http.ResponseWriter, r *http.Request) {
	ret, err := s.IssueService.ListOpen(s.anonymousContext(r))
	s.respondIssueList(w, r, ret, err)
}

func (s Server) handleListNeedingAttention(w http.ResponseWriter, r *http.Request) {
	ret, err := s.IssueService.ListNeedingAttention(s.anonymousContext(r))
	s.respondIssueList(w, r, ret, err)
}

func (s Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.AddComment(rc, issueID, req.Content)
	s.respondIssue(w, r, ret, err)
}

func (s Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.ListComments(s.anonymousContext(r), issueID)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	resp := returntypes.CommentListResponse{
		Comments: make([]returntypes.CommentInfo, 0, len(ret)),
	}
	for i := range ret {
		resp.Comments = append(resp.Comments, returntypes.NewCommentInfo(&ret[i]))
	}
	s.respond(w, r, resp, nil)
}

func (s Server) handleResolveIssue(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req issues.ResolveRequest
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}
	req.IssueID = issueID

	ret, err := s.IssueService.Resolve(rc, &req)
	s.respondIssue(w, r, ret, err)
}

func (s Server) handleChangeIssueStatus(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.ChangeStatus(rc, issueID, models.IssueStatus(req.Status))
	s.respondIssue(w, r, ret, err)
}

func (s Server) handleReassignIssue(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req struct {
		AssigneeID *uint `json:"assigneeId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.Reassign(rc, issueID, req.AssigneeID)
	s.respondIssue(w, r, ret, err)
}

func (s Server) handleSetIssuePriority(w http.ResponseWriter, r *http.Request) {
	rc, err := s.authorizedContext(r)
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	var req struct {
		Priority int `json:"priority"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respond(w, r, nil, err)
		return
	}

	ret, err := s.IssueService.SetPriority(rc, issueID, req.Priority)
	s.respondIssue(w, r, ret, err)
}

func (s Server) handleRecordIssueView(w http.ResponseWriter, r *http.Request) {
	issueID, err := parseUintVar(r, "issueid")
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}

	err = s.IssueService.RecordView(s.anonymousContext(r), issueID)
	s.respond(w, r, struct{}{}, err)
}
