package repoanalysis

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/db/gormdb"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/analyzes/stats"
	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/request"
)

type Context struct {
	RepoID       uint
	AnalysisGUID string
}

func (c Context) FillLogContext(lctx logutil.Context) {
	lctx["repo_id"] = c.RepoID
	if c.AnalysisGUID != "" {
		lctx["analysis_guid"] = c.AnalysisGUID
	}
}

type Service interface {
	//url:/v1/repos/{repoid}/analyzes method:POST
	StartAnalysis(rc *request.AuthorizedContext, repoID uint) (*models.Repo, error)

	//url:/v1/repos/{repoid}/analyzes/complete method:PUT
	CompleteAnalysis(rc *request.AuthorizedContext, repoID uint) (*models.Repo, error)

	//url:/v1/repos/{repoid}/analyzes/fail method:PUT
	FailAnalysis(rc *request.AuthorizedContext, repoID uint, reason string) (*models.Repo, error)

	//url:/v1/repos/pending method:GET
	ListPendingAnalysis(rc *request.AnonymousContext) ([]models.Repo, error)

	//url:/v1/analyzes/{analysisguid} method:GET
	GetRun(rc *request.AnonymousContext, analysisGUID string) (*models.AnalysisRun, error)
}

type BasicService struct {
	Now func() time.Time
}

func NewBasicService() *BasicService {
	return &BasicService{
		Now: time.Now,
	}
}

func (s BasicService) getRepo(db *gorm.DB, repoID uint) (*models.Repo, error) {
	var repo models.Repo
	if err := db.First(&repo, repoID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, apierrors.NewNotFoundError("repo", repoID)
		}
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch repo %d", repoID))
	}
	return &repo, nil
}

// StartAnalysis is the single-flight gate: the status flip to "analyzing" is
// one conditional UPDATE, so of two racing callers exactly one wins and the
// loser gets an InvalidStateError.
func (s BasicService) StartAnalysis(rc *request.AuthorizedContext, repoID uint) (retRepo *models.Repo, retErr error) {
	repo, err := s.getRepo(rc.DB, repoID)
	if err != nil {
		return nil, err
	}

	tx, finishTx, err := gormdb.StartTx(rc.DB)
	if err != nil {
		return nil, apierrors.NewStorageError(err)
	}
	defer finishTx(&retErr)

	allowedFrom := []string{
		string(models.AnalysisStatusPending),
		string(models.AnalysisStatusCompleted),
		string(models.AnalysisStatusFailed),
	}
	res := tx.Model(&models.Repo{}).
		Where("id = ? AND analysis_status IN (?)", repoID, allowedFrom).
		Update("analysis_status", models.AnalysisStatusAnalyzing)
	if res.Error != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(res.Error, "can't start analysis of repo %d", repoID))
	}
	if res.RowsAffected == 0 {
		cur, curErr := s.getRepo(tx, repoID)
		if curErr != nil {
			return nil, curErr
		}
		return nil, apierrors.NewInvalidStateError(string(cur.AnalysisStatus), "start analysis")
	}

	run := models.AnalysisRun{
		RepoID:       repo.ID,
		AnalysisGUID: uuid.NewV4().String(),
		Status:       models.AnalysisStatusAnalyzing,
		StartedAt:    s.Now(),
	}
	if err := tx.Create(&run).Error; err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't create analysis run for repo %d", repoID))
	}

	repo.AnalysisStatus = models.AnalysisStatusAnalyzing
	rc.Log.Infof("Started analysis %s of repo %s", run.AnalysisGUID, repo.Name)
	return repo, nil
}

// CompleteAnalysis recomputes the repo's aggregated stats from the current
// issue snapshot and commits them atomically with the analyzing -> completed
// transition: status and stats are never visible half-applied.
func (s BasicService) CompleteAnalysis(rc *request.AuthorizedContext, repoID uint) (retRepo *models.Repo, retErr error) {
	repo, err := s.getRepo(rc.DB, repoID)
	if err != nil {
		return nil, err
	}
	if repo.AnalysisStatus != models.AnalysisStatusAnalyzing {
		return nil, apierrors.NewInvalidStateError(string(repo.AnalysisStatus), "complete analysis")
	}

	tx, finishTx, err := gormdb.StartTx(rc.DB)
	if err != nil {
		return nil, apierrors.NewStorageError(err)
	}
	defer finishTx(&retErr)

	var issues []models.Issue
	if err := tx.Where("repo_id = ?", repoID).Find(&issues).Error; err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch issues of repo %d", repoID))
	}

	repoStats := stats.Calculator{}.Calc(issues)

	now := s.Now()
	res := tx.Model(&models.Repo{}).
		Where("id = ? AND analysis_status = ?", repoID, models.AnalysisStatusAnalyzing).
		Updates(map[string]interface{}{
			"analysis_status":     models.AnalysisStatusCompleted,
			"last_analyzed_at":    now,
			"analysis_count":      gorm.Expr("analysis_count + 1"),
			"last_analysis_error": "",
			"total_issues":        repoStats.TotalIssues,
			"critical_issues":     repoStats.CriticalIssues,
			"warning_issues":      repoStats.WarningIssues,
			"info_issues":         repoStats.InfoIssues,
			"health_score":        repoStats.HealthScore,
		})
	if res.Error != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(res.Error, "can't complete analysis of repo %d", repoID))
	}
	if res.RowsAffected == 0 {
		cur, curErr := s.getRepo(tx, repoID)
		if curErr != nil {
			return nil, curErr
		}
		return nil, apierrors.NewInvalidStateError(string(cur.AnalysisStatus), "complete analysis")
	}

	if err := s.finishRun(tx, repoID, models.AnalysisStatusCompleted, "", now); err != nil {
		return nil, err
	}

	err = tx.Model(&models.User{}).
		Where("id = ?", repo.UserID).
		Update("repositories_analyzed", gorm.Expr("repositories_analyzed + 1")).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't update user %d stats", repo.UserID))
	}

	repo.AnalysisStatus = models.AnalysisStatusCompleted
	repo.LastAnalyzedAt = &now
	repo.AnalysisCount++
	repo.LastAnalysisError = ""
	repo.TotalIssues = repoStats.TotalIssues
	repo.CriticalIssues = repoStats.CriticalIssues
	repo.WarningIssues = repoStats.WarningIssues
	repo.InfoIssues = repoStats.InfoIssues
	healthScore := repoStats.HealthScore
	repo.HealthScore = &healthScore

	rc.Log.Infof("Completed analysis of repo %s: %d issues, health score %d",
		repo.Name, repoStats.TotalIssues, repoStats.HealthScore)
	return repo, nil
}

// FailAnalysis closes the run without touching the aggregated stats: the
// snapshot from the last successful run stays visible (last known good).
func (s BasicService) FailAnalysis(rc *request.AuthorizedContext, repoID uint, reason string) (retRepo *models.Repo, retErr error) {
	repo, err := s.getRepo(rc.DB, repoID)
	if err != nil {
		return nil, err
	}
	if repo.AnalysisStatus != models.AnalysisStatusAnalyzing {
		return nil, apierrors.NewInvalidStateError(string(repo.AnalysisStatus), "fail analysis")
	}

	tx, finishTx, err := gormdb.StartTx(rc.DB)
	if err != nil {
		return nil, apierrors.NewStorageError(err)
	}
	defer finishTx(&retErr)

	now := s.Now()
	res := tx.Model(&models.Repo{}).
		Where("id = ? AND analysis_status = ?", repoID, models.AnalysisStatusAnalyzing).
		Updates(map[string]interface{}{
			"analysis_status":     models.AnalysisStatusFailed,
			"last_analyzed_at":    now,
			"analysis_count":      gorm.Expr("analysis_count + 1"),
			"last_analysis_error": reason,
		})
	if res.Error != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(res.Error, "can't fail analysis of repo %d", repoID))
	}
	if res.RowsAffected == 0 {
		cur, curErr := s.getRepo(tx, repoID)
		if curErr != nil {
			return nil, curErr
		}
		return nil, apierrors.NewInvalidStateError(string(cur.AnalysisStatus), "fail analysis")
	}

	if err := s.finishRun(tx, repoID, models.AnalysisStatusFailed, reason, now); err != nil {
		return nil, err
	}

	repo.AnalysisStatus = models.AnalysisStatusFailed
	repo.LastAnalyzedAt = &now
	repo.AnalysisCount++
	repo.LastAnalysisError = reason

	rc.Log.Warnf("Failed analysis of repo %s: %s", repo.Name, reason)
	return repo, nil
}

func (s BasicService) finishRun(tx *gorm.DB, repoID uint, status models.AnalysisStatus, failReason string, finishedAt time.Time) error {
	var run models.AnalysisRun
	err := tx.Where("repo_id = ? AND status = ?", repoID, models.AnalysisStatusAnalyzing).
		Order("id desc").
		First(&run).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil // repo got into analyzing without a run record, e.g. by an operator
		}
		return apierrors.NewStorageError(errors.Wrapf(err, "can't fetch open analysis run of repo %d", repoID))
	}

	err = tx.Model(&run).Updates(map[string]interface{}{
		"status":      status,
		"fail_reason": failReason,
		"finished_at": finishedAt,
	}).Error
	if err != nil {
		return apierrors.NewStorageError(errors.Wrapf(err, "can't finish analysis run %s", run.AnalysisGUID))
	}
	return nil
}

// ListPendingAnalysis returns repos awaiting a run, oldest registered first.
func (s BasicService) ListPendingAnalysis(rc *request.AnonymousContext) ([]models.Repo, error) {
	var repos []models.Repo
	err := rc.DB.
		Where("analysis_status IN (?)", []string{
			string(models.AnalysisStatusPending),
			string(models.AnalysisStatusFailed),
		}).
		Order("created_at asc, id asc").
		Find(&repos).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrap(err, "can't list repos pending analysis"))
	}
	return repos, nil
}

func (s BasicService) GetRun(rc *request.AnonymousContext, analysisGUID string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := rc.DB.Where("analysis_guid = ?", analysisGUID).First(&run).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, apierrors.NewNotFoundError("analysis run", 0)
		}
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't fetch analysis run %s", analysisGUID))
	}
	return &run, nil
}
