package repoanalysis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repoanalysis"
	"github.com/Shubhamkahar196/CodeFixer/test/sharedtest"
)

var testNow = time.Date(2019, 3, 7, 12, 0, 0, 0, time.UTC)

func newService() *repoanalysis.BasicService {
	s := repoanalysis.NewBasicService()
	s.Now = func() time.Time {
		return testNow
	}
	return s
}

func TestStartAnalysis(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	for _, from := range []models.AnalysisStatus{
		models.AnalysisStatusPending,
		models.AnalysisStatusCompleted,
		models.AnalysisStatusFailed,
	} {
		repo := sharedtest.CreateRepo(t, db, u.ID, from)

		got, err := s.StartAnalysis(rc, repo.ID)
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, models.AnalysisStatusAnalyzing, got.AnalysisStatus)

		var run models.AnalysisRun
		require.NoError(t, db.Where("repo_id = ?", repo.ID).First(&run).Error)
		assert.NotEmpty(t, run.AnalysisGUID)
		assert.Equal(t, models.AnalysisStatusAnalyzing, run.Status)
		assert.Equal(t, testNow, run.StartedAt.UTC())

		require.NoError(t, db.Unscoped().Delete(&models.Repo{}, repo.ID).Error)
	}
}

func TestStartAnalysisSingleFlight(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	_, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)

	_, err = s.StartAnalysis(rc, repo.ID)
	require.True(t, apierrors.IsInvalidStateError(err))

	var runCount int
	require.NoError(t, db.Model(&models.AnalysisRun{}).Where("repo_id = ?", repo.ID).Count(&runCount).Error)
	assert.Equal(t, 1, runCount)
}

func TestStartAnalysisUnknownRepo(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	s := newService()

	_, err := s.StartAnalysis(sharedtest.AuthorizedContext(db, u), 9999)
	assert.True(t, apierrors.IsNotFoundError(err))
}

func TestCompleteAnalysis(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	sharedtest.CreateIssue(t, db, repo.ID, u.ID, models.SeverityCritical, models.IssueStatusOpen)
	sharedtest.CreateIssue(t, db, repo.ID, u.ID, models.SeverityHigh, models.IssueStatusOpen)
	sharedtest.CreateIssue(t, db, repo.ID, u.ID, models.SeverityLow, models.IssueStatusInProgress)
	sharedtest.CreateIssue(t, db, repo.ID, u.ID, models.SeverityCritical, models.IssueStatusIgnored)

	_, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)

	got, err := s.CompleteAnalysis(rc, repo.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisStatusCompleted, got.AnalysisStatus)
	assert.Equal(t, 1, got.AnalysisCount)
	require.NotNil(t, got.LastAnalyzedAt)
	assert.Equal(t, testNow, got.LastAnalyzedAt.UTC())
	assert.Empty(t, got.LastAnalysisError)

	assert.Equal(t, 3, got.TotalIssues)
	assert.Equal(t, 1, got.CriticalIssues)
	assert.Equal(t, 1, got.WarningIssues)
	assert.Equal(t, 1, got.InfoIssues)
	require.NotNil(t, got.HealthScore)
	assert.Equal(t, 85, *got.HealthScore) // 100 - 10 - 4 - 1

	var run models.AnalysisRun
	require.NoError(t, db.Where("repo_id = ?", repo.ID).First(&run).Error)
	assert.Equal(t, models.AnalysisStatusCompleted, run.Status)
	require.NotNil(t, run.FinishedAt)

	var owner models.User
	require.NoError(t, db.First(&owner, u.ID).Error)
	assert.Equal(t, 1, owner.RepositoriesAnalyzed)
}

func TestCompleteAnalysisRequiresAnalyzing(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	_, err := s.CompleteAnalysis(rc, repo.ID)
	assert.True(t, apierrors.IsInvalidStateError(err))

	_, err = s.FailAnalysis(rc, repo.ID, "broken")
	assert.True(t, apierrors.IsInvalidStateError(err))
}

func TestCompleteAnalysisRollsBackOnStoreFailure(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	sharedtest.CreateIssue(t, db, repo.ID, u.ID, models.SeverityCritical, models.IssueStatusOpen)

	_, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)

	// break the store mid-operation: closing the run must now fail,
	// after the repo status/stats update already ran in the transaction
	require.NoError(t, db.DropTable(&models.AnalysisRun{}).Error)

	_, err = s.CompleteAnalysis(rc, repo.ID)
	require.Error(t, err)
	assert.True(t, apierrors.IsStorageError(err))

	// the whole transaction rolled back: no half-applied completion
	var stored models.Repo
	require.NoError(t, db.First(&stored, repo.ID).Error)
	assert.Equal(t, models.AnalysisStatusAnalyzing, stored.AnalysisStatus)
	assert.Nil(t, stored.LastAnalyzedAt)
	assert.Zero(t, stored.AnalysisCount)
	assert.Zero(t, stored.TotalIssues)
	assert.Zero(t, stored.CriticalIssues)
	assert.Nil(t, stored.HealthScore)

	var owner models.User
	require.NoError(t, db.First(&owner, u.ID).Error)
	assert.Zero(t, owner.RepositoriesAnalyzed)
}

func TestFailAnalysisKeepsLastGoodStats(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	sharedtest.CreateIssue(t, db, repo.ID, u.ID, models.SeverityHigh, models.IssueStatusOpen)

	_, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)
	first, err := s.CompleteAnalysis(rc, repo.ID)
	require.NoError(t, err)
	require.NotNil(t, first.HealthScore)

	_, err = s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)
	got, err := s.FailAnalysis(rc, repo.ID, "clone timeout")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisStatusFailed, got.AnalysisStatus)
	assert.Equal(t, 2, got.AnalysisCount)
	assert.Equal(t, "clone timeout", got.LastAnalysisError)

	var stored models.Repo
	require.NoError(t, db.First(&stored, repo.ID).Error)
	assert.Equal(t, first.TotalIssues, stored.TotalIssues)
	require.NotNil(t, stored.HealthScore)
	assert.Equal(t, *first.HealthScore, *stored.HealthScore)

	var failedRun models.AnalysisRun
	require.NoError(t, db.Where("repo_id = ? AND status = ?", repo.ID, models.AnalysisStatusFailed).
		First(&failedRun).Error)
	assert.Equal(t, "clone timeout", failedRun.FailReason)
}

func TestRetryAfterFailure(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	_, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)
	_, err = s.FailAnalysis(rc, repo.ID, "oom")
	require.NoError(t, err)

	got, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusAnalyzing, got.AnalysisStatus)

	got, err = s.CompleteAnalysis(rc, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisStatusCompleted, got.AnalysisStatus)
	assert.Equal(t, 2, got.AnalysisCount)
	assert.Empty(t, got.LastAnalysisError)
}

func TestListPendingAnalysis(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	s := newService()

	mkRepo := func(name string, status models.AnalysisStatus) *models.Repo {
		r := models.Repo{
			UserID:         u.ID,
			Name:           name,
			DisplayName:    name,
			GithubID:       int64(len(name) * 1000),
			AnalysisStatus: status,
		}
		require.NoError(t, db.Create(&r).Error)
		return &r
	}

	pending := mkRepo("t/a", models.AnalysisStatusPending)
	mkRepo("t/bb", models.AnalysisStatusAnalyzing)
	mkRepo("t/ccc", models.AnalysisStatusCompleted)
	failed := mkRepo("t/dddd", models.AnalysisStatusFailed)

	got, err := s.ListPendingAnalysis(sharedtest.AnonymousContext(db))
	require.NoError(t, err)
	require.Len(t, got, 2)

	// oldest registered first
	assert.Equal(t, pending.ID, got[0].ID)
	assert.Equal(t, failed.ID, got[1].ID)
}

func TestGetRun(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)
	s := newService()

	_, err := s.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)

	var created models.AnalysisRun
	require.NoError(t, db.Where("repo_id = ?", repo.ID).First(&created).Error)

	got, err := s.GetRun(rc.ToAnonymousContext(), created.AnalysisGUID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.GetRun(rc.ToAnonymousContext(), "no-such-guid")
	assert.True(t, apierrors.IsNotFoundError(err))
}
