package analyzes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/config"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/crons/analyzes"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repoanalysis"
	"github.com/Shubhamkahar196/CodeFixer/test/sharedtest"
)

func TestStalerFailsStaleRuns(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)

	svc := repoanalysis.NewBasicService()
	_, err := svc.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)

	// backdate the run past the processing timeout
	staleStart := time.Now().Add(-3 * time.Hour)
	require.NoError(t, db.Model(&models.AnalysisRun{}).
		Where("repo_id = ?", repo.ID).
		Update("started_at", staleStart).Error)

	log := logutil.NewStderrLog("staler-test")
	staler := analyzes.Staler{
		Cfg:     config.NewEnvConfig(log),
		DB:      db,
		Log:     log,
		Service: svc,
	}

	failed, err := staler.RunIteration(2 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	var stored models.Repo
	require.NoError(t, db.First(&stored, repo.ID).Error)
	assert.Equal(t, models.AnalysisStatusFailed, stored.AnalysisStatus)
	assert.Equal(t, "processing timeout", stored.LastAnalysisError)

	var run models.AnalysisRun
	require.NoError(t, db.Where("repo_id = ?", repo.ID).First(&run).Error)
	assert.Equal(t, models.AnalysisStatusFailed, run.Status)
	assert.Equal(t, "processing timeout", run.FailReason)
}

func TestStalerSkipsFreshRuns(t *testing.T) {
	db := sharedtest.InitDB(t)
	u := sharedtest.CreateUser(t, db)
	repo := sharedtest.CreateRepo(t, db, u.ID, models.AnalysisStatusPending)
	rc := sharedtest.AuthorizedContext(db, u)

	svc := repoanalysis.NewBasicService()
	_, err := svc.StartAnalysis(rc, repo.ID)
	require.NoError(t, err)

	log := logutil.NewStderrLog("staler-test")
	staler := analyzes.Staler{
		Cfg:     config.NewEnvConfig(log),
		DB:      db,
		Log:     log,
		Service: svc,
	}

	failed, err := staler.RunIteration(2 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, failed)

	var stored models.Repo
	require.NoError(t, db.First(&stored, repo.ID).Error)
	assert.Equal(t, models.AnalysisStatusAnalyzing, stored.AnalysisStatus)
}
