package analyzes

import (
	"context"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/config"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/request"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repoanalysis"
)

// Staler is the operator escape hatch for repos stuck in "analyzing": the
// engine has no preemption primitive, so runs whose analyzer died get
// force-failed after a processing timeout.
type Staler struct {
	Cfg config.Config
	DB  *gorm.DB
	Log logutil.Log

	Service repoanalysis.Service
}

func (s Staler) Run() {
	timeout := s.Cfg.GetDuration("ANALYSIS_PROCESSING_TIMEOUT", 2*time.Hour)

	for range time.Tick(timeout / 2) {
		if _, err := s.RunIteration(timeout); err != nil {
			s.Log.Warnf("Can't check stale analyzes: %s", err)
			continue
		}
	}
}

func (s Staler) RunIteration(timeout time.Duration) (int, error) {
	var runs []models.AnalysisRun
	err := s.DB.
		Where("status = ? AND started_at < ?", models.AnalysisStatusAnalyzing, time.Now().Add(-timeout)).
		Find(&runs).Error
	if err != nil {
		return 0, errors.Wrap(err, "can't get stale analysis runs")
	}

	if len(runs) == 0 {
		return 0, nil
	}

	for _, run := range runs {
		if err = s.failStaleRun(&run); err != nil {
			s.Log.Errorf("Can't fail stale analysis run %s: %s", run.AnalysisGUID, err)
		}
	}

	return len(runs), nil
}

func (s Staler) failStaleRun(run *models.AnalysisRun) error {
	var repo models.Repo
	if err := s.DB.First(&repo, run.RepoID).Error; err != nil {
		return errors.Wrap(err, "failed to fetch repo")
	}

	excludeRepos := s.Cfg.GetStringList("STALER_EXCLUDE_REPOS")
	for _, er := range excludeRepos {
		if strings.EqualFold(er, repo.Name) {
			s.Log.Infof("Staler: exclude repo %s from staling", repo.Name)
			return nil
		}
	}

	rc := &request.AuthorizedContext{
		BaseContext: request.BaseContext{
			Ctx:       context.Background(),
			Log:       s.Log,
			DB:        s.DB,
			StartedAt: time.Now(),
		},
	}

	if _, err := s.Service.FailAnalysis(rc, repo.ID, "processing timeout"); err != nil {
		return errors.Wrap(err, "can't force-fail analysis")
	}

	s.Log.Warnf("Force-failed stale analysis %s of repo %s", run.AnalysisGUID, repo.Name)
	return nil
}
