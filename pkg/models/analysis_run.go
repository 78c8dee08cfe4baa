package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// AnalysisRun is the per-run record: one row per startAnalysis, closed by
// completeAnalysis or failAnalysis. The repo's AnalysisStatus is the live
// state, runs keep the history addressable by GUID.
type AnalysisRun struct {
	gorm.Model

	RepoID uint

	AnalysisGUID string

	Status     AnalysisStatus
	FailReason string

	StartedAt  time.Time
	FinishedAt *time.Time
}
