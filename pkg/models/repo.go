package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
)

type AnalysisStatus string

const (
	AnalysisStatusPending   AnalysisStatus = "pending"
	AnalysisStatusAnalyzing AnalysisStatus = "analyzing"
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

func (s AnalysisStatus) IsValid() bool {
	switch s {
	case AnalysisStatusPending, AnalysisStatusAnalyzing, AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	}
	return false
}

func (s AnalysisStatus) IsTerminal() bool {
	return s == AnalysisStatusCompleted || s == AnalysisStatusFailed
}

// CanStartAnalysis reports whether a run may be launched from s. A repo
// already in "analyzing" never qualifies: one run per repo at a time.
func (s AnalysisStatus) CanStartAnalysis() bool {
	return s == AnalysisStatusPending || s.IsTerminal()
}

type Repo struct {
	gorm.Model

	UserID uint // user who registered this repo

	Name        string // lower-cased DisplayName to avoid case-sensitivity bugs
	DisplayName string // original name of repo from github: original register is saved

	// GitHub specific
	GithubID int64 // github repo id: use it (not name) as repo identifier because of repo renaming

	HTMLURL       string
	CloneURL      string
	DefaultBranch string
	Language      string
	IsPrivate     bool

	AnalysisStatus    AnalysisStatus
	LastAnalyzedAt    *time.Time
	AnalysisCount     int
	LastAnalysisError string

	// aggregated stats snapshot, rewritten as a whole on every completed run
	TotalIssues    int
	CriticalIssues int
	WarningIssues  int
	InfoIssues     int
	HealthScore    *int // nil until the first completed run
}

func (r *Repo) Owner() string {
	return strings.ToLower(strings.Split(r.Name, "/")[0])
}

func (r *Repo) Repo() string {
	return strings.ToLower(strings.Split(r.Name, "/")[1])
}

func (r *Repo) String() string {
	return r.Name
}

func (r *Repo) GoString() string {
	return fmt.Sprintf("{Name: %s, ID: %d, AnalysisStatus: %s}", r.Name, r.ID, r.AnalysisStatus)
}
