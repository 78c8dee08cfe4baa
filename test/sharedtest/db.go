package sharedtest

import (
	"context"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // register sqlite dialect
	"github.com/stretchr/testify/require"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/request"
)

// InitDB opens a fresh in-memory sqlite database with the full schema.
func InitDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Repo{},
		&models.Issue{},
		&models.IssueComment{},
		&models.AnalysisRun{},
	).Error
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	u := models.User{
		Username: "tester",
		Email:    "tester@example.com",
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func CreateRepo(t *testing.T, db *gorm.DB, userID uint, status models.AnalysisStatus) *models.Repo {
	r := models.Repo{
		UserID:         userID,
		Name:           "tester/project",
		DisplayName:    "tester/project",
		GithubID:       int64(1000 + userID),
		DefaultBranch:  "main",
		AnalysisStatus: status,
	}
	require.NoError(t, db.Create(&r).Error)
	return &r
}

func CreateIssue(t *testing.T, db *gorm.DB, repoID, reporterID uint, severity models.Severity, status models.IssueStatus) *models.Issue {
	i := models.Issue{
		RepoID:       repoID,
		Title:        "test issue",
		Description:  "test issue description",
		Type:         models.IssueTypeBug,
		Severity:     severity,
		Category:     models.CategoryLogicError,
		FilePath:     "main.go",
		Status:       status,
		ReportedByID: reporterID,
		Priority:     models.DefaultIssuePriority,
	}
	require.NoError(t, db.Create(&i).Error)
	return &i
}

func BaseContext(db *gorm.DB) request.BaseContext {
	return request.BaseContext{
		Ctx:       context.Background(),
		Log:       logutil.NewStderrLog("test"),
		Lctx:      logutil.Context{},
		DB:        db,
		StartedAt: time.Now(),
	}
}

func AnonymousContext(db *gorm.DB) *request.AnonymousContext {
	return &request.AnonymousContext{
		BaseContext: BaseContext(db),
	}
}

func AuthorizedContext(db *gorm.DB, u *models.User) *request.AuthorizedContext {
	return &request.AuthorizedContext{
		BaseContext: BaseContext(db),
		User:        u,
	}
}
