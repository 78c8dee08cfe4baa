package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

type User struct {
	gorm.Model

	Username string
	Email    string

	// Hash is produced by the auth layer, the engine never interprets it.
	PasswordHash string

	GithubID       string
	GithubUsername string

	AvatarURL string

	IsActive bool

	// usage statistics
	RepositoriesAnalyzed int
	IssuesFixed          int

	LastLoginAt *time.Time
}

func (u *User) String() string {
	return u.Username
}
