package provider

import "strings"

// Repo represents provider repository.
type Repo struct {
	ID            int64
	FullName      string
	IsAdmin       bool
	IsPrivate     bool
	DefaultBranch string
	Language      string

	HTMLURL  string
	CloneURL string

	StargazersCount int
}

func (r Repo) Name() string {
	return strings.Split(r.FullName, "/")[1]
}

func (r Repo) Owner() string {
	return strings.Split(r.FullName, "/")[0]
}

type ListReposConfig struct {
	Visibility string // public|all
	Sort       string
	MaxPages   int
}
