package provider

import (
	"context"
)

// Provider fetches repository metadata from a source-hosting service.
// The engine validates what it gets but never calls out on its own.
type Provider interface {
	Name() string

	GetRepoByName(ctx context.Context, owner, repo string) (*Repo, error)

	ListRepos(ctx context.Context, cfg *ListReposConfig) ([]Repo, error)
}
