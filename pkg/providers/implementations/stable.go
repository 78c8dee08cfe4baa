package implementations

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/Shubhamkahar196/CodeFixer/pkg/providers/provider"
)

// Check the struct is implementing the Provider interface.
var _ provider.Provider = &StableProvider{}

// StableProvider retries transient provider failures with exponential backoff.
type StableProvider struct {
	underlying   provider.Provider
	totalTimeout time.Duration
	maxRetries   int
}

func NewStableProvider(underlying provider.Provider, totalTimeout time.Duration, maxRetries int) *StableProvider {
	return &StableProvider{
		underlying:   underlying,
		totalTimeout: totalTimeout,
		maxRetries:   maxRetries,
	}
}

func (p StableProvider) Name() string {
	return p.underlying.Name()
}

func (p StableProvider) retry(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = p.totalTimeout

	bmr := backoff.WithMaxRetries(b, uint64(p.maxRetries))
	return backoff.Retry(func() error {
		err := f()
		if provider.IsPermanentError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, bmr)
}

func (p StableProvider) GetRepoByName(ctx context.Context, owner, repo string) (retRepo *provider.Repo, err error) {
	err = p.retry(func() error {
		var ferr error
		retRepo, ferr = p.underlying.GetRepoByName(ctx, owner, repo)
		return ferr
	})
	return
}

func (p StableProvider) ListRepos(ctx context.Context, cfg *provider.ListReposConfig) (ret []provider.Repo, err error) {
	err = p.retry(func() error {
		var ferr error
		ret, ferr = p.underlying.ListRepos(ctx, cfg)
		return ferr
	})
	return
}
