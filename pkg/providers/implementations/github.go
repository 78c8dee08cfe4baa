package implementations

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/go-github/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/providers/provider"
)

// Check the struct is implementing the Provider interface.
var _ provider.Provider = &Github{}

const GithubProviderName = "github.com"

type Github struct {
	accessToken string
	baseURL     *url.URL
	log         logutil.Log
}

func NewGithub(accessToken string, log logutil.Log) *Github {
	return &Github{
		accessToken: accessToken,
		log:         log,
	}
}

func (p Github) Name() string {
	return GithubProviderName
}

func (p *Github) SetBaseURL(s string) error {
	baseURL, err := url.Parse(s)
	if err != nil {
		return errors.Wrap(err, "failed to parse url")
	}

	p.baseURL = baseURL
	return nil
}

func (p Github) client(ctx context.Context) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			AccessToken: p.accessToken,
		},
	)
	tc := oauth2.NewClient(ctx, ts)
	c := github.NewClient(tc)
	if p.baseURL != nil {
		c.BaseURL = p.baseURL
	}

	return c
}

func (p Github) unwrapError(err error) error {
	if er, ok := err.(*github.ErrorResponse); ok {
		if er.Response.StatusCode == http.StatusNotFound {
			return provider.ErrNotFound
		}
		if er.Response.StatusCode == http.StatusUnauthorized {
			return provider.ErrUnauthorized
		}
	}

	return err
}

func parseGithubRepository(r *github.Repository) *provider.Repo {
	return &provider.Repo{
		ID:              r.GetID(),
		FullName:        r.GetFullName(),
		IsAdmin:         r.GetPermissions()["admin"],
		IsPrivate:       r.GetPrivate(),
		DefaultBranch:   r.GetDefaultBranch(),
		Language:        r.GetLanguage(),
		HTMLURL:         r.GetHTMLURL(),
		CloneURL:        r.GetCloneURL(),
		StargazersCount: r.GetStargazersCount(),
	}
}

func (p Github) GetRepoByName(ctx context.Context, owner, repo string) (*provider.Repo, error) {
	r, _, err := p.client(ctx).Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, p.unwrapError(err)
	}

	return parseGithubRepository(r), nil
}

func (p Github) ListRepos(ctx context.Context, cfg *provider.ListReposConfig) ([]provider.Repo, error) {
	opts := github.RepositoryListOptions{
		Visibility: cfg.Visibility,
		Sort:       cfg.Sort,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var ret []provider.Repo
	for {
		pageRepos, resp, err := p.client(ctx).Repositories.List(ctx, "", &opts)
		if err != nil {
			return nil, p.unwrapError(err)
		}

		for _, r := range pageRepos {
			ret = append(ret, *parseGithubRepository(r))
		}

		if resp.NextPage == 0 || opts.Page == cfg.MaxPages {
			break
		}
		opts.Page = resp.NextPage
	}

	return ret, nil
}
