package repo

import (
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/apierrors"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/providers"
	"github.com/Shubhamkahar196/CodeFixer/pkg/request"
	"github.com/Shubhamkahar196/CodeFixer/pkg/returntypes"
)

type CreateRequest struct {
	Owner string
	Name  string

	// AccessToken authorizes the metadata fetch; the engine never stores it.
	AccessToken string
}

func (r CreateRequest) FullName() string {
	return strings.ToLower(r.Owner + "/" + r.Name)
}

func (r CreateRequest) FillLogContext(lctx logutil.Context) {
	lctx["repo"] = r.FullName()
}

type Service interface {
	//url:/v1/repos method:POST
	Create(rc *request.AuthorizedContext, req *CreateRequest) (*returntypes.WrappedRepoInfo, error)

	//url:/v1/repos/{repoid} method:GET
	Get(rc *request.AnonymousContext, repoID uint) (*returntypes.WrappedRepoInfo, error)

	//url:/v1/repos method:GET
	List(rc *request.AuthorizedContext) (*returntypes.RepoListResponse, error)
}

type BasicService struct {
	ProviderFactory providers.Factory
}

func (s BasicService) Create(rc *request.AuthorizedContext, req *CreateRequest) (*returntypes.WrappedRepoInfo, error) {
	if strings.TrimSpace(req.Owner) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apierrors.NewValidationErrorf("name", "owner and name must not be empty")
	}
	if !rc.User.IsActive {
		return nil, apierrors.NewValidationErrorf("user", "account is deactivated")
	}

	p, err := s.ProviderFactory.Build(rc.User, req.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build provider")
	}

	providerRepo, err := p.GetRepoByName(rc.Ctx, req.Owner, req.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "can't get repo %s from provider", req.FullName())
	}

	var existing models.Repo
	err = rc.DB.Where("github_id = ?", providerRepo.ID).First(&existing).Error
	if err == nil {
		return nil, apierrors.NewValidationErrorf("githubId", "repo %s is already registered", existing.Name)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, apierrors.NewStorageError(errors.Wrap(err, "failed to fetch repo from db"))
	}

	repo := models.Repo{
		UserID:         rc.User.ID,
		Name:           strings.ToLower(providerRepo.FullName),
		DisplayName:    providerRepo.FullName,
		GithubID:       providerRepo.ID,
		HTMLURL:        providerRepo.HTMLURL,
		CloneURL:       providerRepo.CloneURL,
		DefaultBranch:  providerRepo.DefaultBranch,
		Language:       providerRepo.Language,
		IsPrivate:      providerRepo.IsPrivate,
		AnalysisStatus: models.AnalysisStatusPending,
	}
	if err = rc.DB.Create(&repo).Error; err != nil {
		return nil, apierrors.NewStorageError(errors.Wrap(err, "can't create repo"))
	}

	rc.Log.Infof("Registered repo %s for user %d", repo.Name, rc.User.ID)
	return &returntypes.WrappedRepoInfo{Repo: returntypes.NewRepoInfo(&repo)}, nil
}

func (s BasicService) Get(rc *request.AnonymousContext, repoID uint) (*returntypes.WrappedRepoInfo, error) {
	var repo models.Repo
	if err := rc.DB.First(&repo, repoID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, apierrors.NewNotFoundError("repo", repoID)
		}
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "failed to get repo from db with id %d", repoID))
	}

	return &returntypes.WrappedRepoInfo{Repo: returntypes.NewRepoInfo(&repo)}, nil
}

func (s BasicService) List(rc *request.AuthorizedContext) (*returntypes.RepoListResponse, error) {
	var repos []models.Repo
	err := rc.DB.
		Where("user_id = ?", rc.User.ID).
		Order("created_at asc, id asc").
		Find(&repos).Error
	if err != nil {
		return nil, apierrors.NewStorageError(errors.Wrapf(err, "can't list repos of user %d", rc.User.ID))
	}

	resp := returntypes.RepoListResponse{
		Repos: make([]returntypes.RepoInfo, 0, len(repos)),
	}
	for i := range repos {
		resp.Repos = append(resp.Repos, returntypes.NewRepoInfo(&repos[i]))
	}
	return &resp, nil
}
