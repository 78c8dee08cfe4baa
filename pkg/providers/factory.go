package providers

import (
	"time"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/models"
	"github.com/Shubhamkahar196/CodeFixer/pkg/providers/implementations"
	"github.com/Shubhamkahar196/CodeFixer/pkg/providers/provider"
)

type Factory interface {
	Build(user *models.User, accessToken string) (provider.Provider, error)
}

type BasicFactory struct {
	log logutil.Log
}

func NewBasicFactory(log logutil.Log) *BasicFactory {
	return &BasicFactory{
		log: log,
	}
}

func (f BasicFactory) Build(user *models.User, accessToken string) (provider.Provider, error) {
	p := implementations.NewGithub(accessToken, f.log)
	return implementations.NewStableProvider(p, time.Second*30, 3), nil
}
