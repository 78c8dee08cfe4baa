package app

import (
	"github.com/jinzhu/gorm"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/config"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/providers"
)

type Modifier func(a *App)

func SetProviderFactory(pf providers.Factory) Modifier {
	return func(a *App) {
		a.providerFactory = pf
	}
}

func SetConfig(cfg config.Config) Modifier {
	return func(a *App) {
		a.cfg = cfg
	}
}

func SetLog(log logutil.Log) Modifier {
	return func(a *App) {
		a.log = log
	}
}

func SetDB(db *gorm.DB) Modifier {
	return func(a *App) {
		a.gormDB = db
	}
}
