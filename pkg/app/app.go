package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	redigo "github.com/garyburd/redigo/redis"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/joho/godotenv/autoload" // load .env
	_ "github.com/mattes/migrate/database/postgres"
	"github.com/rs/cors"
	redsync "gopkg.in/redsync.v1"

	"github.com/Shubhamkahar196/CodeFixer/internal/shared/apperrors"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/config"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/db/gormdb"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/db/redis"
	"github.com/Shubhamkahar196/CodeFixer/internal/shared/logutil"
	"github.com/Shubhamkahar196/CodeFixer/pkg/app/utils"
	cronanalyzes "github.com/Shubhamkahar196/CodeFixer/pkg/crons/analyzes"
	"github.com/Shubhamkahar196/CodeFixer/pkg/db/migrations"
	"github.com/Shubhamkahar196/CodeFixer/pkg/providers"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/issues"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repo"
	"github.com/Shubhamkahar196/CodeFixer/pkg/services/repoanalysis"
	"github.com/Shubhamkahar196/CodeFixer/pkg/transport"
)

type appServices struct {
	repo         repo.Service
	repoanalysis repoanalysis.Service
	issues       issues.Service
}

type App struct {
	cfg              config.Config
	log              logutil.Log
	trackedLog       logutil.Log
	errTracker       apperrors.Tracker
	gormDB           *gorm.DB
	sqlDB            *sql.DB
	migrationsRunner *migrations.Runner
	services         appServices
	providerFactory  providers.Factory
	distLockFactory  *redsync.Redsync
	redisPool        *redigo.Pool
	staler           *cronanalyzes.Staler
}

func (a App) GetDB() *gorm.DB {
	return a.gormDB
}

func (a *App) buildDeps() {
	if a.log == nil {
		slog := logutil.NewStderrLog("codefixer-api")
		slog.SetLevel(logutil.LogLevelInfo)
		a.log = slog
	}

	if a.cfg == nil {
		a.cfg = config.NewEnvConfig(a.log)
	}

	if a.errTracker == nil {
		a.errTracker = apperrors.GetTracker(a.cfg, a.log, "api")
	}
	if a.trackedLog == nil {
		a.trackedLog = apperrors.WrapLogWithTracker(a.log, nil, a.errTracker)
	}

	if a.gormDB == nil || a.sqlDB == nil {
		dbConnString, err := gormdb.GetDBConnString(a.cfg)
		if err != nil {
			a.log.Fatalf("Can't get DB conn string: %s", err)
		}

		if a.gormDB == nil {
			gormDB, err := gormdb.GetDB(a.cfg, a.trackedLog, dbConnString)
			if err != nil {
				a.log.Fatalf("Can't get DB: %s", err)
			}
			a.gormDB = gormDB
		}

		if a.sqlDB == nil {
			sqlDB, err := gormdb.GetSQLDB(a.cfg, dbConnString)
			if err != nil {
				a.log.Fatalf("Can't get DB: %s", err)
			}
			a.sqlDB = sqlDB
		}
	}

	if a.providerFactory == nil {
		a.providerFactory = providers.NewBasicFactory(a.trackedLog)
	}

	if a.redisPool == nil {
		redisPool, err := redis.GetPool(a.cfg)
		if err != nil {
			a.log.Fatalf("Can't get redis pool: %s", err)
		}
		a.redisPool = redisPool
	}
}

func (a *App) buildServices() {
	a.services.repo = repo.BasicService{
		ProviderFactory: a.providerFactory,
	}
	a.services.repoanalysis = repoanalysis.NewBasicService()
	a.services.issues = issues.NewBasicService()
}

func (a *App) buildMigrationsRunner() {
	a.distLockFactory = redsync.New([]redsync.Pool{a.redisPool})
	dbConnString, err := gormdb.GetDBConnString(a.cfg)
	if err != nil {
		a.log.Fatalf("Can't get DB conn string: %s", err)
	}
	a.migrationsRunner = migrations.NewRunner(a.distLockFactory.NewMutex("migrations"), a.trackedLog,
		dbConnString, utils.GetProjectRoot())
}

func (a *App) buildStaler() {
	a.staler = &cronanalyzes.Staler{
		Cfg:     a.cfg,
		DB:      a.gormDB,
		Log:     a.trackedLog,
		Service: a.services.repoanalysis,
	}
}

func NewApp(modifiers ...Modifier) *App {
	a := App{}
	for _, m := range modifiers {
		m(&a)
	}
	a.buildDeps()
	a.buildServices()
	a.buildMigrationsRunner()
	a.buildStaler()

	return &a
}

func (a App) runMigrations() {
	if err := a.migrationsRunner.Run(); err != nil {
		a.log.Fatalf("Can't run migrations: %s", err)
	}
}

func (a App) RunEnvironment() {
	a.runMigrations()

	go a.staler.Run()
}

func (a App) RunForever() {
	a.RunEnvironment()

	http.Handle("/", a.GetHTTPHandler())

	addr := fmt.Sprintf(":%d", a.cfg.GetInt("PORT", 3000))
	a.log.Infof("Listening on %s...", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		a.log.Errorf("Can't listen HTTP on %s: %s", addr, err)
		os.Exit(1)
	}
}

func (a App) GetHTTPHandler() http.Handler {
	r := mux.NewRouter()
	srv := transport.Server{
		Log:                 a.log,
		ErrTracker:          a.errTracker,
		DB:                  a.gormDB,
		RepoService:         a.services.repo,
		RepoAnalysisService: a.services.repoanalysis,
		IssueService:        a.services.issues,
	}
	srv.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.GetStringList("ALLOWED_ORIGINS"),
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
	})

	return c.Handler(r)
}
