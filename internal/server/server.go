// Package server assembles the Echo application: middleware, services,
// handlers and routes. cmd/server and the end-to-end tests share it.
package server

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/config"
	"github.com/iliyamo/taskflow-api/internal/handler"
	"github.com/iliyamo/taskflow-api/internal/middleware"
	"github.com/iliyamo/taskflow-api/internal/repository"
	"github.com/iliyamo/taskflow-api/internal/router"
	"github.com/iliyamo/taskflow-api/internal/service"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

// Deps are the explicitly constructed collaborators of the application.
// Nil Cache and Events fall back to no-op implementations.
type Deps struct {
	DB       *sql.DB
	Cache    cache.Cache
	Events   service.EventPublisher
	Tokens   *utils.TokenService
	Hasher   utils.PasswordHasher
	CacheTTL time.Duration
	LogLevel string
	// Quiet disables the per-request access log.
	Quiet bool
}

// New builds the Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(config.ParseLevel(d.LogLevel))
	e.HTTPErrorHandler = handler.ErrorHandler(e.Logger)

	e.Use(echomw.RequestID())
	if !d.Quiet {
		e.Use(echomw.Logger())
	}
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.Tracing())

	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	users := repository.NewUserRepo(d.DB)
	projectRepo := repository.NewProjectRepo(d.DB)
	deps := service.Deps{Cache: d.Cache, Events: d.Events, Log: e.Logger, CacheTTL: d.CacheTTL}

	resolver := service.NewResolver(d.Tokens, users)
	accounts := service.NewAccountService(users, d.Hasher, d.Tokens)
	projects := service.NewProjectService(projectRepo, deps)
	tasks := service.NewTaskService(repository.NewTaskRepo(d.DB), projectRepo, deps)

	auth := middleware.BearerAuth(resolver)
	router.RegisterRoutes(e, handler.NewHealthHandler(d.DB, d.Cache))
	router.RegisterAuth(e, handler.NewAuthHandler(accounts), auth)
	router.RegisterProjects(e, handler.NewProjectHandler(projects), auth)
	router.RegisterTasks(e, handler.NewTaskHandler(tasks), auth)
	return e
}
