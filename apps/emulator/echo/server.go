package echoemu

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/aula/core"
	inmemdb "github.com/trezcool/aula/storage/inmem"
)

type (
	Options struct {
		Address        string
		ProjectID      string
		SecretKey      string
		AccessTTL      time.Duration
		RefreshTTL     time.Duration
		Debug          bool
		DisableReqLogs bool
		Logger         core.Logger
		DB             *inmemdb.DB
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
		db   *inmemdb.DB

		revokedMu sync.RWMutex
		revoked   map[string]struct{} // token ids

		signupMu sync.Mutex // guards the email check and the user insert
	}
)

var _ Server = (*server)(nil)

// NewServer builds an emulator of the Roble auth and database APIs for one project.
func NewServer(opts *Options) Server {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	db := opts.DB
	if db == nil {
		db = inmemdb.NewDB(func() string { return uuid.New().String() })
	}
	s := &server{
		opts:    opts,
		app:     echo.New(),
		db:      db,
		revoked: make(map[string]struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)

	ag := s.app.Group("/auth/:project", s.projectMiddleware)
	s.registerAuthAPI(ag)

	dg := s.app.Group("/database/:project", s.projectMiddleware, s.bearerMiddleware)
	s.registerDatabaseAPI(dg)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) projectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if s.opts.ProjectID != "" && ctx.Param("project") != s.opts.ProjectID {
			return errProjectNotFound
		}
		return next(ctx)
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Roble emulator")
}
