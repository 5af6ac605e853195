package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/schedule"
	"github.com/trezcool/klabu/core/user"
)

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		UserSvc   *user.Service
		EventSvc  *event.Service
		Reminders *schedule.Driver
		Results   *schedule.Driver
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.deps.Conf.Debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = appHTTPErrorHandler
	s.app.Debug = s.deps.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	registerUserAPI(v1, s.deps.UserSvc)
	registerEventAPI(v1, s.deps.EventSvc)
	registerScheduleAPI(v1, s.deps.Reminders, s.deps.Results)
}

// Start launches the listener; failures surface on Errors, termination
// signals on ShutdownSignal.
func (s *Server) Start() {
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s.errs <- s.app.Start(s.deps.Conf.Server.Address())
	}()
}

func (s *Server) Errors() <-chan error            { return s.errs }
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Klabu API!")
}
