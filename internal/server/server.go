package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/scheduler"
)

// runStateReporter is the slice of the scheduler the server reads.
type runStateReporter interface {
	State() scheduler.State
}

// pinger is a storage backend that can answer a health check. Nil backends
// (memory-only mode) are skipped.
type pinger interface {
	Ping(ctx context.Context) error
}

// breakerStateReporter reports the text-generator circuit breaker state.
type breakerStateReporter interface {
	State() string
}

type Server struct {
	echo      *echo.Echo
	port      string
	clock     clockwork.Clock
	startTime time.Time

	quota     domain.QuotaTracker
	ledger    domain.InteractionLog
	scheduler runStateReporter
	breaker   breakerStateReporter

	postgres pinger
	redis    pinger
}

// Deps bundles the components the status surface reports on. Postgres,
// Redis, and Breaker may be nil.
type Deps struct {
	Quota     domain.QuotaTracker
	Ledger    domain.InteractionLog
	Scheduler runStateReporter
	Breaker   breakerStateReporter
	Postgres  pinger
	Redis     pinger
}

func NewServer(port string, clock clockwork.Clock, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		port:      port,
		clock:     clock,
		startTime: clock.Now(),
		quota:     deps.Quota,
		ledger:    deps.Ledger,
		scheduler: deps.Scheduler,
		breaker:   deps.Breaker,
		postgres:  deps.Postgres,
		redis:     deps.Redis,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
