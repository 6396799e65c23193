// Package server exposes a cache backend over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
	"github.com/dmitrymomot/apc/pkg/health"
	"github.com/dmitrymomot/apc/pkg/logger"
)

// Config holds the server settings.
type Config struct {
	// Addr to listen on. Default ":8080".
	Addr string

	// ClearSchedule is a cron spec ("0 3 * * *", "@every 1h") for clearing
	// ClearScope. Empty disables scheduled clears.
	ClearSchedule string
	// ClearScope is the scope of scheduled clears. Default "all".
	ClearScope string
	// LegacyScope makes scheduled and HTTP clears of "user" or "opcode"
	// clear every segment.
	LegacyScope bool

	// PurgeSchedule drives expired-row purges for drivers that need them.
	// Default "@every 10m".
	PurgeSchedule string

	// RequestTimeout bounds each request's context. Default 30s.
	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	CheckTimeout      time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ClearScope == "" {
		cfg.ClearScope = apc.ScopeAll
	}
	if cfg.PurgeSchedule == "" {
		cfg.PurgeSchedule = "@every 10m"
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 5 * time.Second
	}
	return cfg
}

// ShutdownHook runs after the HTTP server and scheduler have stopped.
type ShutdownHook func(ctx context.Context) error

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Requests are logged with their IDs
// when the logger was built with RequestIDExtractor.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithShutdownHook registers fn to run on shutdown, in registration order.
func WithShutdownHook(fn ShutdownHook) Option {
	return func(s *Server) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Server serves the entries API for one backend.
type Server struct {
	cfg     Config
	handle  *backend.Handle
	log     *slog.Logger
	router  chi.Router
	checker *health.Checker
	sched   *cron.Cron
	hooks   []ShutdownHook
}

// New builds a server over h. It fails with apc.ErrConfiguration for a nil
// handle, an unknown clear scope or an unparsable schedule.
func New(h *backend.Handle, cfg Config, opts ...Option) (*Server, error) {
	if h == nil || h.Backend == nil {
		return nil, apc.ErrConfiguration
	}

	cfg = cfg.withDefaults()
	if !validScope(cfg.ClearScope) {
		return nil, fmt.Errorf("%w: clear scope %q", apc.ErrConfiguration, cfg.ClearScope)
	}

	s := &Server{
		cfg:    cfg,
		handle: h,
		log:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.checker = health.New(health.Checks{h.Driver: h.Check},
		health.WithTimeout(cfg.CheckTimeout),
		health.WithLogger(s.log),
	)

	sched, err := s.schedule()
	if err != nil {
		return nil, err
	}
	s.sched = sched
	s.router = s.routes()

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done or the listener fails, then shuts down:
// HTTP server first, then the scheduler, then the hooks.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		return errors.Join(append([]error{err}, s.runHooks(shutdownCtx)...)...)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.sched.Start()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	errs := []error{serveErr}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	select {
	case <-s.sched.Stop().Done():
	case <-shutdownCtx.Done():
		errs = append(errs, shutdownCtx.Err())
	}

	errs = append(errs, s.runHooks(shutdownCtx)...)

	if err := errors.Join(errs...); err != nil {
		s.log.Error("shutdown completed with errors")
		return err
	}

	s.log.Info("shutdown completed")
	return nil
}

func (s *Server) runHooks(ctx context.Context) []error {
	var errs []error
	for _, hook := range s.hooks {
		if err := hook(ctx); err != nil {
			s.log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *Server) clearOptions() []apc.ClearOption {
	if s.cfg.LegacyScope {
		return []apc.ClearOption{apc.WithLegacyScope()}
	}
	return nil
}

func validScope(scope string) bool {
	switch scope {
	case apc.ScopeAll, apc.ScopeUser, apc.ScopeOpcode:
		return true
	}
	return false
}
