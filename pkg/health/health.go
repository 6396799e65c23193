package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/apc/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy means every check passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy means at least one check failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports whether a dependency is usable.
// redis.Healthcheck and db.Healthcheck return this shape.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to their functions.
type Checks map[string]CheckFunc

// Response is the aggregated result of a run.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one named check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// Healthy reports whether every check passed.
func (r *Response) Healthy() bool {
	return r.Status == StatusHealthy
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds a whole run. Default 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger failed checks are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// Checker runs a fixed set of checks concurrently.
type Checker struct {
	checks  Checks
	log     *slog.Logger
	timeout time.Duration
}

// New creates a Checker. Nil check functions are ignored.
func New(checks Checks, opts ...Option) *Checker {
	c := &Checker{
		checks:  make(Checks, len(checks)),
		log:     logger.NewNope(),
		timeout: defaultTimeout,
	}
	for name, fn := range checks {
		if fn != nil {
			c.checks[name] = fn
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes every check in parallel under the configured timeout.
// A check still running at the deadline is reported with ErrCheckTimeout.
func (c *Checker) Run(ctx context.Context) *Response {
	if len(c.checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(c.checks))
		status  = StatusHealthy
	)

	var g errgroup.Group
	for name, fn := range c.checks {
		g.Go(func() error {
			start := time.Now()
			err := c.run(ctx, fn)
			res := Check{Status: StatusHealthy, Duration: time.Since(start).String()}

			if err != nil {
				res.Status = StatusUnhealthy
				res.Error = err.Error()
				c.log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = res
			if err != nil {
				status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return &Response{Status: status, Checks: results}
}

func (c *Checker) run(ctx context.Context, fn CheckFunc) error {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Join(ErrCheckTimeout, err)
		}
		if err != nil {
			return errors.Join(ErrCheckFailed, err)
		}
		return nil
	case <-ctx.Done():
		return ErrCheckTimeout
	}
}
