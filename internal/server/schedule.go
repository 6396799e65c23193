package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/apc"
)

const jobTimeout = time.Minute

// schedule registers the periodic clear and, for drivers with a Purge,
// the expired-row purge. Jobs never overlap with themselves.
func (s *Server) schedule() (*cron.Cron, error) {
	clog := cron.PrintfLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelDebug))
	c := cron.New(cron.WithLogger(clog), cron.WithChain(
		cron.Recover(clog),
		cron.SkipIfStillRunning(clog),
	))

	if s.cfg.ClearSchedule != "" {
		if _, err := c.AddFunc(s.cfg.ClearSchedule, s.clearJob); err != nil {
			return nil, fmt.Errorf("%w: clear schedule %q: %w", apc.ErrConfiguration, s.cfg.ClearSchedule, err)
		}
	}

	if s.handle.Purge != nil {
		if _, err := c.AddFunc(s.cfg.PurgeSchedule, s.purgeJob); err != nil {
			return nil, fmt.Errorf("%w: purge schedule %q: %w", apc.ErrConfiguration, s.cfg.PurgeSchedule, err)
		}
	}

	return c, nil
}

func (s *Server) clearJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log := s.log.With(slog.String("scope", s.cfg.ClearScope))
	if err := apc.Clear(ctx, s.handle.Backend, s.cfg.ClearScope, s.clearOptions()...); err != nil {
		log.ErrorContext(ctx, "scheduled clear failed", slog.Any("error", err))
		return
	}
	log.InfoContext(ctx, "scheduled clear done")
}

func (s *Server) purgeJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.handle.Purge(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "expired entries purge failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		s.log.DebugContext(ctx, "expired entries purged", slog.Int64("count", n))
	}
}
