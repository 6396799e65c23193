package command

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
	"github.com/dmitrymomot/apc/internal/server"
	"github.com/dmitrymomot/apc/pkg/db"
	"github.com/dmitrymomot/apc/pkg/logger"
	"github.com/dmitrymomot/apc/pkg/redis"
)

type loggerKey struct{}

// setupLogger is the root Before hook: it builds the logger once from the
// global flags and stores it in the context.
func setupLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := logger.ParseLevel(cmd.String(flagLogLevel))
	if err != nil {
		return ctx, err
	}

	log := logger.New(logger.Config{
		Output: cmd.Root().ErrWriter,
		Format: cmd.String(flagLogFormat),
		Level:  level,
		Sentry: logger.SentryConfig{
			DSN:         cmd.String(flagSentryDSN),
			Environment: "production",
		},
	}, server.RequestIDExtractor())

	return context.WithValue(ctx, loggerKey{}, log), nil
}

// flushLogger is the root After hook.
func flushLogger(context.Context, *cli.Command) error {
	logger.Flush(2 * time.Second)
	return nil
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	return logger.NewNope()
}

func backendConfig(cmd *cli.Command) backend.Config {
	return backend.Config{
		Driver:     cmd.String(flagDriver),
		Prefix:     cmd.String(flagPrefix),
		MaxEntries: cmd.Int(flagMaxEntries),
		BoltPath:   cmd.String(flagBoltPath),
		Redis:      redis.Config{URL: cmd.String(flagRedisURL)},
		Database:   db.Config{ConnectionString: cmd.String(flagDatabaseURL)},
	}
}

// withBackend opens the configured backend, runs fn and closes it.
func withBackend(ctx context.Context, cmd *cli.Command, fn func(*backend.Handle) error) (err error) {
	h, err := backend.Open(ctx, backendConfig(cmd), loggerFrom(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(h)
}

// entryArg builds an entry from the first positional argument.
func entryArg(ctx context.Context, cmd *cli.Command, h *backend.Handle, ttl time.Duration) (*apc.Entry[backend.Value], error) {
	if cmd.NArg() < 1 {
		return nil, cli.Exit("missing KEY argument", 2)
	}
	return apc.New(h.Backend, cmd.Args().First(), ttl, apc.WithLogger(loggerFrom(ctx)))
}

func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}
