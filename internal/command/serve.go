package command

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
	"github.com/dmitrymomot/apc/internal/server"
)

func serveCommand(config *string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the entries API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagAddr,
				Usage:   "listen address",
				Sources: sources("APC_ADDR", "serve.addr", config),
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:    flagSchedule,
				Usage:   "cron spec for periodic clears, e.g. \"0 3 * * *\" or \"@every 1h\"",
				Sources: sources("APC_CLEAR_SCHEDULE", "serve.clear_schedule", config),
			},
			&cli.StringFlag{
				Name:    flagScope,
				Usage:   "scope cleared on schedule: all, user or opcode",
				Sources: sources("APC_CLEAR_SCOPE", "serve.clear_scope", config),
				Value:   apc.ScopeAll,
			},
			&cli.BoolFlag{
				Name:    flagLegacy,
				Usage:   "clear every segment for user and opcode scopes too",
				Sources: sources("APC_LEGACY_SCOPE", "serve.legacy_scope", config),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := loggerFrom(ctx)

			h, err := backend.Open(ctx, backendConfig(cmd), log)
			if err != nil {
				return err
			}

			srv, err := server.New(h, server.Config{
				Addr:          cmd.String(flagAddr),
				ClearSchedule: cmd.String(flagSchedule),
				ClearScope:    cmd.String(flagScope),
				LegacyScope:   cmd.Bool(flagLegacy),
			},
				server.WithLogger(log),
				server.WithShutdownHook(h.Close),
			)
			if err != nil {
				_ = h.Close(ctx)
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx)
		},
	}
}
