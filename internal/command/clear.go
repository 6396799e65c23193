package command

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
)

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "empty the cache: SCOPE is all (default), user or opcode",
		ArgsUsage: "[SCOPE]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagLegacy,
				Usage: "clear every segment for user and opcode scopes too",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			scope := cmd.Args().First()
			if scope == "" {
				scope = apc.ScopeAll
			}

			var opts []apc.ClearOption
			if cmd.Bool(flagLegacy) {
				opts = append(opts, apc.WithLegacyScope())
			}

			return withBackend(ctx, cmd, func(h *backend.Handle) error {
				if err := apc.Clear(ctx, h.Backend, scope, opts...); err != nil {
					return err
				}
				loggerFrom(ctx).InfoContext(ctx, "cache cleared", slog.String("scope", scope))
				return nil
			})
		},
	}
}
