package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
	"github.com/dmitrymomot/apc/pkg/cache"
)

// Output formats for get.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// entryOutput is what get prints in json and yaml formats.
type entryOutput struct {
	Key   string `json:"key" yaml:"key"`
	ID    string `json:"id" yaml:"id"`
	Value any    `json:"value" yaml:"value"`
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print the value stored under KEY",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "output format: text, json or yaml",
				Value:   outputText,
				Validator: func(v string) error {
					switch v {
					case outputText, outputJSON, outputYAML:
						return nil
					}
					return fmt.Errorf("unknown output format %q", v)
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withBackend(ctx, cmd, func(h *backend.Handle) error {
				e, err := entryArg(ctx, cmd, h, 0)
				if err != nil {
					return err
				}

				v, err := e.Get(ctx)
				if errors.Is(err, cache.ErrNotFound) {
					return cli.Exit(fmt.Sprintf("%s: not found", cmd.Args().First()), 1)
				}
				if err != nil {
					return err
				}

				return printEntry(cmd, entryOutput{Key: cmd.Args().First(), ID: e.ID(), Value: v})
			})
		},
	}
}

func printEntry(cmd *cli.Command, o entryOutput) error {
	w := out(cmd)

	switch cmd.String(flagOutput) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(o); err != nil {
			return err
		}
		return enc.Close()
	}

	_, err := fmt.Fprintln(w, apc.Format(o.Value))
	return err
}

func setCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "store VALUE under KEY",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagTTL,
				Aliases: []string{"t"},
				Usage:   "lifetime in whole seconds (\"40\") or as a duration (\"2m\"); 0 keeps it until deleted",
				Value:   "0",
			},
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "parse VALUE as JSON instead of storing it as a string",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return cli.Exit("usage: apc set KEY VALUE", 2)
			}

			ttl, err := apc.ParseTTL(cmd.String(flagTTL))
			if err != nil {
				return err
			}

			var v any = cmd.Args().Get(1)
			if cmd.Bool(flagJSON) {
				if err := json.Unmarshal([]byte(cmd.Args().Get(1)), &v); err != nil {
					return errors.Join(apc.ErrInvalidArgument, err)
				}
			}

			return withBackend(ctx, cmd, func(h *backend.Handle) error {
				e, err := entryArg(ctx, cmd, h, ttl)
				if err != nil {
					return err
				}
				return e.Set(ctx, v)
			})
		},
	}
}

func existsCommand() *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "print whether KEY holds a live value; exits 1 when it does not",
		ArgsUsage: "KEY",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withBackend(ctx, cmd, func(h *backend.Handle) error {
				e, err := entryArg(ctx, cmd, h, 0)
				if err != nil {
					return err
				}

				ok, err := e.Exists(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ok)
				if !ok {
					return cli.Exit("", 1)
				}
				return nil
			})
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "remove KEY",
		ArgsUsage: "KEY",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withBackend(ctx, cmd, func(h *backend.Handle) error {
				e, err := entryArg(ctx, cmd, h, 0)
				if err != nil {
					return err
				}

				err = e.Delete(ctx)
				if errors.Is(err, cache.ErrNotFound) {
					return cli.Exit(fmt.Sprintf("%s: not found", cmd.Args().First()), 1)
				}
				return err
			})
		},
	}
}
