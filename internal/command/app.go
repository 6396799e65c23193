// Package command implements the apc command line.
package command

import (
	"context"

	"github.com/urfave/cli/v3"
)

// New builds the apc root command.
//
// Exit codes are left to the caller: the returned command never calls
// os.Exit, and errors implementing cli.ExitCoder carry the code to use.
func New(version string) *cli.Command {
	var config string

	return &cli.Command{
		Name:                  "apc",
		Usage:                 "read, write and serve cache entries",
		Version:               version,
		Flags:                 globalFlags(&config),
		EnableShellCompletion: true,
		Suggest:               true,
		Before:                setupLogger,
		After:                 flushLogger,
		ExitErrHandler:        func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			getCommand(),
			setCommand(),
			existsCommand(),
			deleteCommand(),
			clearCommand(),
			serveCommand(&config),
		},
	}
}
