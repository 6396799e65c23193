package command

import (
	"fmt"
	"slices"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/apc/internal/backend"
)

// Flag names shared between commands.
const (
	flagConfig      = "config"
	flagDriver      = "driver"
	flagPrefix      = "prefix"
	flagRedisURL    = "redis-url"
	flagBoltPath    = "bolt-path"
	flagDatabaseURL = "database-url"
	flagMaxEntries  = "max-entries"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagSentryDSN   = "sentry-dsn"
	flagTTL         = "ttl"
	flagJSON        = "json"
	flagOutput      = "output"
	flagLegacy      = "legacy-scope"
	flagAddr        = "addr"
	flagSchedule    = "clear-schedule"
	flagScope       = "clear-scope"
)

// sources reads a flag from the environment first, then from the YAML
// file named by --config.
func sources(env, key string, config *string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(
		cli.EnvVar(env),
		yaml.YAML(key, altsrc.NewStringPtrSourcer(config)),
	)
}

// globalFlags are accepted by every command. --config comes first so the
// file path is known when the other flags consult it.
func globalFlags(config *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        flagConfig,
			Aliases:     []string{"c"},
			Usage:       "YAML config file",
			Sources:     cli.EnvVars("APC_CONFIG"),
			Destination: config,
			TakesFile:   true,
		},
		&cli.StringFlag{
			Name:    flagDriver,
			Aliases: []string{"d"},
			Usage:   "cache backend: " + strings.Join(backend.Drivers(), ", "),
			Sources: sources("APC_DRIVER", "driver", config),
			Value:   backend.DriverMemory,
			Validator: func(v string) error {
				if !slices.Contains(backend.Drivers(), strings.ToLower(v)) {
					return fmt.Errorf("unknown driver %q", v)
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:    flagPrefix,
			Usage:   "namespace for redis keys and bolt buckets",
			Sources: sources("APC_PREFIX", "prefix", config),
		},
		&cli.StringFlag{
			Name:    flagRedisURL,
			Usage:   "redis connection URL",
			Sources: sources("APC_REDIS_URL", "redis.url", config),
		},
		&cli.StringFlag{
			Name:      flagBoltPath,
			Usage:     "bolt database file",
			Sources:   sources("APC_BOLT_PATH", "bolt.path", config),
			Value:     "apc.db",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    flagDatabaseURL,
			Usage:   "postgres connection URL",
			Sources: sources("APC_DATABASE_URL", "database.url", config),
		},
		&cli.IntFlag{
			Name:    flagMaxEntries,
			Usage:   "entry limit for the memory and ttl drivers (0 = unlimited)",
			Sources: sources("APC_MAX_ENTRIES", "memory.max_entries", config),
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "debug, info, warn or error",
			Sources: sources("APC_LOG_LEVEL", "log.level", config),
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    flagLogFormat,
			Usage:   "json or text",
			Sources: sources("APC_LOG_FORMAT", "log.format", config),
			Value:   "json",
		},
		&cli.StringFlag{
			Name:    flagSentryDSN,
			Usage:   "send warnings and errors to Sentry",
			Sources: sources("APC_SENTRY_DSN", "sentry.dsn", config),
		},
	}
}
