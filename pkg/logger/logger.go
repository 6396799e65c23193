package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config describes how the apc binaries log.
type Config struct {
	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output io.Writer
	// Format is "json" (default) or "text".
	Format string `env:"APC_LOG_FORMAT" envDefault:"json"`
	// Level is the minimum level written to Output.
	Level slog.Level `env:"APC_LOG_LEVEL" envDefault:"info"`
	// Sentry is optional; an empty DSN disables it.
	Sentry SentryConfig
}

// SentryConfig holds Sentry integration settings.
type SentryConfig struct {
	DSN         string `env:"APC_SENTRY_DSN"`
	Environment string `env:"APC_SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel selects what is kept as Sentry logs: warnings and errors by
	// default, errors only when set to slog.LevelError. Errors always
	// create Sentry issues.
	MinLevel slog.Level
}

// New builds a logger writing to cfg.Output and, when a Sentry DSN is set,
// to Sentry as well. Extractors add request-scoped attributes to every
// record in both destinations.
//
// A Sentry initialisation failure is logged and the logger falls back to
// the local output only.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	local := localHandler(cfg)

	if cfg.Sentry.DSN == "" {
		return slog.New(NewContextHandler(local, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(local, extractors...))
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.Sentry.MinLevel == slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return slog.New(NewContextHandler(newFanout(local, remote), extractors...))
}

// Flush waits up to timeout for buffered Sentry events to be sent.
// It is a no-op when Sentry was never initialised.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error"
// (case-insensitive) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// NewNope creates a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func localHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}
