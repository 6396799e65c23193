// Package logger builds the slog loggers used by the apc binaries.
//
// Records go to a JSON (or text) handler on stderr and, when a Sentry DSN is
// configured, to Sentry too: errors become issues, warnings and errors are
// kept as searchable logs. Context extractors attach request-scoped values
// to every record:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok && id != ""
//	}
//
//	log := logger.New(logger.Config{Level: slog.LevelDebug}, requestID)
//	defer logger.Flush(2 * time.Second)
//
// Libraries default to [NewNope] and accept a logger through options.
package logger
