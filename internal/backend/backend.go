// Package backend opens the cache backend the apc binaries run against.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/pkg/cache"
	"github.com/dmitrymomot/apc/pkg/db"
	"github.com/dmitrymomot/apc/pkg/health"
	"github.com/dmitrymomot/apc/pkg/logger"
	"github.com/dmitrymomot/apc/pkg/redis"
)

// Drivers.
const (
	DriverMemory   = "memory"
	DriverTTL      = "ttl"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverMemory, DriverTTL, DriverBolt, DriverRedis, DriverPostgres}
}

// Value is what the binaries store: any JSON-representable value.
type Value = any

// Config selects and configures a driver. Only the fields of the chosen
// driver are read.
type Config struct {
	Driver     string
	Prefix     string
	MaxEntries int
	BoltPath   string
	Redis      redis.Config
	Database   db.Config
}

// Handle is an opened backend plus what the server needs around it.
type Handle struct {
	Backend cache.Backend[Value]
	Driver  string

	// Check reports whether the backend can serve requests.
	Check health.CheckFunc

	// Purge drops expired rows. Nil for drivers that expire on their own.
	Purge func(ctx context.Context) (int64, error)

	closers []func(ctx context.Context) error
}

// Close releases the backend and its connections, in that order.
func (h *Handle) Close(ctx context.Context) error {
	errs := []error{h.Backend.Close()}
	for _, fn := range h.closers {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// Open connects the configured driver. An unknown driver fails with
// apc.ErrConfiguration before anything is opened.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Handle, error) {
	if log == nil {
		log = logger.NewNope()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverMemory
	}
	log = log.With(slog.String("driver", driver))

	var (
		h   *Handle
		err error
	)
	switch driver {
	case DriverMemory:
		var opts []cache.MemoryOption
		if cfg.MaxEntries > 0 {
			opts = append(opts, cache.WithMaxEntries(cfg.MaxEntries))
		}
		h = local(cache.NewMemory[Value](opts...))
	case DriverTTL:
		h = local(cache.NewTTL[Value](uint64(max(cfg.MaxEntries, 0))))
	case DriverBolt:
		h, err = openBolt(cfg)
	case DriverRedis:
		h, err = openRedis(ctx, cfg)
	case DriverPostgres:
		h, err = openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q (want one of %s)",
			apc.ErrConfiguration, cfg.Driver, strings.Join(Drivers(), ", "))
	}
	if err != nil {
		return nil, err
	}

	h.Driver = driver
	log.DebugContext(ctx, "cache backend opened")
	return h, nil
}

// local wraps an in-process backend; its readiness is whether it is still open.
func local(b cache.Backend[Value]) *Handle {
	return &Handle{Backend: b, Check: probe(b)}
}

func openBolt(cfg Config) (*Handle, error) {
	if cfg.BoltPath == "" {
		return nil, fmt.Errorf("%w: bolt driver needs a file path", apc.ErrConfiguration)
	}

	var opts []cache.BoltOption
	if cfg.Prefix != "" {
		opts = append(opts, cache.WithBucketPrefix(cfg.Prefix+"."))
	}

	b, err := cache.OpenBolt[Value](cfg.BoltPath, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", cfg.BoltPath, err)
	}
	return local(b), nil
}

func openRedis(ctx context.Context, cfg Config) (*Handle, error) {
	client, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	var opts []cache.RedisOption
	if cfg.Prefix != "" {
		opts = append(opts, cache.WithPrefix(cfg.Prefix))
	}

	return &Handle{
		Backend: cache.NewRedis[Value](client, nil, opts...),
		Check:   redis.Healthcheck(client),
		closers: []func(context.Context) error{redis.Shutdown(client)},
	}, nil
}

func openPostgres(ctx context.Context, cfg Config, log *slog.Logger) (*Handle, error) {
	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	table := cfg.Database.MigrationsTable
	if table == "" {
		table = "apc_schema_migrations"
	}
	if err := db.Migrate(ctx, pool, cache.Migrations, table, log); err != nil {
		pool.Close()
		return nil, err
	}

	b := cache.NewPostgres[Value](pool, nil)
	return &Handle{
		Backend: b,
		Check:   db.Healthcheck(pool),
		Purge:   b.PurgeExpired,
		closers: []func(context.Context) error{db.Shutdown(pool)},
	}, nil
}

const probeID = "apc:health"

func probe(b cache.Backend[Value]) health.CheckFunc {
	return func(ctx context.Context) error {
		_, err := b.Exists(ctx, probeID)
		return err
	}
}
