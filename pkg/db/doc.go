// Package db bootstraps the PostgreSQL pool used by the Postgres cache backend.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with pooling defaults, startup
// retries and a health check, and applies schema migrations with
// [github.com/pressly/goose/v3].
//
// # Usage
//
//	pool, err := db.Connect(ctx, db.Config{ConnectionString: os.Getenv("APC_DATABASE_URL")})
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, cache.Migrations, "", log); err != nil {
//		return err
//	}
//
//	backend := cache.NewPostgres[string](pool, nil)
//
// # Error Handling
//
//   - [ErrEmptyConnectionString] - empty connection string
//   - [ErrFailedToParseDBConfig] - invalid connection string
//   - [ErrFailedToOpenDBConnection] - connection failed after all retries
//   - [ErrHealthcheckFailed] - ping failed
//   - [ErrShutdownTimeout] - pool still busy when the shutdown deadline passed
//   - [ErrSetDialect] - goose dialect configuration error
//   - [ErrApplyMigrations] - migration execution failed
package db
