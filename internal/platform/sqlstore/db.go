package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

//go:embed migrations
var migrationsFS embed.FS

// Supported values of config.DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const pingTimeout = 5 * time.Second

type backend struct {
	sqlDriver string
	dialect   goose.Dialect
	dir       string
}

var backends = map[string]backend{
	DriverPostgres: {sqlDriver: "pgx", dialect: goose.DialectPostgres, dir: "migrations/postgres"},
	DriverSQLite:   {sqlDriver: "sqlite", dialect: goose.DialectSQLite3, dir: "migrations/sqlite"},
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	b, ok := backends[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn := cfg.URL
	if cfg.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(b.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// One connection serializes writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// sqliteDSN enables foreign key enforcement, which SQLite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Migrate applies every pending embedded migration for the given driver.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	log := logger.FromContext(ctx).With(slog.String("component", "migrations"))

	b, ok := backends[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	fsys, err := fs.Sub(migrationsFS, b.dir)
	if err != nil {
		return fmt.Errorf("failed to locate migrations for %s: %w", driver, err)
	}

	provider, err := goose.NewProvider(b.dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	startTime := time.Now()
	results, err := provider.Up(ctx)
	if err != nil {
		log.Error("migration failed",
			slog.String("error", err.Error()),
			slog.String("driver", driver))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()))
	}
	log.Info("migrations up to date",
		slog.String("driver", driver),
		slog.Int("applied", len(results)),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	return nil
}

// now returns the timestamp stored in created_at/updated_at columns.
// PostgreSQL keeps microseconds, so values are truncated to round-trip exactly.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
