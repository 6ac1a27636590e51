package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/sqlstore"
	"github.com/jmoiron/sqlx"
)

// setupAppDatabase connects to the configured database and applies the
// embedded migrations.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := sqlstore.Migrate(ctx, db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("database connection established", "driver", cfg.Driver)
	return db, nil
}
