// Package main implements the entry point for the task-logging API server,
// which records technicians' work and notifies managers by email.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// run loads configuration, builds the application and serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"metrics_exporter", cfg.Telemetry.MetricsExporter)
	l.Debug("broker configuration",
		"queue", cfg.Broker.EmailQueue,
		"consumer_enabled", cfg.Broker.ConsumerEnabled)

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
