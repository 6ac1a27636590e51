package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/notify"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/encryption"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/mail"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/rabbitmq"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/sqlstore"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/telemetry"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service/auth"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/store"
	"github.com/jmoiron/sqlx"
)

const shutdownTimeout = 10 * time.Second

// application holds the shared dependencies so they can be released in
// order on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	tokens      auth.TokenService
	userService service.UserService
	taskService service.TaskService

	// Notification pipeline
	metrics         *telemetry.Metrics
	shutdownMetrics telemetry.ShutdownFunc
	dispatcher      *notify.Dispatcher
	consumer        *notify.Consumer
	consumerCancel  context.CancelFunc
	consumerDone    sync.WaitGroup
}

// dependencies lets tests replace the process-level collaborators.
type dependencies struct {
	dial rabbitmq.DialFunc
	mail notify.Sender
}

// newApplication creates an application with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	return buildApplication(ctx, cfg, logger, dependencies{})
}

func buildApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps dependencies) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	provider, shutdownMetrics, err := telemetry.Setup(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	app.shutdownMetrics = shutdownMetrics
	app.metrics, err = telemetry.NewMetrics(provider)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	app.db, err = setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	codec, err := encryption.NewCodecFromConfig(cfg.Encryption)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize summary codec: %w", err)
	}

	app.tokens, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = sqlstore.NewUserStore(app.db, logger)
	app.taskStore = sqlstore.NewTaskStore(app.db, logger)

	app.userService = service.NewUserService(app.userStore, auth.NewBcryptHasher(cfg.Auth.BcryptCost), app.db, logger)

	publisher, err := notify.NewPublisher(cfg.Broker, deps.dial, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create notification publisher: %w", err)
	}

	app.dispatcher, err = notify.NewDispatcher(app.userStore, publisher, app.metrics, notify.DispatcherConfig{
		WorkerCount: cfg.Notification.WorkerCount,
		QueueSize:   cfg.Notification.QueueSize,
		From:        cfg.Mail.From,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create notification dispatcher: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, codec, app.dispatcher, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	if cfg.Broker.ConsumerEnabled {
		sender := deps.mail
		if sender == nil {
			sender, err = mail.NewSender(cfg.Mail, logger)
			if err != nil {
				app.cleanup()
				return nil, fmt.Errorf("failed to create mail sender: %w", err)
			}
		}
		app.consumer, err = notify.NewConsumer(cfg.Broker, deps.dial, sender, app.metrics, logger)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create email consumer: %w", err)
		}
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// startBackground launches the dispatcher workers and, when enabled, the consumer.
func (app *application) startBackground() {
	app.dispatcher.Start()

	if app.consumer == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	app.consumerCancel = cancel
	app.consumerDone.Add(1)
	go func() {
		defer app.consumerDone.Done()
		if err := app.consumer.Run(ctx); err != nil {
			app.logger.Error("email consumer stopped with error", "error", err)
		}
	}()
}

// Run serves HTTP until ctx is cancelled, then releases all resources.
func (app *application) Run(ctx context.Context) error {
	app.startBackground()

	err := app.startHTTPServer(ctx, app.setupRouter())
	app.cleanup()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work and closes connections. It is safe to call
// on a partially built application.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.dispatcher != nil {
		if err := app.dispatcher.Stop(ctx); err != nil {
			app.logger.Warn("notification dispatcher did not drain", "error", err)
		}
	}

	if app.consumerCancel != nil {
		app.consumerCancel()
		app.consumerDone.Wait()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	if app.shutdownMetrics != nil {
		if err := app.shutdownMetrics(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			app.logger.Error("error flushing metrics", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
