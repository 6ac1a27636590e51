package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/rabbitmq"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

const publishBackoffBase = 100 * time.Millisecond

// Publisher writes notification jobs to the email queue. Each call opens its
// own connection so a broker restart never leaves it holding a dead channel.
type Publisher struct {
	dial     rabbitmq.DialFunc
	url      string
	queue    string
	attempts uint64
	backoff  time.Duration
	logger   *slog.Logger
}

var _ JobPublisher = (*Publisher)(nil)

// NewPublisher creates a Publisher. A nil dial uses rabbitmq.Dial.
func NewPublisher(cfg config.BrokerConfig, dial rabbitmq.DialFunc, logger *slog.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("broker url cannot be empty")
	}
	if cfg.EmailQueue == "" {
		return nil, fmt.Errorf("email queue cannot be empty")
	}
	if dial == nil {
		dial = rabbitmq.Dial
	}
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.PublishAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &Publisher{
		dial:     dial,
		url:      cfg.URL,
		queue:    cfg.EmailQueue,
		attempts: uint64(attempts),
		backoff:  publishBackoffBase,
		logger:   logger.With(slog.String("component", "notify_publisher")),
	}, nil
}

// Publish serializes job and writes it as a persistent message. Failures to
// reach the broker are retried with exponential backoff up to the configured
// number of attempts.
func (p *Publisher) Publish(ctx context.Context, job domain.NotificationJob) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	if err := job.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	base := p.backoff
	if base <= 0 {
		base = publishBackoffBase
	}
	backoff := retry.WithMaxRetries(p.attempts-1, retry.NewExponential(base))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := p.publishOnce(ctx, msg)
		var dialErr *connectError
		if errors.As(err, &dialErr) {
			log.Warn("broker unavailable, retrying publish",
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification job: %w", err)
	}

	log.Debug("notification job published", "message_id", msg.MessageId, "attempts", attempt)
	return nil
}

// connectError marks failures that happened before anything reached the broker.
type connectError struct {
	err error
}

func (e *connectError) Error() string { return e.err.Error() }
func (e *connectError) Unwrap() error { return e.err }

func (p *Publisher) publishOnce(ctx context.Context, msg amqp.Publishing) error {
	conn, err := p.dial(p.url)
	if err != nil {
		return &connectError{err: err}
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return &connectError{err: err}
	}
	defer func() { _ = ch.Close() }()

	if err := rabbitmq.DeclareQueue(ch, p.queue); err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish to queue %q: %w", p.queue, err)
	}
	return nil
}
