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
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/rabbitmq"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/telemetry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// RetryCountHeader carries the number of times a delivery has been republished.
const RetryCountHeader = "x-retry-count"

const (
	reconnectBackoffBase = 500 * time.Millisecond
	reconnectBackoffCap  = 30 * time.Second
	defaultPrefetch      = 10
)

var errConnectionLost = errors.New("broker connection lost")

// Sender delivers one job by email.
type Sender interface {
	Send(ctx context.Context, job domain.NotificationJob) error
}

// Consumer reads the email queue and sends each job.
type Consumer struct {
	dial            rabbitmq.DialFunc
	url             string
	queue           string
	prefetch        int
	maxRedeliveries int
	sender          Sender
	metrics         *telemetry.Metrics
	logger          *slog.Logger

	backoffBase time.Duration
	backoffCap  time.Duration
}

// NewConsumer creates a Consumer. A nil dial uses rabbitmq.Dial.
func NewConsumer(
	cfg config.BrokerConfig,
	dial rabbitmq.DialFunc,
	sender Sender,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) (*Consumer, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("broker url cannot be empty")
	}
	if cfg.EmailQueue == "" {
		return nil, fmt.Errorf("email queue cannot be empty")
	}
	if dial == nil {
		dial = rabbitmq.Dial
	}
	if metrics == nil {
		metrics = telemetry.Discard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	return &Consumer{
		dial:            dial,
		url:             cfg.URL,
		queue:           cfg.EmailQueue,
		prefetch:        prefetch,
		maxRedeliveries: cfg.MaxRedeliveries,
		sender:          sender,
		metrics:         metrics,
		logger:          logger.With(slog.String("component", "notify_consumer")),
		backoffBase:     reconnectBackoffBase,
		backoffCap:      reconnectBackoffCap,
	}, nil
}

type session struct {
	conn       rabbitmq.Connection
	ch         rabbitmq.Channel
	deliveries <-chan amqp.Delivery
	closed     chan *amqp.Error
}

func (s *session) close() {
	_ = s.ch.Close()
	_ = s.conn.Close()
}

// Run consumes until ctx is cancelled, reconnecting with backoff whenever the
// broker is unreachable or drops the connection. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("email consumer starting", "queue", c.queue, "prefetch", c.prefetch)

	for {
		var sess *session
		backoff := retry.WithCappedDuration(c.backoffCap, retry.NewExponential(c.reconnectBase()))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			s, err := c.connect()
			if err != nil {
				c.logger.Warn("failed to connect to broker, retrying", "error", err)
				return retry.RetryableError(err)
			}
			sess = s
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("email consumer stopped")
				return nil
			}
			return err
		}

		err = c.serve(ctx, sess)
		sess.close()
		if ctx.Err() != nil {
			c.logger.Info("email consumer stopped")
			return nil
		}
		c.logger.Warn("lost broker connection, reconnecting", "error", err)
	}
}

func (c *Consumer) connect() (*session, error) {
	conn, err := c.dial(c.url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	fail := func(err error) (*session, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := rabbitmq.DeclareQueue(ch, c.queue); err != nil {
		return fail(err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fail(fmt.Errorf("failed to set prefetch: %w", err))
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to start consuming %q: %w", c.queue, err))
	}

	return &session{
		conn:       conn,
		ch:         ch,
		deliveries: deliveries,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
	}, nil
}

func (c *Consumer) reconnectBase() time.Duration {
	if c.backoffBase <= 0 {
		return reconnectBackoffBase
	}
	return c.backoffBase
}

func (c *Consumer) serve(ctx context.Context, sess *session) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-sess.closed:
			if ok && amqpErr != nil {
				return fmt.Errorf("%w: %v", errConnectionLost, amqpErr)
			}
			return errConnectionLost
		case d, ok := <-sess.deliveries:
			if !ok {
				return errConnectionLost
			}
			c.handle(ctx, sess.ch, d)
		}
	}
}

// handle settles d exactly once: ack after a successful send, reject when the
// body cannot be decoded, otherwise requeue or dead-letter per the redelivery limit.
func (c *Consumer) handle(ctx context.Context, ch rabbitmq.Channel, d amqp.Delivery) {
	log := c.logger.With("message_id", d.MessageId, "delivery_tag", d.DeliveryTag)

	var job domain.NotificationJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.reject(ctx, log, d, "undecodable", err)
		return
	}
	if err := job.Validate(); err != nil {
		c.reject(ctx, log, d, "invalid", err)
		return
	}

	if err := c.sender.Send(ctx, job); err != nil {
		if ctx.Err() != nil {
			// Interrupted by shutdown; the attempt does not count against the limit.
			log.Info("email send interrupted, requeueing", "error", err)
			c.requeue(ctx, log, d)
			return
		}
		c.retry(ctx, log, ch, d, err)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("failed to ack delivery", "error", err)
		return
	}
	c.metrics.DeliveryAcked(ctx)
	log.Info("notification email sent")
}

func (c *Consumer) reject(ctx context.Context, log *slog.Logger, d amqp.Delivery, reason string, cause error) {
	log.Warn("rejecting delivery", "reason", reason, "error", cause)
	if err := d.Reject(false); err != nil {
		log.Error("failed to reject delivery", "error", err)
		return
	}
	c.metrics.DeliveryRejected(ctx, reason)
}

func (c *Consumer) requeue(ctx context.Context, log *slog.Logger, d amqp.Delivery) {
	if err := d.Nack(false, true); err != nil {
		log.Error("failed to nack delivery", "error", err)
		return
	}
	c.metrics.DeliveryRequeued(ctx)
}

// retry handles a failed send. Without a redelivery limit the delivery goes
// straight back to the queue. With one, it is republished carrying an
// incremented retry count, and rejected once the count reaches the limit.
func (c *Consumer) retry(ctx context.Context, log *slog.Logger, ch rabbitmq.Channel, d amqp.Delivery, cause error) {
	if c.maxRedeliveries == 0 {
		log.Warn("email send failed, requeueing", "error", cause)
		c.requeue(ctx, log, d)
		return
	}

	count := retryCount(d.Headers)
	if count >= c.maxRedeliveries {
		c.reject(ctx, log, d, "redelivery_limit", cause)
		return
	}

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[RetryCountHeader] = int32(count + 1)

	// Republishing is not cancelled by shutdown so the message is not lost
	// between the publish and the ack.
	err := ch.PublishWithContext(context.WithoutCancel(ctx), "", c.queue, false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Timestamp:    d.Timestamp,
		Body:         d.Body,
	})
	if err != nil {
		log.Error("failed to republish delivery, requeueing", "error", err)
		c.requeue(ctx, log, d)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("failed to ack republished delivery", "error", err)
		return
	}
	c.metrics.DeliveryRequeued(ctx)
	log.Warn("email send failed, republished", "retry_count", count+1, "error", cause)
}

func retryCount(headers amqp.Table) int {
	switch v := headers[RetryCountHeader].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}
