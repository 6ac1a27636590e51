package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/telemetry"
)

var (
	// ErrQueueFull is returned by Submit when the event buffer is at capacity.
	ErrQueueFull = errors.New("notification queue is full")

	// ErrQueueClosed is returned by Submit after Stop has been called.
	ErrQueueClosed = errors.New("notification queue is closed")
)

// DispatcherConfig sizes the dispatcher.
type DispatcherConfig struct {
	// WorkerCount determines how many events are processed concurrently
	WorkerCount int

	// QueueSize determines the buffer size for pending events
	QueueSize int

	// From is the sender address of every rendered job
	From string
}

// RecipientSource lists the users that receive notifications.
type RecipientSource interface {
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}

// JobPublisher hands a rendered job to the broker.
type JobPublisher interface {
	Publish(ctx context.Context, job domain.NotificationJob) error
}

// Dispatcher fans task-created events out to one job per manager.
type Dispatcher struct {
	recipients RecipientSource
	publisher  JobPublisher
	metrics    *telemetry.Metrics
	config     DispatcherConfig
	logger     *slog.Logger

	events     chan domain.TaskCreatedEvent
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool

	errHandler func(event domain.TaskCreatedEvent, err error)
}

// NewDispatcher creates a Dispatcher. Call Start before events are processed.
func NewDispatcher(
	recipients RecipientSource,
	publisher JobPublisher,
	metrics *telemetry.Metrics,
	config DispatcherConfig,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if recipients == nil {
		return nil, fmt.Errorf("recipients cannot be nil")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	if config.From == "" {
		return nil, fmt.Errorf("sender address cannot be empty")
	}
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 1
	}
	if metrics == nil {
		metrics = telemetry.Discard()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "notify_dispatcher"))

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		recipients: recipients,
		publisher:  publisher,
		metrics:    metrics,
		config:     config,
		logger:     logger,
		events:     make(chan domain.TaskCreatedEvent, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		errHandler: func(event domain.TaskCreatedEvent, err error) {
			logger.Error("task notification failed",
				"task_id", event.TaskID,
				"technician_id", event.TechnicianID,
				"error", err)
		},
	}, nil
}

// SetErrorHandler replaces the handler called for each failed event or job.
func (d *Dispatcher) SetErrorHandler(handler func(event domain.TaskCreatedEvent, err error)) {
	d.errHandler = handler
}

// Submit queues event without blocking.
func (d *Dispatcher) Submit(ctx context.Context, event domain.TaskCreatedEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.EventDropped(ctx, "closed")
		return ErrQueueClosed
	}

	select {
	case d.events <- event:
		d.metrics.EventSubmitted(ctx)
		return nil
	default:
		d.metrics.EventDropped(ctx, "queue_full")
		return ErrQueueFull
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("notification dispatcher started", "workers", d.config.WorkerCount)
}

// Stop refuses new events and waits for queued ones to drain. When ctx
// expires first, in-flight work is cancelled and ctx's error is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.events)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancelFunc()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancelFunc()
		d.logger.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.cancelFunc()
		<-done
		d.logger.Warn("notification dispatcher stopped before queue drained")
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	log := d.logger.With("worker_id", id)
	log.Debug("notification worker started")

	for event := range d.events {
		d.process(event)
	}

	log.Debug("notification worker stopped")
}

// process renders and publishes the jobs for one event. A failure for one
// manager does not prevent the others from being notified.
func (d *Dispatcher) process(event domain.TaskCreatedEvent) {
	ctx := d.ctx
	start := time.Now()

	managers, err := d.recipients.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		d.errHandler(event, fmt.Errorf("failed to list managers: %w", err))
		return
	}

	published := 0
	for _, manager := range managers {
		job := domain.NewTaskCreatedJob(event, d.config.From, manager.Email)
		if err := d.publisher.Publish(ctx, job); err != nil {
			d.metrics.PublishFailed(ctx)
			d.errHandler(event, fmt.Errorf("failed to publish notification for manager %d: %w", manager.ID, err))
			continue
		}
		d.metrics.JobPublished(ctx)
		published++
	}

	d.logger.Debug("task notification dispatched",
		"task_id", event.TaskID,
		"managers", len(managers),
		"published", published,
		"duration_ms", time.Since(start).Milliseconds())
}
