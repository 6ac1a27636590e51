package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeBroker hands out fakeChannels and records everything published to them.
type fakeBroker struct {
	mu         sync.Mutex
	dialErrs   []error
	dials      int
	published  []amqp.Publishing
	declared   []string
	publishErr error
	deliveries chan amqp.Delivery
	qos        int
	closeNotes []chan *amqp.Error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{deliveries: make(chan amqp.Delivery, 16)}
}

func (b *fakeBroker) dial(string) (rabbitmq.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dials++
	if len(b.dialErrs) > 0 {
		err := b.dialErrs[0]
		b.dialErrs = b.dialErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &fakeConn{broker: b}, nil
}

func (b *fakeBroker) publishedMessages() []amqp.Publishing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]amqp.Publishing(nil), b.published...)
}

// dropConnection signals the most recently opened connection as closed by the server.
func (b *fakeBroker) dropConnection(reason *amqp.Error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.closeNotes) == 0 {
		return false
	}
	b.closeNotes[len(b.closeNotes)-1] <- reason
	return true
}

func (b *fakeBroker) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

type fakeConn struct {
	broker *fakeBroker
}

func (c *fakeConn) Channel() (rabbitmq.Channel, error) {
	return &fakeChannel{broker: c.broker}, nil
}

func (c *fakeConn) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.closeNotes = append(c.broker.closeNotes, receiver)
	return receiver
}

func (c *fakeConn) Close() error { return nil }

type fakeChannel struct {
	broker *fakeBroker
}

func (ch *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	ch.broker.mu.Lock()
	defer ch.broker.mu.Unlock()
	ch.broker.declared = append(ch.broker.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (ch *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	ch.broker.mu.Lock()
	defer ch.broker.mu.Unlock()
	if ch.broker.publishErr != nil {
		return ch.broker.publishErr
	}
	ch.broker.published = append(ch.broker.published, msg)
	return nil
}

func (ch *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	ch.broker.mu.Lock()
	defer ch.broker.mu.Unlock()
	ch.broker.qos = prefetchCount
	return nil
}

func (ch *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	ch.broker.mu.Lock()
	defer ch.broker.mu.Unlock()
	return ch.broker.deliveries, nil
}

func (ch *fakeChannel) Close() error { return nil }

// settlement records how a delivery was acknowledged.
type settlement struct {
	kind    string
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	settled []settlement
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.record(settlement{kind: "ack"})
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.record(settlement{kind: "nack", requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.record(settlement{kind: "reject", requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) record(s settlement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, s)
}

func (a *fakeAcknowledger) all() []settlement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]settlement(nil), a.settled...)
}

// recordingSender captures sent jobs and fails while failures remain.
type recordingSender struct {
	mu       sync.Mutex
	sent     []domain.NotificationJob
	failures int
}

var errSMTPDown = errors.New("smtp unavailable")

func (s *recordingSender) Send(_ context.Context, job domain.NotificationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errSMTPDown
	}
	s.sent = append(s.sent, job)
	return nil
}

// cancellingSender simulates shutdown arriving while an email is in flight.
type cancellingSender struct {
	cancel context.CancelFunc
}

func (s cancellingSender) Send(ctx context.Context, _ domain.NotificationJob) error {
	s.cancel()
	return ctx.Err()
}

func (s *recordingSender) jobs() []domain.NotificationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.NotificationJob(nil), s.sent...)
}

type stubRecipients struct {
	users []*domain.User
	err   error
}

func (s stubRecipients) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	jobs   []domain.NotificationJob
	failTo map[string]bool
	block  chan struct{}
}

func (p *recordingPublisher) Publish(ctx context.Context, job domain.NotificationJob) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failTo[job.To] {
		return errors.New("broker unavailable")
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPublisher) published() []domain.NotificationJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.NotificationJob(nil), p.jobs...)
}
