package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the counters recorded by the notification pipeline.
type Metrics struct {
	eventsSubmitted    metric.Int64Counter
	eventsDropped      metric.Int64Counter
	jobsPublished      metric.Int64Counter
	publishFailures    metric.Int64Counter
	deliveriesAcked    metric.Int64Counter
	deliveriesRequeued metric.Int64Counter
	deliveriesRejected metric.Int64Counter
}

// NewMetrics registers the pipeline counters on provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	var (
		m   Metrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.eventsSubmitted, "tasklog.notify.events.submitted", "Task-created events accepted by the dispatcher"},
		{&m.eventsDropped, "tasklog.notify.events.dropped", "Task-created events refused by the dispatcher"},
		{&m.jobsPublished, "tasklog.notify.jobs.published", "Notification jobs published to the broker"},
		{&m.publishFailures, "tasklog.notify.jobs.publish_failures", "Notification jobs that could not be published"},
		{&m.deliveriesAcked, "tasklog.notify.deliveries.acked", "Deliveries sent by email and acknowledged"},
		{&m.deliveriesRequeued, "tasklog.notify.deliveries.requeued", "Deliveries returned to the queue after a failure"},
		{&m.deliveriesRejected, "tasklog.notify.deliveries.rejected", "Deliveries rejected without requeue"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	return &m, nil
}

// Discard returns Metrics that record nothing.
func Discard() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

func reason(r string) metric.AddOption {
	return metric.WithAttributes(attribute.String("reason", r))
}

// EventSubmitted counts an event accepted by the dispatcher.
func (m *Metrics) EventSubmitted(ctx context.Context) {
	m.eventsSubmitted.Add(ctx, 1)
}

// EventDropped counts an event the dispatcher refused.
func (m *Metrics) EventDropped(ctx context.Context, why string) {
	m.eventsDropped.Add(ctx, 1, reason(why))
}

// JobPublished counts a job handed to the broker.
func (m *Metrics) JobPublished(ctx context.Context) {
	m.jobsPublished.Add(ctx, 1)
}

// PublishFailed counts a job that could not be published.
func (m *Metrics) PublishFailed(ctx context.Context) {
	m.publishFailures.Add(ctx, 1)
}

// DeliveryAcked counts a delivery sent and acknowledged.
func (m *Metrics) DeliveryAcked(ctx context.Context) {
	m.deliveriesAcked.Add(ctx, 1)
}

// DeliveryRequeued counts a delivery returned to the queue.
func (m *Metrics) DeliveryRequeued(ctx context.Context) {
	m.deliveriesRequeued.Add(ctx, 1)
}

// DeliveryRejected counts a delivery discarded or dead-lettered.
func (m *Metrics) DeliveryRejected(ctx context.Context, why string) {
	m.deliveriesRejected.Add(ctx, 1, reason(why))
}
