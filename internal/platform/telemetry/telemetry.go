// Package telemetry wires OpenTelemetry metrics for the notification pipeline.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/alexa-mart-pipe/sword-be-challenge"

// ShutdownFunc flushes and stops the metric pipeline.
type ShutdownFunc func(ctx context.Context) error

// Setup builds the configured MeterProvider and installs it globally.
func Setup(cfg config.TelemetryConfig) (metric.MeterProvider, ShutdownFunc, error) {
	switch cfg.MetricsExporter {
	case "", "none":
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, func(context.Context) error { return nil }, nil

	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		interval := time.Duration(cfg.ExportIntervalSeconds) * time.Second
		if interval <= 0 {
			interval = time.Minute
		}
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		)
		otel.SetMeterProvider(provider)
		return provider, provider.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unsupported metrics exporter %q", cfg.MetricsExporter)
	}
}
