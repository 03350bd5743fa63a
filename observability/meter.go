package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/eventstream/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments of the event distribution engine.
type Metrics struct {
	eventsPublished   metric.Int64Counter
	publishFailures   metric.Int64Counter
	framesDelivered   metric.Int64Counter
	subscribersActive metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	eventsPublished, err := meter.Int64Counter("eventstream.events.published",
		metric.WithDescription("Events accepted by the channel publisher"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events.published counter: %w", err)
	}

	publishFailures, err := meter.Int64Counter("eventstream.publish.failures",
		metric.WithDescription("External delivery legs that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating publish.failures counter: %w", err)
	}

	framesDelivered, err := meter.Int64Counter("eventstream.frames.delivered",
		metric.WithDescription("Wire frames written to directly held connections"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames.delivered counter: %w", err)
	}

	subscribersActive, err := meter.Int64UpDownCounter("eventstream.subscribers.active",
		metric.WithDescription("Listeners currently attached to the bus"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating subscribers.active gauge: %w", err)
	}

	return &Metrics{
		eventsPublished:   eventsPublished,
		publishFailures:   publishFailures,
		framesDelivered:   framesDelivered,
		subscribersActive: subscribersActive,
	}, nil
}

// RecordPublish records an accepted publish for a channel. mode is "local",
// "proxy", or "both".
func (m *Metrics) RecordPublish(ctx context.Context, channel, mode string) {
	if m == nil {
		return
	}
	m.eventsPublished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("mode", mode),
	))
}

// RecordPublishFailure records a failed external delivery leg.
func (m *Metrics) RecordPublishFailure(ctx context.Context, channel string) {
	if m == nil {
		return
	}
	m.publishFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
	))
}

// RecordFrameDelivered records one frame written to an open connection.
func (m *Metrics) RecordFrameDelivered(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.framesDelivered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordSubscriberAttached increments the active subscriber count.
func (m *Metrics) RecordSubscriberAttached(ctx context.Context) {
	if m == nil {
		return
	}
	m.subscribersActive.Add(ctx, 1)
}

// RecordSubscriberDetached decrements the active subscriber count.
func (m *Metrics) RecordSubscriberDetached(ctx context.Context) {
	if m == nil {
		return
	}
	m.subscribersActive.Add(ctx, -1)
}
