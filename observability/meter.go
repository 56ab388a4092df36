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

	"github.com/kbukum/whispersrt/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	Resource Resource
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the global meter provider.
// The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.Resource)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.Resource.Name,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by conversions and providers.
type Metrics struct {
	conversionTotal    metric.Int64Counter
	conversionDuration metric.Float64Histogram
	unitsEmitted       metric.Int64Counter
	unitsDiscarded     metric.Int64Counter
	operationTotal     metric.Int64Counter
	operationDuration  metric.Float64Histogram
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.conversionTotal, err = meter.Int64Counter("conversion.total",
		metric.WithDescription("Audio to subtitle conversions by outcome")); err != nil {
		return nil, fmt.Errorf("creating conversion.total counter: %w", err)
	}
	if m.conversionDuration, err = meter.Float64Histogram("conversion.duration",
		metric.WithDescription("End-to-end conversion duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating conversion.duration histogram: %w", err)
	}
	if m.unitsEmitted, err = meter.Int64Counter("subtitle.units.emitted",
		metric.WithDescription("Subtitle blocks written")); err != nil {
		return nil, fmt.Errorf("creating subtitle.units.emitted counter: %w", err)
	}
	if m.unitsDiscarded, err = meter.Int64Counter("subtitle.units.discarded",
		metric.WithDescription("Malformed units dropped under the skip policy")); err != nil {
		return nil, fmt.Errorf("creating subtitle.units.discarded counter: %w", err)
	}
	if m.operationTotal, err = meter.Int64Counter("operation.total",
		metric.WithDescription("Provider operations by status")); err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("operation.duration",
		metric.WithDescription("Provider operation duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Errors by type and component")); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}
	return &m, nil
}

// RecordConversion records one finished conversion. A nil receiver is a no-op.
func (m *Metrics) RecordConversion(ctx context.Context, provider, status string, emitted, discarded int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	m.conversionTotal.Add(ctx, 1, attrs)
	m.conversionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
	if emitted > 0 {
		m.unitsEmitted.Add(ctx, int64(emitted))
	}
	if discarded > 0 {
		m.unitsDiscarded.Add(ctx, int64(discarded))
	}
}

// RecordOperation records a provider operation. A nil receiver is a no-op.
func (m *Metrics) RecordOperation(ctx context.Context, provider, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component. A nil receiver is a no-op.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
