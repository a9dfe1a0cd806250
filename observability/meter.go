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

	"github.com/kbukum/lambdacontainer/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "0.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
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
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns the module meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// ResolutionMetrics holds the container's metric instruments.
type ResolutionMetrics struct {
	resolveTotal    metric.Int64Counter
	resolveDuration metric.Float64Histogram
	resolveActive   metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
	registrations   metric.Int64Gauge
}

// NewResolutionMetrics creates the instruments on meter.
func NewResolutionMetrics(meter metric.Meter) (*ResolutionMetrics, error) {
	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Top-level resolutions by contract and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	resolveDuration, err := meter.Float64Histogram("di.resolve.duration",
		metric.WithDescription("Duration of top-level resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.duration histogram: %w", err)
	}

	resolveActive, err := meter.Int64UpDownCounter("di.resolve.active",
		metric.WithDescription("Resolutions in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.active counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("di.resolve.errors",
		metric.WithDescription("Failed resolutions by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.errors counter: %w", err)
	}

	registrations, err := meter.Int64Gauge("di.registrations",
		metric.WithDescription("Registrations in the sealed table"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.registrations gauge: %w", err)
	}

	return &ResolutionMetrics{
		resolveTotal:    resolveTotal,
		resolveDuration: resolveDuration,
		resolveActive:   resolveActive,
		errorTotal:      errorTotal,
		registrations:   registrations,
	}, nil
}

// RecordStart increments the active resolution count.
func (m *ResolutionMetrics) RecordStart(ctx context.Context) {
	m.resolveActive.Add(ctx, 1)
}

// RecordEnd decrements active resolutions and records the finished one.
// code is empty for successful resolutions.
func (m *ResolutionMetrics) RecordEnd(ctx context.Context, contract, code string, duration time.Duration) {
	outcome := "ok"
	if code != "" {
		outcome = "error"
	}
	m.resolveActive.Add(ctx, -1)
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrContract, contract),
		attribute.String(AttrOutcome, outcome),
	))
	m.resolveDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrContract, contract),
	))
	if code != "" {
		m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrErrorCode, code)))
	}
}

// RecordRegistrations records the table size after boot.
func (m *ResolutionMetrics) RecordRegistrations(ctx context.Context, n int) {
	m.registrations.Record(ctx, int64(n))
}
