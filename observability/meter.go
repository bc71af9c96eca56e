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

	"github.com/shale-sh/shale/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName identifies the runtime in exported metrics.
	ServiceName string
	// ServiceVersion is the runtime version.
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
// Returns a MeterProvider that should be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
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

// Metrics holds the instruments the runtime records: command
// invocations, pipeline evaluations, and values streamed to the host.
type Metrics struct {
	commandTotal     metric.Int64Counter
	commandDuration  metric.Float64Histogram
	pipelineTotal    metric.Int64Counter
	pipelineDuration metric.Float64Histogram
	pipelineActive   metric.Int64UpDownCounter
	valuesStreamed   metric.Int64Counter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	commandTotal, err := meter.Int64Counter("command.total",
		metric.WithDescription("Total command invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command.total counter: %w", err)
	}

	commandDuration, err := meter.Float64Histogram("command.duration",
		metric.WithDescription("Duration of command invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command.duration histogram: %w", err)
	}

	pipelineTotal, err := meter.Int64Counter("pipeline.total",
		metric.WithDescription("Total pipelines evaluated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.total counter: %w", err)
	}

	pipelineDuration, err := meter.Float64Histogram("pipeline.duration",
		metric.WithDescription("Duration of pipeline evaluations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.duration histogram: %w", err)
	}

	pipelineActive, err := meter.Int64UpDownCounter("pipeline.active",
		metric.WithDescription("Pipelines currently evaluating"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.active gauge: %w", err)
	}

	valuesStreamed, err := meter.Int64Counter("stream.values",
		metric.WithDescription("Values delivered to the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.values counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		commandTotal:     commandTotal,
		commandDuration:  commandDuration,
		pipelineTotal:    pipelineTotal,
		pipelineDuration: pipelineDuration,
		pipelineActive:   pipelineActive,
		valuesStreamed:   valuesStreamed,
		errorTotal:       errorTotal,
	}, nil
}

// RecordPipelineStart increments the active pipeline count.
func (m *Metrics) RecordPipelineStart(ctx context.Context) {
	m.pipelineActive.Add(ctx, 1)
}

// RecordPipelineEnd decrements active pipelines and records the
// completed evaluation.
func (m *Metrics) RecordPipelineEnd(ctx context.Context, status string, duration time.Duration) {
	m.pipelineActive.Add(ctx, -1)
	m.pipelineTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.pipelineDuration.Record(ctx, duration.Seconds())
}

// RecordCommand records a command invocation.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	)
	m.commandTotal.Add(ctx, 1, attrs)
	m.commandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("command", command),
	))
}

// RecordValues counts values delivered to the host.
func (m *Metrics) RecordValues(ctx context.Context, n int64) {
	m.valuesStreamed.Add(ctx, n)
}

// RecordError records an error by kind.
func (m *Metrics) RecordError(ctx context.Context, kind string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}
