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

	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
	"github.com/kbukum/riv/version"
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

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a periodic OTLP meter provider as the global provider.
// The caller shuts it down on exit.
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

// Metrics holds the instruments a pipeline run reports to.
type Metrics struct {
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	runActive    metric.Int64UpDownCounter
	messageTotal metric.Int64Counter
	recordTotal  metric.Int64Counter
	byteTotal    metric.Int64Counter
	errorTotal   metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("riv.run.total",
		metric.WithDescription("Pipeline runs by final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("riv.run.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.run.duration histogram: %w", err)
	}

	runActive, err := meter.Int64UpDownCounter("riv.run.active",
		metric.WithDescription("Number of pipeline runs in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.run.active gauge: %w", err)
	}

	messageTotal, err := meter.Int64Counter("riv.stage.messages",
		metric.WithDescription("Atoms handled per stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.stage.messages counter: %w", err)
	}

	recordTotal, err := meter.Int64Counter("riv.stage.records",
		metric.WithDescription("Data records handled per stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.stage.records counter: %w", err)
	}

	byteTotal, err := meter.Int64Counter("riv.stage.bytes",
		metric.WithDescription("Bytes handled per stage"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.stage.bytes counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("riv.stage.errors",
		metric.WithDescription("Errors per stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating riv.stage.errors counter: %w", err)
	}

	return &Metrics{
		runTotal:     runTotal,
		runDuration:  runDuration,
		runActive:    runActive,
		messageTotal: messageTotal,
		recordTotal:  recordTotal,
		byteTotal:    byteTotal,
		errorTotal:   errorTotal,
	}, nil
}

// RecordRunStart increments the active run count.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	m.runActive.Add(ctx, 1)
}

// RecordRunEnd decrements active runs and records the finished run.
func (m *Metrics) RecordRunEnd(ctx context.Context, sink, status string, duration time.Duration) {
	m.runActive.Add(ctx, -1)
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sink", sink),
		attribute.String("status", status),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("sink", sink),
	))
}

// RecordStage exports one stage snapshot as counter increments.
func (m *Metrics) RecordStage(ctx context.Context, stage string, cm metrics.ComponentMetrics) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", cm.Status.String()),
	)
	m.messageTotal.Add(ctx, int64(cm.MessageCount), attrs)
	m.recordTotal.Add(ctx, int64(cm.RecordCount), attrs)
	m.byteTotal.Add(ctx, int64(cm.ByteCount), attrs)
	m.errorTotal.Add(ctx, int64(cm.ErrorCount), attrs)
}
