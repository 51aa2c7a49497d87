package observability

import (
	"context"
	"errors"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/riv/component"
)

// Telemetry owns the tracer and meter providers as a managed component.
// When the config is disabled Start and Stop do nothing and the global
// no-op providers stay in place.
type Telemetry struct {
	cfg Config

	mu      sync.Mutex
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *Metrics
}

var _ component.Component = (*Telemetry)(nil)

// NewTelemetry creates the telemetry component.
func NewTelemetry(cfg Config) *Telemetry {
	cfg.ApplyDefaults()
	return &Telemetry{cfg: cfg}
}

func (t *Telemetry) Name() string { return "telemetry" }

// Start initializes both providers and the pipeline instruments.
func (t *Telemetry) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cfg.Enabled {
		m, err := NewMetrics(Meter(defaultTracerName))
		t.metrics = m
		return err
	}

	tp, err := InitTracer(ctx, t.cfg.TracerConfig())
	if err != nil {
		return err
	}
	mc := t.cfg.MeterConfig()
	mp, err := InitMeter(ctx, &mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	m, err := NewMetrics(mp.Meter(defaultTracerName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return err
	}
	t.tracer, t.meter, t.metrics = tp, mp, m
	return nil
}

// Stop flushes and shuts down the providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	if t.tracer != nil {
		errs = append(errs, t.tracer.Shutdown(ctx))
		t.tracer = nil
	}
	if t.meter != nil {
		errs = append(errs, t.meter.Shutdown(ctx))
		t.meter = nil
	}
	return errors.Join(errs...)
}

// Health reports whether exporters are running.
func (t *Telemetry) Health(ctx context.Context) component.Health {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := component.Health{Name: t.Name(), Status: component.StatusHealthy}
	switch {
	case !t.cfg.Enabled:
		h.Message = "disabled"
	case t.tracer == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Metrics returns the pipeline instruments, or nil before Start.
func (t *Telemetry) Metrics() *Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}
