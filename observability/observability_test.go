package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/riv/component"
	"github.com/kbukum/riv/metrics"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("riv")

	if cfg.ServiceName != "riv" {
		t.Errorf("expected ServiceName 'riv', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("riv")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.ServiceName != "riv" || cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if len(cfg.Propagators) != 2 || cfg.Propagators[0] != PropagatorTraceContext {
		t.Errorf("propagators = %v", cfg.Propagators)
	}
	if cfg.TracerConfig().ServiceName != "riv" || cfg.MeterConfig().Interval != 15*time.Second {
		t.Error("derived configs should carry defaults")
	}
}

func TestConfig_Validate(t *testing.T) {
	disabled := Config{SampleRate: 7}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should not be validated: %v", err)
	}

	bad := Config{Enabled: true, Endpoint: "x:1", SampleRate: 2}
	if err := bad.Validate(); err == nil {
		t.Error("expected sample rate error")
	}

	noEndpoint := Config{Enabled: true, SampleRate: 1}
	if err := noEndpoint.Validate(); err == nil {
		t.Error("expected endpoint error")
	}

	badPropagator := Config{Enabled: true, Endpoint: "x:1", SampleRate: 1, Propagators: []string{"jaeger"}}
	if err := badPropagator.Validate(); err == nil {
		t.Error("expected propagator error")
	}
}

func TestNewPropagator(t *testing.T) {
	tests := []struct {
		names  []string
		fields []string
	}{
		{nil, []string{"traceparent", "tracestate", "baggage"}},
		{[]string{PropagatorB3}, []string{"b3"}},
		{[]string{PropagatorB3Multi}, []string{"x-b3-traceid", "x-b3-spanid", "x-b3-sampled"}},
		{[]string{PropagatorTraceContext, PropagatorB3}, []string{"traceparent", "tracestate", "b3"}},
	}
	for _, tt := range tests {
		p, err := NewPropagator(tt.names)
		if err != nil {
			t.Fatalf("NewPropagator(%v): %v", tt.names, err)
		}
		got := map[string]bool{}
		for _, f := range p.Fields() {
			got[f] = true
		}
		for _, f := range tt.fields {
			if !got[f] {
				t.Errorf("NewPropagator(%v) fields = %v, missing %q", tt.names, p.Fields(), f)
			}
		}
	}
	if _, err := NewPropagator([]string{"jaeger"}); err == nil {
		t.Error("expected error for unknown propagator")
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	m.RecordRunStart(ctx)
	m.RecordStage(ctx, "source", metrics.New(1))
	m.RecordRunEnd(ctx, "csv", "completed", 10*time.Millisecond)
}

func TestRecordStage_Exported(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	cm := metrics.New(1)
	cm.Complete()
	cm.AddRecords(3).AddBytes(120)
	m.RecordStage(context.Background(), "source", cm)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					got[md.Name] += dp.Value
				}
			}
		}
	}
	if got["riv.stage.records"] != 3 {
		t.Errorf("records = %d, want 3", got["riv.stage.records"])
	}
	if got["riv.stage.bytes"] != 120 {
		t.Errorf("bytes = %d, want 120", got["riv.stage.bytes"])
	}
}

func TestRunContext_SpanRecorded(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	rc := NewRunContext("corr-1", "in.csv", "csv", nil)
	ctx, span := rc.Start(context.Background())
	if RunContextFromContext(ctx) != rc {
		t.Error("expected run context in returned context")
	}
	rc.End(ctx, span, "failed", fmt.Errorf("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != SpanRun {
		t.Errorf("span name = %s, want %s", spans[0].Name, SpanRun)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestRunContextFromContext_NotSet(t *testing.T) {
	if RunContextFromContext(context.Background()) != nil {
		t.Error("expected nil when run context not set")
	}
}

func TestRunContext_WithMetrics(t *testing.T) {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("test"))
	rc := NewRunContext("corr-2", "", "devnull", m)
	ctx, span := rc.Start(context.Background())
	rc.End(ctx, span, "completed", nil)
	if rc.Duration() < 0 {
		t.Error("expected non-negative duration")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test-operation")
	defer span.End()
	if span == nil || ctx == nil {
		t.Fatal("expected span and context")
	}
}

func TestSetSpanAttribute(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), "attrs")
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "uint64-key", uint64(7))
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || len(spans[0].Attributes) != 4 {
		t.Errorf("unexpected spans %+v", spans)
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "key", "value")
	SetSpanError(context.Background(), fmt.Errorf("no span"))
}

func TestTelemetry_Disabled(t *testing.T) {
	tel := NewTelemetry(Config{})
	var _ component.Component = tel

	if tel.Metrics() != nil {
		t.Error("expected no metrics before Start")
	}
	if err := tel.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tel.Metrics() == nil {
		t.Error("expected instruments after Start")
	}
	h := tel.Health(context.Background())
	if h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("unexpected health %+v", h)
	}
	if err := tel.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
