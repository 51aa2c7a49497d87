package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunContext holds the observability state of one pipeline run.
type RunContext struct {
	CorrelationID string
	Path          string
	Sink          string
	StartTime     time.Time
	Metrics       *Metrics
}

// NewRunContext creates a run context. If metrics is nil, metric recording
// is skipped.
func NewRunContext(correlationID, path, sink string, metrics *Metrics) *RunContext {
	return &RunContext{
		CorrelationID: correlationID,
		Path:          path,
		Sink:          sink,
		StartTime:     time.Now(),
		Metrics:       metrics,
	}
}

type runContextKey struct{}

// WithRunContext stores a RunContext in the context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// Start opens the run span and records the run start.
func (rc *RunContext) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanRun)
	span.SetAttributes(
		attribute.String(AttrCorrelationID, rc.CorrelationID),
		attribute.String(AttrSink, rc.Sink),
	)
	if rc.Path != "" {
		span.SetAttributes(attribute.String(AttrPath, rc.Path))
	}
	if rc.Metrics != nil {
		rc.Metrics.RecordRunStart(ctx)
	}
	return WithRunContext(ctx, rc), span
}

// End closes the span and records the run outcome.
func (rc *RunContext) End(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(rc.StartTime)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if rc.Metrics != nil {
		rc.Metrics.RecordRunEnd(ctx, rc.Sink, status, duration)
	}
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
