// Package observability provides OpenTelemetry tracing and metrics export
// for pipeline runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("riv"))
//	defer tp.Shutdown(ctx)
//
// Pipeline instruments:
//
//	m, err := observability.NewMetrics(observability.Meter("riv"))
//	rc := observability.NewRunContext(id, path, "csv", m)
//	ctx, span := rc.Start(ctx)
//	defer rc.End(ctx, span, "completed", nil)
//
// Telemetry is the component form used by the serve command; it owns both
// providers and is a no-op when disabled.
package observability
