package observability

import (
	"fmt"

	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel/propagation"
)

// Propagator names accepted in Config.Propagators.
const (
	PropagatorTraceContext = "tracecontext"
	PropagatorBaggage      = "baggage"
	PropagatorB3           = "b3"
	PropagatorB3Multi      = "b3multi"
)

// NewPropagator composes the named propagators in order. An empty list
// yields tracecontext plus baggage.
func NewPropagator(names []string) (propagation.TextMapPropagator, error) {
	if len(names) == 0 {
		names = []string{PropagatorTraceContext, PropagatorBaggage}
	}
	props := make([]propagation.TextMapPropagator, 0, len(names))
	for _, name := range names {
		switch name {
		case PropagatorTraceContext:
			props = append(props, propagation.TraceContext{})
		case PropagatorBaggage:
			props = append(props, propagation.Baggage{})
		case PropagatorB3:
			props = append(props, b3.New(b3.WithInjectEncoding(b3.B3SingleHeader)))
		case PropagatorB3Multi:
			props = append(props, b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)))
		default:
			return nil, fmt.Errorf("telemetry: unknown propagator %q", name)
		}
	}
	return propagation.NewCompositeTextMapPropagator(props...), nil
}
