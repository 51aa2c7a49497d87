package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracing opens a server span per request on the global tracer provider,
// named after the method and path. Incoming trace headers are honoured
// through the global propagator.
func Tracing(operation string) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/alive" && r.URL.Path != "/ready"
			}),
		)
	}
}
