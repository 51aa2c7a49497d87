package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/riv/logger"
)

// Recovery turns a handler panic into a 500 JSON response and logs the
// stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("Panic recovered", logger.Fields(
						logger.FieldError, fmt.Sprintf("%v", rec),
						"stack", string(debug.Stack()),
						logger.FieldPath, r.URL.Path,
						"method", r.Method,
					))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
