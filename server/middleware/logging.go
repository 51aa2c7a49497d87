package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/riv/logger"
)

// probePaths are served without request logging.
var probePaths = map[string]bool{
	"/health":  true,
	"/alive":   true,
	"/ready":   true,
	"/metrics": true,
}

// RequestLogger logs every request except health probes, with its status,
// response size and duration. A created run also logs its location. 5xx
// logs at error, 4xx at warn, the rest at debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := recordResponse(w)
			next.ServeHTTP(rec, r)

			status := rec.Status()
			fields := logger.Fields(
				"method", r.Method,
				logger.FieldPath, r.URL.Path,
				logger.FieldStatus, status,
				logger.FieldBytes, rec.bytes,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields["request_id"] = id
			}
			if loc := rec.Header().Get("Location"); loc != "" && status == http.StatusCreated {
				fields["location"] = loc
			}
			switch {
			case status >= 500:
				log.Error("Request completed", fields)
			case status >= 400:
				log.Warn("Request completed", fields)
			default:
				log.Debug("Request completed", fields)
			}
		})
	}
}

func isProbe(path string) bool {
	return probePaths[strings.TrimSuffix(path, "/")]
}
