package middleware

import (
	"net/http"

	"github.com/dustin/go-humanize"
)

const defaultMaxBodySize = 10 * 1024 * 1024

// BodySizeLimit caps request bodies at maxSize, a human size such as
// "10MB" or "512KiB". An unparsable size falls back to 10MiB. A declared
// Content-Length over the limit is rejected with 413 before the handler
// runs; chunked bodies fail on read.
func BodySizeLimit(maxSize string) Middleware {
	size := int64(defaultMaxBodySize)
	if n, err := humanize.ParseBytes(maxSize); err == nil && n > 0 {
		size = int64(n)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":"Request body too large"}`))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
