package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// Metrics returns a handler that reports runtime memory and goroutine
// counts. Pipeline metrics go through the OTLP exporters instead.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(http.StatusOK, gin.H{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_bytes": m.Alloc,
				"alloc":       humanize.IBytes(m.Alloc),
				"total_alloc": humanize.IBytes(m.TotalAlloc),
				"sys":         humanize.IBytes(m.Sys),
				"gc_runs":     m.NumGC,
			},
		})
	}
}
