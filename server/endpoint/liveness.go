package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Liveness answers /alive. The process counts as dead once workerStopped
// reports true, since no run can be served after that. A nil workerStopped
// means no worker is mounted.
func Liveness(serviceName string, workerStopped func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, status, worker := http.StatusOK, "alive", "none"
		if workerStopped != nil {
			worker = "running"
			if workerStopped() {
				code, status, worker = http.StatusServiceUnavailable, "dead", "stopped"
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"service":   serviceName,
			"worker":    worker,
			"uptime":    time.Since(startTime).Round(time.Second).String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
