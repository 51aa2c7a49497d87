package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/riv/component"
)

// Readiness returns a handler for readiness probes. Any unhealthy
// component marks the service not ready; degraded ones do not.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ready"
		httpStatus := http.StatusOK
		var waiting []string

		if checker != nil {
			for _, ch := range checker(c.Request.Context()) {
				if ch.Status == component.StatusUnhealthy {
					waiting = append(waiting, ch.Name)
				}
			}
		}
		if len(waiting) > 0 {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"waiting":   waiting,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
