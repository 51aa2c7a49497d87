package endpoint

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/kbukum/riv/version"
)

var startTime = time.Now()

// Info returns a handler that reports build information and uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo()
		c.JSON(http.StatusOK, gin.H{
			"service":    serviceName,
			"version":    v.Version,
			"git_commit": v.GitCommit,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"is_release": v.IsRelease,
			"is_dirty":   v.IsDirty,
			"started":    humanize.Time(startTime),
			"uptime":     time.Since(startTime).Round(time.Second).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
