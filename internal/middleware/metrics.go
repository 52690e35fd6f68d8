package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thilinahansana/university-scheduler-console/internal/service"
)

// Metrics records every console request against its route template so grid and export
// routes aggregate across timetable ids. Unrouted requests fall back to the raw path.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
