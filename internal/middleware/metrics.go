package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vistari-app/vistari-api/internal/service"
)

// Metrics records duration and status for every request. Routes are
// labelled by their gin template so path parameters do not explode the
// cardinality.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
