package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latencies and in-flight requests. Paths are
// the matched route template so IDs do not explode label cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		method := c.Request.Method
		m.HTTPActiveRequests.WithLabelValues(method).Inc()
		start := time.Now()
		defer m.HTTPActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, method, path, c.Writer.Status(), time.Since(start))
	}
}
