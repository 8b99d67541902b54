package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records one finished request
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// HTTPMetrics records request count and latency by route pattern.
// The pattern (c.FullPath) keeps label cardinality bounded; unmatched
// requests report an empty route.
func HTTPMetrics(observer HTTPObserver) gin.HandlerFunc {
	if observer == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observer.ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
