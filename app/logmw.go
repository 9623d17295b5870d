// app/logmw.go
package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationHeader = "X-Correlation-Id"

// CorrelationID tags every request; the id rides the response header and
// all log lines, and is the only internal detail error responses expose.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("correlationID", id)
		c.Header(CorrelationHeader, id)
		c.Next()
	}
}

func CorrelationIDFrom(c *gin.Context) string {
	if v, ok := c.Get("correlationID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func RequestLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"correlation_id", CorrelationIDFrom(c),
		)
	}
}
