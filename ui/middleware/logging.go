package middleware

import (
	"time"

	"datadash/internal/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the application logger
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	log := logger.Component("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.With(map[string]interface{}{
			"status":     c.Writer.Status(),
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
			"client":     c.ClientIP(),
		})
		msg := "%s %s"
		switch {
		case c.Writer.Status() >= 500:
			entry.Error(msg, c.Request.Method, c.Request.URL.Path)
		case c.Writer.Status() >= 400:
			entry.Warn(msg, c.Request.Method, c.Request.URL.Path)
		default:
			entry.Debug(msg, c.Request.Method, c.Request.URL.Path)
		}
	}
}
