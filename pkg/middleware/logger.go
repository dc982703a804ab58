package middleware

import (
	"time"

	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"github.com/cloud-wave-best-zizon/store-service/pkg/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger writes one access log line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id, ok := requestid.FromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= 500:
			logging.Error(ctx, logger, "HTTP request", fields...)
		case status >= 400:
			logging.Warn(ctx, logger, "HTTP request", fields...)
		default:
			logging.Info(ctx, logger, "HTTP request", fields...)
		}
	}
}
