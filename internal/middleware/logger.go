package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/reclaim/internal/logger"
)

// LoggerKey is the context key of the request-scoped logger.
const LoggerKey = "logger"

// Logger stores a request-scoped logger in the context and logs every
// completed request at a level derived from its status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}
		if c.FullPath() == "" {
			fields["path"] = c.Request.URL.Path
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields["query"] = q
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			requestLogger.Error("Request completed with server error", nil, fields)
		case status >= 400:
			requestLogger.Warn("Request completed with client error", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger, or nil outside a Logger chain.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if log, ok := v.(*logger.Logger); ok {
			return log
		}
	}
	return nil
}
