package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/reclaim/internal/logger"
)

// Recovery turns a panic in a handler into a logged 500 response.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := GetRequestID(c)

		requestLogger := GetLogger(c)
		if requestLogger == nil {
			requestLogger = log
		}
		requestLogger.Error("Panic recovered", fmt.Errorf("panic: %v", recovered), map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"stack":      string(debug.Stack()),
		})

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":       "INTERNAL_SERVER_ERROR",
				"message":    "An unexpected error occurred",
				"request_id": requestID,
			},
		})
	})
}
