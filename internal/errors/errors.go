// Package errors renders API errors in a single JSON envelope.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/reclaim/internal/middleware"
)

// Error codes of the envelope.
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond writes the envelope and logs it at warn level, or at error level for 5xx.
func respond(c *gin.Context, status int, code, message string, details map[string]interface{}, cause error) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", cause, fields)
		} else {
			log.Warn("Request rejected", fields)
		}
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, message, nil, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details, nil)
}

// InternalServerError returns a 500 response. err is logged but never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil, err)
}

// ServiceUnavailable returns a 503 response for a dependency that is down.
func ServiceUnavailable(c *gin.Context, message string, err error) {
	respond(c, http.StatusServiceUnavailable, ErrServiceUnavailable, message, nil, err)
}

// ValidationError returns a 400 response listing the failed query fields.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}
	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details, nil)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "len":
		return "Must have length of " + err.Param()
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "alphanum":
		return "Must contain only letters and digits"
	case "printascii":
		return "Must contain only printable characters"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
