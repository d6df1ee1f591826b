package apierrors

import (
	"errors"
	"net/http"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/transfer/processor"

	"github.com/gin-gonic/gin"
)

var logger = observability.NewLogger()

// ErrorResponse is the JSON structure returned to API clients
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respond writes the error response and logs correlation info
func respond(c *gin.Context, statusCode int, code, message string) {
	ctx := c.Request.Context()
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "status_code", Value: statusCode},
		observability.Field{Key: "error_code", Value: code},
		observability.Field{Key: "error_message", Value: message},
	)
	logger.Info(ctx, "API error response")

	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, code, message string) {
	respond(c, http.StatusBadRequest, code, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, "NOT_FOUND", message)
}

// ServiceUnavailable sends a 503 response and logs the internal error
func ServiceUnavailable(c *gin.Context, code, message string, internalErr error) {
	logger.Error(c.Request.Context(), "service unavailable", internalErr)
	respond(c, http.StatusServiceUnavailable, code, message)
}

// InternalError sends a sanitized 500 response - never exposes internal details
func InternalError(c *gin.Context, internalErr error) {
	logger.Error(c.Request.Context(), "internal error", internalErr)
	respond(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred. Please try again later.")
}

// RespondWithError maps domain errors to API responses. Unknown errors are
// sanitized to a 500.
func RespondWithError(c *gin.Context, err error) {
	var svcErr *banking.ServiceError
	switch {
	case errors.Is(err, processor.ErrNoDestination):
		BadRequest(c, "NO_DESTINATION", "Provide exactly one of recipient_id or to_account_id")
	case errors.Is(err, processor.ErrInvalidScheduledAt):
		BadRequest(c, "INVALID_SCHEDULED_AT", "scheduled_at must be an ISO-8601 timestamp")
	case errors.As(err, &svcErr):
		respond(c, svcErr.StatusCode, "BANKING_ERROR", "The banking service rejected the request")
	case errors.Is(err, banking.ErrUnreachable):
		ServiceUnavailable(c, "BANKING_UNREACHABLE", "The banking service is unreachable", err)
	case errors.Is(err, banking.ErrBadResponse):
		ServiceUnavailable(c, "BANKING_BAD_RESPONSE", "The banking service returned an unreadable response", err)
	default:
		InternalError(c, err)
	}
}
