package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/platform/logging"
)

// headerRequestID mirrors middleware.HeaderRequestID; dto sits below the
// middleware package and cannot import it.
const headerRequestID = "X-Request-ID"

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		if fieldErr, ok := domain.FieldError(err); ok {
			resp.WithDetails(map[string]string{fieldErr.Field: fieldErr.Message})
		}

		return http.StatusBadRequest, resp

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")

	case domain.IsUnavailable(err):
		// The reason names storage paths and drivers; keep it in the logs.
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			"quote storage is temporarily unavailable",
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// TraceID returns the OpenTelemetry trace ID of the request, falling back to
// the request ID the middleware echoed into the response headers.
func TraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.Writer.Header().Get(headerRequestID)
}

// RespondWithError writes the error envelope for err. Server-side failures
// are logged with the full error before the generic message goes out.
func RespondWithError(c *gin.Context, err error) {
	status, errResp := MapDomainError(err)
	if errResp == nil {
		return
	}

	RespondWithErrorResponse(c, status, err, errResp)
}

// RespondWithErrorResponse writes an already mapped error, for handlers that
// add details to the envelope before sending it.
func RespondWithErrorResponse(c *gin.Context, status int, err error, errResp *ErrorResponse) {
	errResp.TraceID = TraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			"error", err.Error(),
			"status", status,
			"trace_id", errResp.TraceID,
		)
	}

	c.JSON(status, errResp)
}

// RespondWithErrorCode writes an error response with a specific error code.
// Use this for adapter-level errors that don't originate from domain errors.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	errResp := NewErrorResponse(code, message).WithTraceID(TraceID(c))
	c.JSON(HTTPStatusFromCode(code), errResp)
}

// RespondWithRequestError writes a 400 response for a BindAndValidate or
// BindQueryAndValidate failure, with field details when validation failed.
func RespondWithRequestError(c *gin.Context, err error) {
	if IsValidationError(err) {
		errResp := NewErrorResponse(ErrorCodeValidation, "request validation failed").
			WithDetails(ValidationErrors(err)).
			WithTraceID(TraceID(c))
		c.JSON(http.StatusBadRequest, errResp)

		return
	}

	RespondWithErrorCode(c, ErrorCodeBadRequest, "malformed request")
}
