// Package dto provides the request and response shapes of the quote API,
// along with validation and the error envelope.
package dto

import "net/http"

// Error codes carried in the envelope.
const (
	ErrorCodeBadRequest  = "BAD_REQUEST"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeTimeout     = "TIMEOUT"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal    = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	ErrorCodeBadRequest:  http.StatusBadRequest,
	ErrorCodeValidation:  http.StatusBadRequest,
	ErrorCodeNotFound:    http.StatusNotFound,
	ErrorCodeConflict:    http.StatusConflict,
	ErrorCodeTimeout:     http.StatusGatewayTimeout,
	ErrorCodeUnavailable: http.StatusServiceUnavailable,
	ErrorCodeInternal:    http.StatusInternalServerError,
}

// HTTPStatusFromCode returns the status sent with code. Unknown codes are
// treated as internal errors.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// ErrorResponse is the body of every non-2xx answer:
//
//	{"error": {"code": "...", "message": "...", "details": {...}}, "traceId": "..."}
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the error half of the envelope. Details holds per-field
// messages for validation failures and the IDs already removed when a
// positional delete stops partway.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewErrorResponse creates an envelope without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// WithDetails sets the details map and returns e.
func (e *ErrorResponse) WithDetails(details map[string]string) *ErrorResponse {
	e.Error.Details = details
	return e
}

// WithTraceID sets the trace ID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}
