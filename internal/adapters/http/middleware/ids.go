// Package middleware provides HTTP middleware components for the Gin server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID is the header name for correlation ID. A client
	// that saves a quote and then refreshes the list can send the same value
	// on both calls to tie their logs together.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin.Context key for the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds client-supplied IDs, which end up in every log line.
const maxIDLength = 128

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyCorrelationID
)

// requestIdentifier describes one ID a request carries: the header it
// arrives in and where it is kept afterwards.
type requestIdentifier struct {
	header string
	ginKey string
	ctxKey ctxKey
}

var (
	requestID     = requestIdentifier{header: HeaderRequestID, ginKey: ContextKeyRequestID, ctxKey: ctxKeyRequestID}
	correlationID = requestIdentifier{header: HeaderCorrelationID, ginKey: ContextKeyCorrelationID, ctxKey: ctxKeyCorrelationID}
)

// handler keeps a well-formed client ID or generates a UUID v4, echoes it in
// the response and stores it in both the gin.Context and the request context.
func (r requestIdentifier) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(r.header)
		if !validID(id) {
			id = uuid.New().String()
		}

		c.Set(r.ginKey, id)
		c.Header(r.header, id)
		c.Request = c.Request.WithContext(r.store(c.Request.Context(), id))

		c.Next()
	}
}

func (r requestIdentifier) store(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, r.ctxKey, id)
}

func (r requestIdentifier) fromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(r.ctxKey).(string)

	return id
}

func (r requestIdentifier) fromGin(c *gin.Context) string {
	return c.GetString(r.ginKey)
}

// validID accepts non-empty printable ASCII up to maxIDLength.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}

	return true
}

// RequestID returns middleware that propagates X-Request-ID, generating one
// when the client sent none or an unusable value.
func RequestID() gin.HandlerFunc { return requestID.handler() }

// CorrelationID returns middleware that propagates X-Correlation-ID the same way.
func CorrelationID() gin.HandlerFunc { return correlationID.handler() }

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string { return requestID.fromGin(c) }

// GetCorrelationID returns the correlation ID set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string { return correlationID.fromGin(c) }

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string { return requestID.fromContext(ctx) }

// CorrelationIDFromContext returns the correlation ID stored in ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string { return correlationID.fromContext(ctx) }

// ContextWithRequestID stores a request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return requestID.store(ctx, id)
}

// ContextWithCorrelationID stores a correlation ID in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return correlationID.store(ctx, id)
}
