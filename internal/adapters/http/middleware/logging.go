package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/EcMscS/Footnote/internal/platform/logging"
)

// Logging seeds the request context with a logger carrying request_id,
// correlation_id and, when a span is active, trace_id, then writes one line
// per finished request. Register it after RequestID, CorrelationID and
// tracing. Operational paths and skipPaths still get the logger but are not
// logged.
//
// Only the route and path are logged. The query string holds the user's
// search text and stays out of the logs.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	quiet := exempt(true, skipPaths...)

	return func(c *gin.Context) {
		ctx := logging.WithContext(c.Request.Context(), logger)
		ctx = logging.WithRequestID(ctx, GetRequestID(c))
		ctx = logging.WithCorrelationID(ctx, GetCorrelationID(c))

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			ctx = logging.WithTraceID(ctx, sc.TraceID().String())
		}

		c.Request = c.Request.WithContext(ctx)

		if quiet(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		logging.FromContext(ctx).LogAttrs(ctx, levelFor(status), "request completed",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// levelFor logs server errors at error, client errors at warn.
func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
