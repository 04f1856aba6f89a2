package telemetry

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/EcMscS/Footnote/internal/platform/telemetry"

// HeaderTraceID carries the trace ID of the request back to the client so a
// failed save or delete can be found in the traces.
const HeaderTraceID = "X-Trace-ID"

// unmatchedRoute labels requests no route matched, keeping raw paths out of
// metric attributes.
const unmatchedRoute = "unmatched"

// internal reports whether path is a probe or the metrics scrape.
func internal(path string) bool {
	return strings.HasPrefix(path, "/-/")
}

type httpInstruments struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	duration, durErr := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of quote API requests"),
		metric.WithUnit("s"),
	)
	requests, reqErr := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Quote API requests served"),
	)
	active, actErr := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Quote API requests in flight"),
	)

	if err := errors.Join(durErr, reqErr, actErr); err != nil {
		return nil, err
	}

	return &httpInstruments{duration: duration, requests: requests, active: active}, nil
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records into mp instead of the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.meterProvider = mp
	}
}

// Middleware records request metrics and echoes the trace ID in the
// X-Trace-ID header. It runs after TracingMiddleware so the span is already
// in the request context. Probes and the metrics scrape pass through.
func Middleware(opts ...MiddlewareOption) gin.HandlerFunc {
	cfg := middlewareConfig{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Without instruments the header is still set.
	instruments, err := newHTTPInstruments(cfg.meterProvider.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if internal(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if instruments == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		base := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		instruments.active.Add(ctx, 1, metric.WithAttributes(base...))
		defer instruments.active.Add(ctx, -1, metric.WithAttributes(base...))

		start := time.Now()

		c.Next()

		done := metric.WithAttributes(append(base, attribute.Int("http.response.status_code", c.Writer.Status()))...)
		instruments.duration.Record(ctx, time.Since(start).Seconds(), done)
		instruments.requests.Add(ctx, 1, done)
	}
}

// TracingMiddleware starts a server span per request. Health probes and the
// metrics scrape are not traced.
func TracingMiddleware(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	opts = append([]otelgin.Option{
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return !internal(c.Request.URL.Path)
		}),
	}, opts...)

	return otelgin.Middleware(serviceName, opts...)
}
