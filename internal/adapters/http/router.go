package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/EcMscS/Footnote/internal/adapters/http/handlers"
	"github.com/EcMscS/Footnote/internal/adapters/http/middleware"
	"github.com/EcMscS/Footnote/internal/platform/config"
	"github.com/EcMscS/Footnote/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the base logger for request-scoped loggers.
	Logger *slog.Logger

	// AppConfig names the service in traces.
	AppConfig *config.AppConfig

	// ServerConfig supplies the request timeout.
	ServerConfig *config.ServerConfig

	// HealthHandler serves /-/ endpoints. Optional.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves the quote list. Optional.
	QuoteHandler *handlers.QuoteHandler

	// WidgetHandler serves the widget slot. Optional.
	WidgetHandler *handlers.WidgetHandler
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID, Correlation ID
//  3. OpenTelemetry - server span, then request metrics
//  4. Logging - request-scoped logger, access log (skips /-/)
//  5. Timeout - on /api/v1 only
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.ServerConfig != nil && cfg.ServerConfig.RequestTimeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.ServerConfig.RequestTimeout))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(apiV1)
	}

	if cfg.WidgetHandler != nil {
		cfg.WidgetHandler.RegisterWidgetRoutes(apiV1)
	}
}
