package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EcMscS/Footnote/internal/adapters/http/dto"
	"github.com/EcMscS/Footnote/internal/platform/logging"
)

// Timeout bounds each request with a context deadline. The quote service
// and stores stop at the deadline; if the handler had not answered yet the
// client gets a TIMEOUT envelope. A zero timeout disables the middleware.
func Timeout(timeout time.Duration, skipPaths ...string) gin.HandlerFunc {
	skip := exempt(false, skipPaths...)

	return func(c *gin.Context) {
		if timeout <= 0 || skip(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		answered := c.Writer.Written()
		logging.FromContext(ctx).Warn("request deadline exceeded",
			slog.String("route", c.FullPath()),
			slog.Duration("timeout", timeout),
			slog.Bool("answered", answered),
		)

		if !answered {
			dto.RespondWithErrorCode(c, dto.ErrorCodeTimeout, "request timeout exceeded")
			c.Abort()
		}
	}
}
