package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EcMscS/Footnote/internal/adapters/http/dto"
	"github.com/EcMscS/Footnote/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantKept  bool
		wantValid bool
	}{
		{name: "generates UUID when absent", wantValid: true},
		{name: "keeps client value", header: "req-123", wantKept: true},
		{name: "replaces oversized value", header: strings.Repeat("x", maxIDLength+1), wantValid: true},
		{name: "replaces value with spaces", header: "forged id", wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromGin, fromCtx string

			router := gin.New()
			router.Use(RequestID())
			router.GET("/api/v1/quotes", func(c *gin.Context) {
				fromGin = GetRequestID(c)
				fromCtx = RequestIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}

			w := serve(router, req)

			assert.Equal(t, fromGin, w.Header().Get(HeaderRequestID))
			assert.Equal(t, fromGin, fromCtx)

			if tt.wantKept {
				assert.Equal(t, tt.header, fromGin)
			}

			if tt.wantValid {
				_, err := uuid.Parse(fromGin)
				assert.NoError(t, err)
			}
		})
	}
}

func TestCorrelationID(t *testing.T) {
	var fromGin, fromCtx string

	router := gin.New()
	router.Use(CorrelationID())
	router.POST("/api/v1/quotes", func(c *gin.Context) {
		fromGin = GetCorrelationID(c)
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	req.Header.Set(HeaderCorrelationID, "save-then-refresh")

	w := serve(router, req)

	assert.Equal(t, "save-then-refresh", fromGin)
	assert.Equal(t, "save-then-refresh", fromCtx)
	assert.Equal(t, "save-then-refresh", w.Header().Get(HeaderCorrelationID))
}

func TestGetIDFromContext_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeyRequestID, 42)

	assert.Empty(t, GetRequestID(c))
	assert.Empty(t, GetCorrelationID(c))
}

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}

	return lines
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{name: "success", path: "/api/v1/quotes", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error", path: "/api/v1/quotes", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error", path: "/api/v1/quotes", status: http.StatusServiceUnavailable, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			router := gin.New()
			router.Use(RequestID(), CorrelationID(), Logging(newBufferLogger(&buf)))
			router.GET("/api/v1/quotes", func(c *gin.Context) {
				c.Status(tt.status)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path+"?q=private+search", nil)
			req.Header.Set(HeaderRequestID, "req-log")
			serve(router, req)

			lines := logLines(t, &buf)
			require.Len(t, lines, 1)

			entry := lines[0]
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, "req-log", entry["request_id"])
			assert.NotEmpty(t, entry["correlation_id"])
			assert.Equal(t, "/api/v1/quotes", entry["route"])
			assert.InDelta(t, float64(tt.status), entry["status"], 0)
			assert.NotContains(t, buf.String(), "private")
		})
	}
}

func TestLogging_HandlersGetRequestLogger(t *testing.T) {
	var buf bytes.Buffer

	router := gin.New()
	router.Use(RequestID(), Logging(newBufferLogger(&buf), "/api/v1/widget"))
	router.GET("/api/v1/widget", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("widget read")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/widget", nil)
	req.Header.Set(HeaderRequestID, "req-widget")
	serve(router, req)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1, "skipped path logs only the handler line")
	assert.Equal(t, "widget read", lines[0]["msg"])
	assert.Equal(t, "req-widget", lines[0]["request_id"])
}

func TestLogging_SkipsProbes(t *testing.T) {
	var buf bytes.Buffer

	router := gin.New()
	router.Use(Logging(newBufferLogger(&buf)))
	router.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, httptest.NewRequest(http.MethodGet, "/-/live", nil))

	assert.Empty(t, buf.String())
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer

	router := gin.New()
	router.Use(Recovery(newBufferLogger(&buf)), RequestID())
	router.GET("/api/v1/quotes/:id", func(*gin.Context) {
		panic("nil quote")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/q-1", nil)
	req.Header.Set(HeaderRequestID, "req-panic")

	w := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
	assert.Equal(t, "req-panic", resp.TraceID)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "panic recovered", lines[0]["msg"])
	assert.Equal(t, "nil quote", lines[0]["panic"])
	assert.Equal(t, "/api/v1/quotes/:id", lines[0]["route"])
	assert.Contains(t, lines[0]["stack"], "runtime/debug")
}

func TestRecovery_AfterWrite(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/api/v1/widget", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/widget", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestTimeout(t *testing.T) {
	t.Run("sets a deadline", func(t *testing.T) {
		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second))
		router.GET("/api/v1/quotes", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("answers when the handler wrote nothing", func(t *testing.T) {
		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/api/v1/quotes", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrorCodeTimeout)
	})

	t.Run("skipped path has no deadline", func(t *testing.T) {
		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second, "/api/v1/widget/sync"))
		router.POST("/api/v1/widget/sync", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusNoContent)
		})

		serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/widget/sync", nil))

		assert.False(t, hasDeadline)
	})
}

func TestRecovery_RepanicsOnAbort(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/api/v1/widget", func(*gin.Context) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/widget", nil))
	})
}

func TestLevelFor(t *testing.T) {
	tests := map[int]slog.Level{
		http.StatusOK:                  slog.LevelInfo,
		http.StatusNoContent:           slog.LevelInfo,
		http.StatusBadRequest:          slog.LevelWarn,
		http.StatusGatewayTimeout:      slog.LevelError,
		http.StatusInternalServerError: slog.LevelError,
	}

	for status, want := range tests {
		assert.Equal(t, want, levelFor(status), "status %d", status)
	}
}

func TestExempt(t *testing.T) {
	withOps := exempt(true, "/api/v1/widget")
	assert.True(t, withOps("/-/ready"))
	assert.True(t, withOps("/api/v1/widget"))
	assert.False(t, withOps("/api/v1/widget/sync"))
	assert.False(t, withOps("/api/v1/quotes"))

	exact := exempt(false)
	assert.False(t, exact("/-/ready"))
}
