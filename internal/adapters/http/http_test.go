package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EcMscS/Footnote/internal/adapters/http/dto"
	"github.com/EcMscS/Footnote/internal/adapters/http/handlers"
	"github.com/EcMscS/Footnote/internal/adapters/http/middleware"
	sharedmem "github.com/EcMscS/Footnote/internal/adapters/shared/memory"
	storemem "github.com/EcMscS/Footnote/internal/adapters/storage/memory"
	"github.com/EcMscS/Footnote/internal/app"
	"github.com/EcMscS/Footnote/internal/platform/config"
	"github.com/EcMscS/Footnote/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

// newFootnoteEngine wires the full middleware chain and every handler over
// in-memory adapters.
func newFootnoteEngine(t *testing.T, serverCfg *config.ServerConfig) (*gin.Engine, *sharedmem.Storage) {
	t.Helper()

	logger := discardLogger()
	store := storemem.New()
	shared := sharedmem.New("group.footnote")

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:     store,
		Publisher: app.NewWidgetPublisher(app.WidgetPublisherConfig{Storage: shared, Logger: logger}),
		Logger:    logger,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))
	require.NoError(t, registry.Register(shared))

	srv := New(serverCfg, logger)

	SetupRouter(srv.Engine(), RouterConfig{
		Logger:        logger,
		AppConfig:     &config.AppConfig{Name: "footnote", Environment: "test", Version: "1.0.0"},
		ServerConfig:  serverCfg,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "now")),
		QuoteHandler:  handlers.NewQuoteHandler(service),
		WidgetHandler: handlers.NewWidgetHandler(service),
	})

	return srv.Engine(), shared
}

func TestSetupRouter_QuoteFlow(t *testing.T) {
	engine, shared := newFootnoteEngine(t, testServerConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes",
		strings.NewReader(`{"text":"Carpe diem","author":"Horace","title":"Odes"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
	assert.Equal(t, 1, shared.Writes())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes?q=horace", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var page dto.QuotePage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Odes", *page.Items[0].Title)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/widget", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"WidgetContent"`)
}

func TestSetupRouter_HealthEndpoints(t *testing.T) {
	engine, _ := newFootnoteEngine(t, testServerConfig())

	for _, path := range []string{"/-/live", "/-/ready", "/-/build", "/-/metrics"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestSetupRouter_ReadinessListsChecks(t *testing.T) {
	engine, _ := newFootnoteEngine(t, testServerConfig())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var result ports.HealthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, ports.HealthStatusHealthy, result.Status)
	assert.Contains(t, result.Checks, "quote-store")
	assert.Contains(t, result.Checks, "shared-storage")
}

func TestSetupRouter_OptionalHandlers(t *testing.T) {
	engine := gin.New()

	require.NotPanics(t, func() {
		SetupRouter(engine, RouterConfig{
			Logger:    discardLogger(),
			AppConfig: &config.AppConfig{Name: "footnote"},
		})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_MaxBodySize(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxRequestSize = 64

	engine, shared := newFootnoteEngine(t, cfg)

	body := `{"text":"` + strings.Repeat("a", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, shared.Writes())
}

func TestServer_StartPortInUse(t *testing.T) {
	first := New(testServerConfig(), discardLogger())

	_, err := first.Start()
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)

	cfg := testServerConfig()
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	_, err = New(cfg, discardLogger()).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

func TestServer_Addr(t *testing.T) {
	cfg := testServerConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 3000

	srv := New(cfg, discardLogger())

	assert.Equal(t, "0.0.0.0:3000", srv.Addr())
	assert.Equal(t, cfg, srv.Config())
	assert.NotNil(t, srv.Engine())
}

func TestServer_StartShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())

	errCh, err := srv.Start()
	require.NoError(t, err)

	assert.NotEqual(t, "127.0.0.1:0", srv.Addr(), "port 0 resolves once bound")

	resp, err := http.Get("http://" + srv.Addr() + "/-/live")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no routes registered")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	select {
	case _, ok := <-errCh:
		assert.False(t, ok, "error channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server to stop")
	}
}
