//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	footnotehttp "github.com/EcMscS/Footnote/internal/adapters/http"
	"github.com/EcMscS/Footnote/internal/adapters/http/dto"
	"github.com/EcMscS/Footnote/internal/adapters/http/handlers"
	"github.com/EcMscS/Footnote/internal/adapters/shared/filegroup"
	"github.com/EcMscS/Footnote/internal/adapters/storage/sqlite"
	"github.com/EcMscS/Footnote/internal/app"
	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/platform/config"
	"github.com/EcMscS/Footnote/internal/ports"
)

const widgetGroup = "group.footnote"

// testContext holds state shared across step definitions within a scenario.
type testContext struct {
	dir          string
	server       *httptest.Server
	store        *sqlite.Store
	service      *app.QuoteService
	shared       *filegroup.Group
	client       *http.Client
	response     *http.Response
	responseBody []byte
}

// reset tears down the journal of the previous scenario.
func (tc *testContext) reset() {
	if tc.response != nil && tc.response.Body != nil {
		tc.response.Body.Close()
	}

	if tc.server != nil {
		tc.server.Close()
	}

	if tc.service != nil {
		tc.service.Stop()
	}

	if tc.store != nil {
		_ = tc.store.Close()
	}

	if tc.dir != "" {
		_ = os.RemoveAll(tc.dir)
	}

	*tc = testContext{}
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &testContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty journal$`, tc.anEmptyJournal)
	ctx.Step(`^I save a quote "([^"]*)" by "([^"]*)" from "([^"]*)"$`, tc.iSaveAQuote)
	ctx.Step(`^I request GET "([^"]*)"$`, tc.iRequestGET)
	ctx.Step(`^I delete the quotes at positions "([^"]*)" while searching "([^"]*)"$`, tc.iDeleteAtPositions)
	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the listed authors should be "([^"]*)"$`, tc.theListedAuthorsShouldBe)
	ctx.Step(`^the widget should show (\d+) entr(?:y|ies)$`, tc.theWidgetShouldShow)
	ctx.Step(`^widget entry (\d+) should be by "([^"]*)"$`, tc.widgetEntryShouldBeBy)
}

// anEmptyJournal starts a server over a fresh SQLite store and widget group.
func (tc *testContext) anEmptyJournal() error {
	dir, err := os.MkdirTemp("", "footnote-features-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	tc.dir = dir
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tc.store, err = sqlite.Open(context.Background(), filepath.Join(dir, "footnote.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	tc.shared, err = filegroup.Open(filepath.Join(dir, "shared"), widgetGroup, logger)
	if err != nil {
		return fmt.Errorf("open widget group: %w", err)
	}

	publisher := app.NewWidgetPublisher(app.WidgetPublisherConfig{Storage: tc.shared, Logger: logger})
	tc.service = app.NewQuoteService(app.QuoteServiceConfig{
		Store:     tc.store,
		Publisher: publisher,
		Logger:    logger,
	})

	if err := tc.service.SyncWidget(context.Background()); err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}

	tc.service.Start(context.Background())

	registry := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{
		tc.store,
		tc.shared,
		ports.Optional(ports.CheckFunc("widget-content", func(ctx context.Context) error {
			_, err := publisher.Read(ctx)
			return err
		})),
	} {
		if err := registry.Register(checker); err != nil {
			return err
		}
	}

	serverCfg := &config.ServerConfig{RequestTimeout: 5 * time.Second, MaxRequestSize: 1 << 20}

	engine := gin.New()
	footnotehttp.SetupRouter(engine, footnotehttp.RouterConfig{
		Logger:        logger,
		AppConfig:     &config.AppConfig{Name: "footnote", Environment: "test"},
		ServerConfig:  serverCfg,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		QuoteHandler:  handlers.NewQuoteHandler(tc.service),
		WidgetHandler: handlers.NewWidgetHandler(tc.service),
	})

	tc.server = httptest.NewServer(engine)
	tc.client = tc.server.Client()

	return nil
}

func (tc *testContext) do(method, path string, body any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader = http.NoBody

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.server.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tc.response != nil {
		tc.response.Body.Close()
	}

	tc.response, err = tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	tc.responseBody, err = io.ReadAll(tc.response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// iSaveAQuote posts a quote. Empty step arguments leave the field absent.
func (tc *testContext) iSaveAQuote(text, author, title string) error {
	body := map[string]string{}

	for field, value := range map[string]string{"text": text, "author": author, "title": title} {
		if value != "" {
			body[field] = value
		}
	}

	return tc.do(http.MethodPost, "/api/v1/quotes", body)
}

func (tc *testContext) iRequestGET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *testContext) iDeleteAtPositions(positions, query string) error {
	var parsed []int

	for _, field := range strings.Split(positions, ",") {
		p, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return fmt.Errorf("bad position %q: %w", field, err)
		}

		parsed = append(parsed, p)
	}

	return tc.do(http.MethodPost, "/api/v1/quotes/delete", map[string]any{"q": query, "positions": parsed})
}

func (tc *testContext) theResponseStatusShouldBe(expectedCode int) error {
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}

	if tc.response.StatusCode != expectedCode {
		return fmt.Errorf("expected status %d, got %d. Body: %s",
			expectedCode, tc.response.StatusCode, string(tc.responseBody))
	}

	return nil
}

func (tc *testContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(tc.responseBody), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, tc.responseBody)
	}

	return nil
}

func (tc *testContext) theListedAuthorsShouldBe(want string) error {
	var page dto.QuotePage
	if err := json.Unmarshal(tc.responseBody, &page); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}

	authors := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Author == nil {
			authors = append(authors, "")
			continue
		}

		authors = append(authors, *item.Author)
	}

	if got := strings.Join(authors, ", "); got != want {
		return fmt.Errorf("expected authors %q, got %q", want, got)
	}

	return nil
}

// widget reads the slot the way the widget does: straight from shared storage.
func (tc *testContext) widget() ([]domain.WidgetContent, error) {
	data, err := tc.shared.Get(context.Background(), app.DefaultWidgetKey)
	if err != nil {
		return nil, fmt.Errorf("read widget content: %w", err)
	}

	return app.WidgetCodec{}.Decode(data)
}

func (tc *testContext) theWidgetShouldShow(count int) error {
	entries, err := tc.widget()
	if err != nil {
		return err
	}

	if len(entries) != count {
		return fmt.Errorf("expected %d widget entries, got %d", count, len(entries))
	}

	return nil
}

func (tc *testContext) widgetEntryShouldBeBy(n int, author string) error {
	entries, err := tc.widget()
	if err != nil {
		return err
	}

	if n < 1 || n > len(entries) {
		return fmt.Errorf("widget has %d entries, no entry %d", len(entries), n)
	}

	if got := entries[n-1].Author; got != author {
		return fmt.Errorf("expected widget entry %d by %q, got %q", n, author, got)
	}

	return nil
}

// TestFeatures runs the GoDog BDD test suite.
func TestFeatures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
