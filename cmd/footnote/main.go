// Package main is the entry point for the Footnote service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/EcMscS/Footnote/internal/adapters/http"
	"github.com/EcMscS/Footnote/internal/adapters/http/handlers"
	"github.com/EcMscS/Footnote/internal/adapters/shared/filegroup"
	"github.com/EcMscS/Footnote/internal/adapters/storage/memory"
	"github.com/EcMscS/Footnote/internal/adapters/storage/sqlite"
	"github.com/EcMscS/Footnote/internal/app"
	"github.com/EcMscS/Footnote/internal/platform/config"
	"github.com/EcMscS/Footnote/internal/platform/logging"
	"github.com/EcMscS/Footnote/internal/platform/metrics"
	"github.com/EcMscS/Footnote/internal/platform/telemetry"
	"github.com/EcMscS/Footnote/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// quoteStore is what the service needs from a store driver at startup.
type quoteStore interface {
	ports.QuoteStore
	ports.HealthChecker
}

func main() {
	err := run(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// profileFromEnv picks the config profile when --profile is not given.
func profileFromEnv() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Flags
	flags := flag.NewFlagSet("footnote", flag.ContinueOnError)
	configDir := flags.String("config-dir", config.DefaultDir, "directory holding base.yaml and the profile files")
	profile := flags.String("profile", profileFromEnv(), "config profile layered over base.yaml")

	if err := flags.Parse(args); err != nil {
		return err
	}

	// 2. Configuration (fail fast)
	cfg, err := config.Load(*profile, config.WithDir(*configDir))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Logging
	logger := logging.New(&logging.Config{
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		Service:       cfg.App.Name,
		Version:       cfg.App.Version,
		RedactContent: cfg.Log.RedactContent,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			Level:      cfg.Log.File.Level,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting footnote",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
	)

	// 4. Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		Insecure:     cfg.Telemetry.Insecure,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Quote store
	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Error("quote store close error", slog.Any("error", closeErr))
		}
	}()

	// 6. Shared storage group read by the widget
	shared, err := filegroup.Open(cfg.Widget.Dir, cfg.Widget.Group, logger)
	if err != nil {
		return fmt.Errorf("opening widget group: %w", err)
	}

	// 7. Application layer
	syncMetrics := metrics.NewWidgetSync(prometheus.DefaultRegisterer)

	publisher := app.NewWidgetPublisher(app.WidgetPublisherConfig{
		Storage: shared,
		Key:     cfg.Widget.Key,
		Metrics: syncMetrics,
		Logger:  logger,
	})

	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:     store,
		Publisher: publisher,
		Metrics:   syncMetrics,
		Logger:    logger,
	})

	// 8. Health checks
	widgetCheck := ports.Optional(ports.CheckFunc("widget-content", func(ctx context.Context) error {
		_, err := publisher.Read(ctx)
		return err
	}))

	healthRegistry := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{store, shared, widgetCheck} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	// The widget shows whatever was last published; bring it up to date
	// before serving. A failure here is logged and counted, not fatal.
	if err := quoteService.SyncWidget(ctx); err != nil {
		logger.Warn("initial widget sync failed", slog.Any("error", err))
	}

	quoteService.Start(ctx)
	defer quoteService.Stop()

	// 9. HTTP
	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		ServerConfig:  &cfg.Server,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		QuoteHandler:  handlers.NewQuoteHandler(quoteService),
		WidgetHandler: handlers.NewWidgetHandler(quoteService),
	})

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	return serve(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// openStore opens the configured store driver and returns its close function.
func openStore(ctx context.Context, cfg config.StoreConfig) (quoteStore, func() error, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		return store, store.Close, nil

	case config.StoreDriverMemory:
		return memory.New(), func() error { return nil }, nil

	default:
		return nil, nil, errors.New("unknown store driver: " + cfg.Driver)
	}
}

// serve runs until ctx is canceled by a signal or the server fails, then
// drains in-flight requests within shutdownTimeout.
func serve(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err, ok := <-serverErr; ok && err != nil {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested", slog.String("addr", server.Addr()))

		// gctx is already done; the drain gets a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}
