package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/platform/metrics"
	"github.com/EcMscS/Footnote/internal/ports"
)

// DefaultWidgetKey is the shared storage key the widget reads.
const DefaultWidgetKey = "WidgetContent"

// ErrWidgetEncode marks a sync abandoned because the payload could not be
// encoded. Nothing is written in that case.
var ErrWidgetEncode = errors.New("widget encode failed")

// WidgetPublisher writes the widget projection of the quote collection to
// shared storage.
type WidgetPublisher struct {
	storage ports.SharedStorage
	key     string
	encoder WidgetEncoder
	now     func() time.Time
	metrics *metrics.WidgetSync
	logger  *slog.Logger
}

// WidgetPublisherConfig contains the publisher dependencies.
// Storage is required; everything else has a default.
type WidgetPublisherConfig struct {
	Storage ports.SharedStorage
	Key     string
	Encoder WidgetEncoder
	Now     func() time.Time
	Metrics *metrics.WidgetSync
	Logger  *slog.Logger
}

// NewWidgetPublisher creates a publisher. It panics if cfg.Storage is nil.
func NewWidgetPublisher(cfg WidgetPublisherConfig) *WidgetPublisher {
	if cfg.Storage == nil {
		panic("app: widget publisher requires shared storage")
	}

	if cfg.Key == "" {
		cfg.Key = DefaultWidgetKey
	}

	if cfg.Encoder == nil {
		cfg.Encoder = WidgetCodec{}
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &WidgetPublisher{
		storage: cfg.Storage,
		key:     cfg.Key,
		encoder: cfg.Encoder,
		now:     cfg.Now,
		metrics: cfg.Metrics,
		logger: cfg.Logger.With(
			slog.String("component", "widget_publisher"),
			slog.String("group", cfg.Storage.Group()),
		),
	}
}

// Key returns the shared storage key written by the publisher.
func (p *WidgetPublisher) Key() string { return p.key }

// Sync projects quotes, encodes them and replaces the shared value in one
// write. An encode failure leaves the previous value in place. Failures are
// logged and counted but never retried.
func (p *WidgetPublisher) Sync(ctx context.Context, quotes []domain.Quote) error {
	entries := domain.ProjectWidgetContent(quotes, p.now())

	data, err := p.encoder.Encode(entries)
	if err != nil {
		p.metrics.Observe(metrics.SyncEncodeError, 0, 0)
		p.logger.ErrorContext(ctx, "widget sync abandoned",
			slog.Int("quotes", len(quotes)),
			slog.Any("error", err),
		)

		return fmt.Errorf("%w: %w", ErrWidgetEncode, err)
	}

	if err := p.storage.Set(ctx, p.key, data); err != nil {
		p.metrics.Observe(metrics.SyncWriteError, 0, 0)
		p.logger.ErrorContext(ctx, "widget sync write failed",
			slog.String("key", p.key),
			slog.Any("error", err),
		)

		return fmt.Errorf("write widget content: %w", err)
	}

	p.metrics.Observe(metrics.SyncOK, len(data), len(quotes))
	p.logger.DebugContext(ctx, "widget synced",
		slog.String("key", p.key),
		slog.Int("quotes", len(quotes)),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// Read returns the entries currently published.
func (p *WidgetPublisher) Read(ctx context.Context) ([]domain.WidgetContent, error) {
	data, err := p.storage.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}

	return WidgetCodec{}.Decode(data)
}
