// Package app contains application services that orchestrate use cases.
// It coordinates the quote store, the filter engine and the widget publisher
// through ports and holds no HTTP or storage specifics.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/platform/metrics"
	"github.com/EcMscS/Footnote/internal/ports"
)

const instrumentationName = "github.com/EcMscS/Footnote/internal/app"

// QuoteService runs the quote list use cases: filtered listing, selection,
// creation, deletion by displayed position, and keeping the widget in sync.
type QuoteService struct {
	store     ports.QuoteStore
	publisher *WidgetPublisher
	metrics   *metrics.WidgetSync
	now       func() time.Time
	logger    *slog.Logger
	tracer    trace.Tracer

	// syncMu makes each sync read and publish one store snapshot, so the last
	// write always reflects the latest committed state.
	syncMu sync.Mutex

	subMu       sync.Mutex
	unsubscribe func()
}

// QuoteServiceConfig contains the quote service dependencies.
type QuoteServiceConfig struct {
	Store     ports.QuoteStore
	Publisher *WidgetPublisher
	Metrics   *metrics.WidgetSync
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewQuoteService creates a quote service. It panics if Store or Publisher
// is missing.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app: quote service requires a quote store")
	}

	if cfg.Publisher == nil {
		panic("app: quote service requires a widget publisher")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &QuoteService{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
		logger:    cfg.Logger.With(slog.String("component", "quote_service")),
		tracer:    otel.Tracer(instrumentationName),
	}
}

// List returns the quotes displayed for pattern, newest first.
func (s *QuoteService) List(ctx context.Context, pattern string) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.List",
		trace.WithAttributes(attribute.Bool("quote.filtered", pattern != "")),
	)
	defer span.End()

	quotes, err := s.store.List(ctx)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	visible := domain.Filter(quotes, pattern)
	span.SetAttributes(attribute.Int("quote.count", len(visible)))

	return visible, nil
}

// Get returns the quote selected by id.
func (s *QuoteService) Get(ctx context.Context, id string) (domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Get",
		trace.WithAttributes(attribute.String("quote.id", id)),
	)
	defer span.End()

	q, err := s.store.Get(ctx, id)
	if err != nil {
		recordError(span, err)
		return domain.Quote{}, err
	}

	return q, nil
}

// Create validates and stores a new quote, then refreshes the widget.
// A quote without a creation date is stamped with the current time.
func (s *QuoteService) Create(ctx context.Context, in domain.NewQuote) (domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		recordError(span, err)
		return domain.Quote{}, err
	}

	q := in.Quote()
	if !q.HasDate() {
		q.DateCreated = s.now().UTC()
	}

	created, err := s.store.Create(withLocalSync(ctx), q)
	if err != nil {
		recordError(span, err)
		s.logger.ErrorContext(ctx, "failed to create quote", slog.Any("error", err))

		return domain.Quote{}, fmt.Errorf("create quote: %w", err)
	}

	span.SetAttributes(attribute.String("quote.id", created.ID))
	s.logger.InfoContext(ctx, "quote created",
		slog.String("quote_id", created.ID),
		slog.String("media_type", created.Media().String()),
	)

	s.syncAfterMutation(ctx)

	return created, nil
}

// DeleteAt deletes the quotes at positions of the list displayed for
// pattern, then refreshes the widget if anything was deleted.
//
// Positions are validated against one snapshot of the displayed list before
// any deletion, and duplicates are ignored. Store failures do not stop the
// remaining deletions; they are joined into the returned error alongside the
// quotes that were deleted.
func (s *QuoteService) DeleteAt(ctx context.Context, pattern string, positions []int) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.DeleteAt",
		trace.WithAttributes(attribute.Int("quote.positions", len(positions))),
	)
	defer span.End()

	if len(positions) == 0 {
		return nil, nil
	}

	visible, err := s.List(ctx, pattern)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	targets, err := resolvePositions(visible, positions)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	mutationCtx := withLocalSync(ctx)
	deleted := make([]domain.Quote, 0, len(targets))

	var errs []error

	for _, q := range targets {
		if err := s.store.Delete(mutationCtx, q.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete quote",
				slog.String("quote_id", q.ID),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("delete quote %s: %w", q.ID, err))

			continue
		}

		deleted = append(deleted, q)
	}

	if len(deleted) > 0 {
		s.logger.InfoContext(ctx, "quotes deleted", slog.Int("count", len(deleted)))
		s.syncAfterMutation(ctx)
	}

	err = errors.Join(errs...)
	if err != nil {
		recordError(span, err)
	}

	return deleted, err
}

// Delete deletes one quote by identity, then refreshes the widget.
func (s *QuoteService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Delete",
		trace.WithAttributes(attribute.String("quote.id", id)),
	)
	defer span.End()

	if err := s.store.Delete(withLocalSync(ctx), id); err != nil {
		recordError(span, err)
		return err
	}

	s.logger.InfoContext(ctx, "quote deleted", slog.String("quote_id", id))
	s.syncAfterMutation(ctx)

	return nil
}

// SyncWidget publishes the full collection to the widget.
func (s *QuoteService) SyncWidget(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "QuoteService.SyncWidget")
	defer span.End()

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	quotes, err := s.store.List(ctx)
	if err != nil {
		s.metrics.Observe(metrics.SyncSourceError, 0, 0)
		recordError(span, err)
		s.logger.ErrorContext(ctx, "widget sync skipped: cannot read quotes", slog.Any("error", err))

		return fmt.Errorf("read quotes for widget: %w", err)
	}

	if err := s.publisher.Sync(ctx, quotes); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("quote.count", len(quotes)))

	return nil
}

// Widget returns the entries currently published to the widget.
func (s *QuoteService) Widget(ctx context.Context) ([]domain.WidgetContent, error) {
	return s.publisher.Read(ctx)
}

// WidgetKey returns the shared storage key the widget reads.
func (s *QuoteService) WidgetKey() string {
	return s.publisher.Key()
}

// Start subscribes to store changes so that writes made outside this
// service also refresh the widget. Calling Start twice is a no-op.
func (s *QuoteService) Start(_ context.Context) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.unsubscribe != nil {
		return
	}

	s.unsubscribe = s.store.Subscribe(s.onStoreChange)
}

// Stop removes the store subscription.
func (s *QuoteService) Stop() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *QuoteService) onStoreChange(ctx context.Context) {
	if localSync(ctx) {
		return
	}

	s.syncAfterMutation(ctx)
}

// syncAfterMutation refreshes the widget. The mutation has already
// committed, so the sync ignores cancellation of the request that caused it.
// Failures are logged and counted by SyncWidget and never fail the mutation.
func (s *QuoteService) syncAfterMutation(ctx context.Context) {
	_ = s.SyncWidget(context.WithoutCancel(ctx))
}

// resolvePositions maps displayed positions to quotes, in ascending position
// order without duplicates.
func resolvePositions(visible []domain.Quote, positions []int) ([]domain.Quote, error) {
	unique := make([]int, 0, len(positions))
	seen := make(map[int]struct{}, len(positions))

	for _, p := range positions {
		if p < 0 || p >= len(visible) {
			return nil, &domain.PositionError{Position: p, Visible: len(visible)}
		}

		if _, dup := seen[p]; dup {
			continue
		}

		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	sort.Ints(unique)

	out := make([]domain.Quote, len(unique))
	for i, p := range unique {
		out[i] = visible[p]
	}

	return out, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

type localSyncKey struct{}

// withLocalSync marks a mutation whose caller syncs the widget itself, so the
// store change listener skips it.
func withLocalSync(ctx context.Context) context.Context {
	return context.WithValue(ctx, localSyncKey{}, true)
}

func localSync(ctx context.Context) bool {
	v, _ := ctx.Value(localSyncKey{}).(bool)
	return v
}
