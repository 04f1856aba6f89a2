// Package memory provides an in-process quote store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/EcMscS/Footnote/internal/adapters/storage"
	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/ports"
)

type entry struct {
	quote domain.Quote
	seq   uint64
}

// Store keeps quotes in a map guarded by a RWMutex. It is the default driver
// for local runs and the reference behavior for the SQLite store.
type Store struct {
	mu      sync.RWMutex
	seq     uint64
	byID    map[string]entry
	newID   func() string
	changes storage.Listeners
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:  make(map[string]entry),
		newID: func() string { return uuid.New().String() },
	}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "quote-store" }

// Check implements ports.HealthChecker. An in-process map is always reachable.
func (s *Store) Check(ctx context.Context) error { return ctx.Err() }

// List returns every quote in display order.
func (s *Store) List(ctx context.Context) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries := make([]entry, 0, len(s.byID))
	for _, e := range s.byID {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return newerFirst(entries[i], entries[j])
	})

	out := make([]domain.Quote, len(entries))
	for i, e := range entries {
		out[i] = e.quote
	}

	return out, nil
}

// Get returns one quote by identity.
func (s *Store) Get(ctx context.Context, id string) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return domain.Quote{}, domain.NewNotFoundError("quote", id)
	}

	return e.quote, nil
}

// Create inserts q and notifies listeners.
func (s *Store) Create(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()

	if q.ID == "" {
		q.ID = s.newID()
	}

	if _, exists := s.byID[q.ID]; exists {
		s.mu.Unlock()
		return domain.Quote{}, domain.NewConflictError("quote", "id "+q.ID+" already exists")
	}

	s.seq++
	s.byID[q.ID] = entry{quote: q, seq: s.seq}
	s.mu.Unlock()

	s.changes.Notify(ctx)

	return q, nil
}

// Delete removes a quote by identity and notifies listeners.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()

	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return domain.NewNotFoundError("quote", id)
	}

	delete(s.byID, id)
	s.mu.Unlock()

	s.changes.Notify(ctx)

	return nil
}

// Subscribe registers a change listener.
func (s *Store) Subscribe(listener ports.ChangeListener) func() {
	return s.changes.Subscribe(listener)
}

// Count returns the number of stored quotes.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byID)
}

// newerFirst orders by date descending, undated last, then by insertion
// sequence descending.
func newerFirst(a, b entry) bool {
	aDated, bDated := a.quote.HasDate(), b.quote.HasDate()

	switch {
	case aDated && !bDated:
		return true
	case !aDated && bDated:
		return false
	case aDated && !a.quote.DateCreated.Equal(b.quote.DateCreated):
		return a.quote.DateCreated.After(b.quote.DateCreated)
	default:
		return a.seq > b.seq
	}
}
