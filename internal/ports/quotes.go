// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than on SQLite, files or maps.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never storage rows or file handles
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
package ports

import (
	"context"

	"github.com/EcMscS/Footnote/internal/domain"
)

// ChangeListener is invoked after a store mutation has been committed.
// Listeners run synchronously on the mutating goroutine, after the store has
// released its locks, so they may read the store again.
type ChangeListener func(ctx context.Context)

// QuoteStore holds the durable collection of quotes.
//
// Example usage in application layer:
//
//	quotes, err := store.List(ctx)
//	visible := domain.Filter(quotes, pattern)
type QuoteStore interface {
	// List returns every quote ordered by DateCreated descending.
	// Ties are broken by insertion order, newest insertion first; quotes
	// without a date come last.
	List(ctx context.Context) ([]domain.Quote, error)

	// Get returns one quote by identity.
	// Returns domain.ErrNotFound if the quote does not exist.
	Get(ctx context.Context, id string) (domain.Quote, error)

	// Create inserts a quote, assigning an ID when q.ID is empty, and returns
	// the stored quote. Returns domain.ErrConflict if the ID is taken.
	Create(ctx context.Context, q domain.Quote) (domain.Quote, error)

	// Delete removes a quote by identity.
	// Returns domain.ErrNotFound if the quote does not exist.
	Delete(ctx context.Context, id string) error

	// Subscribe registers a listener for committed mutations and returns a
	// function that removes it.
	Subscribe(listener ChangeListener) (unsubscribe func())
}

// SharedStorage is a key to bytes mapping scoped to a named group, readable
// by other processes that know the group name (the widget renderer).
type SharedStorage interface {
	// Group returns the name of the group this storage is scoped to.
	Group() string

	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if nothing has been written yet.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key in a single atomic step.
	Set(ctx context.Context, key string, value []byte) error
}
