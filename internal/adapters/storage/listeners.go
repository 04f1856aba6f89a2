// Package storage holds pieces shared by the quote store adapters.
package storage

import (
	"context"
	"sync"

	"github.com/EcMscS/Footnote/internal/ports"
)

// Listeners is a registry of change listeners that stores embed to implement
// ports.QuoteStore.Subscribe.
type Listeners struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]ports.ChangeListener
	order  []int
}

// Subscribe adds listener and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (l *Listeners) Subscribe(listener ports.ChangeListener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.byID == nil {
		l.byID = make(map[int]ports.ChangeListener)
	}

	id := l.nextID
	l.nextID++
	l.byID[id] = listener
	l.order = append(l.order, id)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if _, ok := l.byID[id]; !ok {
			return
		}

		delete(l.byID, id)

		for i, v := range l.order {
			if v == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
}

// Notify calls every listener in subscription order. It must be called after
// the store has released its own locks.
func (l *Listeners) Notify(ctx context.Context) {
	l.mu.Lock()
	snapshot := make([]ports.ChangeListener, 0, len(l.order))
	for _, id := range l.order {
		snapshot = append(snapshot, l.byID[id])
	}
	l.mu.Unlock()

	for _, fn := range snapshot {
		fn(ctx)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.order)
}
