// Package memory provides in-process shared storage.
package memory

import (
	"context"
	"sync"

	"github.com/EcMscS/Footnote/internal/domain"
)

// Storage keeps values in a map. Values are copied on the way in and out.
type Storage struct {
	mu     sync.RWMutex
	group  string
	values map[string][]byte
	writes int
}

// New creates empty storage for group.
func New(group string) *Storage {
	return &Storage{group: group, values: make(map[string][]byte)}
}

// Group returns the group name.
func (s *Storage) Group() string { return s.group }

// Name implements ports.HealthChecker.
func (s *Storage) Name() string { return "shared-storage" }

// Check implements ports.HealthChecker.
func (s *Storage) Check(ctx context.Context) error { return ctx.Err() }

// Get returns a copy of the value under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, domain.NewNotFoundError("shared value", key)
	}

	return append([]byte(nil), v...), nil
}

// Set replaces the value under key.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	s.writes++

	return nil
}

// Writes returns how many times Set succeeded.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes
}
