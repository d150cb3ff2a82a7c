// Package memory provides an in-process ContextStore, the default for
// tests and single-instance deployments.
package memory

import (
	"context"
	"sync"

	"github.com/payflowkr/payflow/pkg/domain"
)

// Store implements ports.ContextStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.ScenarioContext
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ScenarioContext),
	}
}

// Save persists the context in memory. Contexts are deep-copied so the
// caller's pointer can never mutate stored state.
func (s *Store) Save(ctx context.Context, sessionID string, sc *domain.ScenarioContext) error {
	cp := sc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = cp
	return nil
}

// Load retrieves the context from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.ScenarioContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sc.Clone(), nil
}

// Delete removes the context.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
