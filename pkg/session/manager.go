// Package session coordinates per-session access to the context store.
//
// The orchestrator applies exactly one load-mutate-store cycle per
// turn; the Manager guarantees that no two turns for the same session
// id run concurrently, locally via reference-counted mutexes and
// across replicas via an optional distributed locker.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/payflowkr/payflow/internal/logging"
	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes context access per session id. It uses reference
// counting to garbage collect unused locks.
type Manager struct {
	store ports.ContextStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager over the given store.
func NewManager(store ports.ContextStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves an existing session context from the store. An
// unknown session id yields nil without an error; the scenario treats
// that as "no active scenario".
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.ScenarioContext, error) {
	var sc *domain.ScenarioContext
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sc, err = m.load(ctx, sessionID)
		return err
	})
	return sc, err
}

func (m *Manager) load(ctx context.Context, sessionID string) (*domain.ScenarioContext, error) {
	sc, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sc, nil
}

// Save persists the session context.
func (m *Manager) Save(ctx context.Context, sessionID string, sc *domain.ScenarioContext) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, sc)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// Turn runs one load-mutate-store cycle under the session lock. The
// callback receives the stored context (nil when the session is new)
// and returns the context to persist; returning nil clears the session.
func (m *Manager) Turn(ctx context.Context, sessionID string, fn func(context.Context, *domain.ScenarioContext) (*domain.ScenarioContext, error)) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sc, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, err := fn(ctx, sc)
		if err != nil {
			return err
		}

		if next == nil {
			return m.store.Delete(ctx, sessionID)
		}
		return m.store.Save(ctx, sessionID, next)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying context store.
func (m *Manager) Store() ports.ContextStore {
	return m.store
}
