package ports

import (
	"context"

	"github.com/payflowkr/payflow/pkg/domain"
)

// ContextStore defines the interface for persisting scenario state.
// Implementations must keep sessions strictly isolated by id: writes
// keyed by one session id must never leak into another.
type ContextStore interface {
	// Save persists the context for a given session ID.
	Save(ctx context.Context, sessionID string, sc *domain.ScenarioContext) error

	// Load retrieves the context for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.ScenarioContext, error)

	// Delete removes the context for a given session ID. Deleting an
	// unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of sessions currently held by the store.
	List(ctx context.Context) ([]string, error)
}
