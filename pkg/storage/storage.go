package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/pkg/state"
)

// Storage defines the session snapshot operations
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveSession stores a snapshot and refreshes its expiry
	SaveSession(ctx context.Context, s *state.SessionState) error
	// LoadSession returns nil, nil when the session does not exist
	LoadSession(ctx context.Context, id uuid.UUID) (*state.SessionState, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	ListSessions(ctx context.Context) ([]uuid.UUID, error)
}
