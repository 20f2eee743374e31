package session

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/internal/config"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// Manager owns the live sessions of this process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	game     config.Game
	seed     int64
	logger   *slog.Logger
}

// NewManager creates a manager. A zero seed gives every session its own
// time-based seed.
func NewManager(game config.Game, seed int64, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		game:     game,
		seed:     seed,
		logger:   logger,
	}
}

// Create starts a session. seed and startLevel override the defaults when
// non-zero.
func (m *Manager) Create(seed int64, startLevel int) (*Session, error) {
	if seed == 0 {
		seed = m.seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := m.game.Progression
	if startLevel > 0 {
		opts.StartLevel = startLevel
	}

	s, err := New(uuid.New(), seed, m.game.Generator, opts, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove forgets and closes a session. It reports whether the session
// existed.
func (m *Manager) Remove(id uuid.UUID) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// All returns the live sessions ordered by id.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(all, func(a, b *Session) int {
		return slices.Compare(a.id[:], b.id[:])
	})
	return all
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
