package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/internal/logger"
	"github.com/jwebster45206/masquerade/internal/services/events"
	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/generator"
	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/progression"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/rng"
	"github.com/jwebster45206/masquerade/pkg/state"
)

// Session is one running game. Every method is safe for concurrent use; the
// controller inside only ever runs under the session lock.
type Session struct {
	mu        sync.Mutex
	id        uuid.UUID
	seed      int64
	rng       *rng.RNG
	ctrl      *progression.Controller
	createdAt time.Time
	logger    *slog.Logger

	wins      int
	losses    int
	bestLevel int
	pending   []events.Event
	dirty     bool
	closed    bool
}

// recorder collects controller callbacks while the session lock is held.
// The worker publishes them after the tick.
type recorder struct {
	s *Session
}

func (r recorder) LevelGenerated(d *design.LevelDesign) {
	r.s.bestLevel = max(r.s.bestLevel, d.LevelIndex)
	r.s.record(events.LevelGenerated(r.s.id, d))
}

func (r recorder) ElevatorResolved(res progression.Resolution) {
	if res.Success {
		r.s.wins++
	} else {
		r.s.losses++
	}
	r.s.record(events.ElevatorResolved(r.s.id, res))
}

func (r recorder) DoorsChanged(elevator int, open bool) {
	r.s.record(events.ElevatorDoors(r.s.id, elevator, open))
}

func (r recorder) NotifyReaction(reaction mood.Reaction) error {
	r.s.record(events.NpcReaction(r.s.id, reaction))
	return nil
}

// New starts a session at the start level of opts.
func New(id uuid.UUID, seed int64, tuning generator.Tuning, opts progression.Options, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = logger.WithSession(log, id)

	s := &Session{
		id:        id,
		seed:      seed,
		rng:       rng.New(seed),
		createdAt: time.Now(),
		logger:    log,
	}

	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}
	gen := generator.New(tuning, s.rng, log)
	rec := recorder{s: s}
	ctrl, err := progression.New(gen, s.rng, opts, rec, rec, log)
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	ctrl.Start()

	log.Info("Session started", "seed", seed, "level", ctrl.Level())
	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Seed() int64   { return s.seed }

// Design returns the current level. It does not take the session lock.
func (s *Session) Design() *design.LevelDesign {
	return s.ctrl.Design()
}

// Apply routes one player event to the controller.
func (s *Session) Apply(e *queue.PlayerEvent) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid player event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	var err error
	switch e.Type {
	case queue.EventPlayerEnteredElevator:
		err = s.ctrl.PlayerEnteredElevator(*e.Elevator)
	case queue.EventPlayerExitedElevator:
		err = s.ctrl.PlayerExitedElevator(*e.Elevator)
	case queue.EventElevatorDoorsClosed:
		err = s.ctrl.ElevatorDoorsClosedWithPlayer(*e.Elevator)
	case queue.EventMaskSelected:
		err = s.ctrl.OnMaskSelected(*e.Mask)
	case queue.EventPlayerEnteredRoom:
		s.ctrl.PlayerEnteredRoom()
	case queue.EventNpcInteracted:
		_, err = s.ctrl.EvaluateNpc(*e.NpcID)
	case queue.EventPlayerMoved:
		s.ctrl.MovePlayer(*e.Position)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", e.Type, err)
	}
	s.dirty = true
	return nil
}

// Tick advances the game by dt seconds.
func (s *Session) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ctrl.Tick(dt)
}

// Close stops the session. Scheduled actions and unflushed events are
// dropped and nothing is reported dirty afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ctrl.Stop()
	s.pending = nil
	s.dirty = false
	s.logger.Info("Session closed", "level", s.ctrl.Level())
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Flush returns the events recorded since the last flush and whether the
// stored snapshot is out of date. A closed session flushes nothing.
func (s *Session) Flush() ([]events.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	evts, dirty := s.pending, s.dirty
	s.pending = nil
	s.dirty = false
	return evts, dirty
}

// Snapshot captures the session for storage and the API.
func (s *Session) Snapshot() *state.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &state.SessionState{
		ID:          s.id,
		Seed:        s.seed,
		RNGPosition: s.rng.Position(),
		Level:       s.ctrl.Level(),
		BestLevel:   s.bestLevel,
		Wins:        s.wins,
		Losses:      s.losses,
		Clock:       s.ctrl.Clock(),
		PlayerMask:  s.ctrl.PlayerMask(),
		Occupied:    s.ctrl.Occupied(),
		Moods:       s.ctrl.Crowd().Moods(),
		Design:      s.ctrl.Design(),
		CreatedAt:   s.createdAt,
		UpdatedAt:   time.Now(),
	}
}

// caller holds s.mu, or is New before the session is shared
func (s *Session) record(e events.Event) {
	s.pending = append(s.pending, e)
	s.dirty = true
}
