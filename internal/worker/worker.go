package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/internal/observe"
	"github.com/jwebster45206/masquerade/internal/services/events"
	"github.com/jwebster45206/masquerade/internal/session"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/storage"
)

const stepTimeout = 2 * time.Second

// EventSource hands out the queued player events of a session
type EventSource interface {
	Dequeue(ctx context.Context, sessionID uuid.UUID) ([]*queue.PlayerEvent, error)
}

// Publisher sends session events to subscribers
type Publisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, evts ...events.Event) error
}

// Worker runs the fixed-step game loop over every live session
type Worker struct {
	id        string
	sessions  *session.Manager
	source    EventSource
	publisher Publisher
	store     storage.Storage
	interval  time.Duration
	log       *slog.Logger
	metrics   *observe.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(sessions *session.Manager, source EventSource, publisher Publisher, store storage.Storage, interval time.Duration, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}

	return &Worker{
		id:        workerID,
		sessions:  sessions,
		source:    source,
		publisher: publisher,
		store:     store,
		interval:  interval,
		log:       log,
		metrics:   observe.Nop(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetMetrics replaces the no-op instruments. Call before Start.
func (w *Worker) SetMetrics(m *observe.Metrics) {
	if m != nil {
		w.metrics = m
	}
}

// Start runs the loop until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id, "tick_interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		case <-ticker.C:
			w.Step(w.interval.Seconds())
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// Step advances every session by dt seconds. A failing session is logged
// and does not hold up the others.
func (w *Worker) Step(dt float64) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(w.ctx, stepTimeout)
	defer cancel()
	defer func() { w.metrics.RecordTick(ctx, time.Since(start)) }()

	for _, s := range w.sessions.All() {
		if err := w.stepSession(ctx, s, dt); err != nil {
			w.log.Error("Error stepping session", "error", err, "worker_id", w.id, "session_id", s.ID())
		}
	}
}

func (w *Worker) stepSession(ctx context.Context, s *session.Session, dt float64) error {
	queued, err := w.source.Dequeue(ctx, s.ID())
	if err != nil {
		return fmt.Errorf("failed to dequeue player events: %w", err)
	}
	for _, e := range queued {
		err := s.Apply(e)
		w.metrics.RecordEvent(ctx, string(e.Type), err)
		if err != nil {
			// a bad event is the client's problem; keep the session running
			w.log.Warn("Rejected player event",
				"session_id", s.ID(),
				"event_id", e.EventID,
				"type", e.Type,
				"error", err)
		}
	}

	s.Tick(dt)

	evts, dirty := s.Flush()
	for _, e := range evts {
		w.metrics.RecordPublished(ctx, string(e.Type))
		if e.Type == events.EventTypeElevatorResolved {
			success, _ := e.Data["success"].(bool)
			w.metrics.RecordResolution(ctx, success)
		}
	}
	if len(evts) > 0 {
		if err := w.publisher.Publish(ctx, s.ID(), evts...); err != nil {
			w.log.Error("Failed to publish session events", "error", err, "session_id", s.ID())
			// Don't fail the tick just because event publishing failed
		}
	}
	if dirty {
		err := w.store.SaveSession(ctx, s.Snapshot())
		w.metrics.RecordSnapshot(ctx, err)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		// a delete that landed during the save must not leave the snapshot behind
		if s.Closed() {
			if err := w.store.DeleteSession(ctx, s.ID()); err != nil {
				return fmt.Errorf("failed to drop snapshot of closed session: %w", err)
			}
		}
	}
	return nil
}
