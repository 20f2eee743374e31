package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jwebster45206/masquerade/internal/config"
	"github.com/jwebster45206/masquerade/internal/observe"
	"github.com/jwebster45206/masquerade/internal/services/events"
	"github.com/jwebster45206/masquerade/internal/session"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/state"
	"github.com/jwebster45206/masquerade/pkg/storage"
)

type fakeSource struct {
	mu     sync.Mutex
	queued map[uuid.UUID][]*queue.PlayerEvent
	err    error
}

func (f *fakeSource) push(e *queue.PlayerEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queued == nil {
		f.queued = make(map[uuid.UUID][]*queue.PlayerEvent)
	}
	f.queued[e.SessionID] = append(f.queued[e.SessionID], e)
}

func (f *fakeSource) Dequeue(ctx context.Context, id uuid.UUID) ([]*queue.PlayerEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.queued[id]
	delete(f.queued, id)
	return out, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]events.Event
}

func (f *fakePublisher) Publish(ctx context.Context, id uuid.UUID, evts ...events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[uuid.UUID][]events.Event)
	}
	f.sent[id] = append(f.sent[id], evts...)
	return nil
}

func (f *fakePublisher) types(id uuid.UUID) []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.EventType
	for _, e := range f.sent[id] {
		out = append(out, e.Type)
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setup(t *testing.T) (*Worker, *session.Manager, *fakeSource, *fakePublisher, *storage.MockStorage) {
	t.Helper()
	mgr := session.NewManager(config.DefaultGame(), 99, testLogger())
	src := &fakeSource{}
	pub := &fakePublisher{}
	store := storage.NewMockStorage()
	w := New(mgr, src, pub, store, 20*time.Millisecond, testLogger(), "test-worker")
	return w, mgr, src, pub, store
}

func TestStep_SavesAndPublishesNewSession(t *testing.T) {
	w, mgr, _, pub, store := setup(t)
	s, err := mgr.Create(0, 0)
	require.NoError(t, err)

	w.Step(0.02)

	snap, err := store.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, []events.EventType{events.EventTypeLevelGenerated}, pub.types(s.ID()))
}

func TestStep_AppliesQueuedEvents(t *testing.T) {
	w, mgr, src, pub, store := setup(t)
	s, err := mgr.Create(0, 0)
	require.NoError(t, err)
	w.Step(0.02)

	target := s.Design().TargetElevatorIndex
	src.push(&queue.PlayerEvent{EventID: "a", Type: queue.EventElevatorDoorsClosed, SessionID: s.ID(), Elevator: &target})
	w.Step(0.02)

	snap, err := store.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Wins)

	w.Step(1.5)
	snap, err = store.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Level)
	assert.Equal(t, 1, snap.Wins)
	assert.Contains(t, pub.types(s.ID()), events.EventTypeElevatorResolved)
}

func TestStep_BadEventDoesNotStopSession(t *testing.T) {
	w, mgr, src, _, store := setup(t)
	s, err := mgr.Create(0, 0)
	require.NoError(t, err)

	bad := 99
	target := s.Design().TargetElevatorIndex
	src.push(&queue.PlayerEvent{EventID: "bad", Type: queue.EventElevatorDoorsClosed, SessionID: s.ID(), Elevator: &bad})
	src.push(&queue.PlayerEvent{EventID: "good", Type: queue.EventElevatorDoorsClosed, SessionID: s.ID(), Elevator: &target})
	w.Step(0.02)
	w.Step(1.5)

	snap, err := store.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Level)
}

func TestStep_SourceErrorIsolatedPerSession(t *testing.T) {
	w, mgr, src, _, store := setup(t)
	s, err := mgr.Create(0, 0)
	require.NoError(t, err)
	src.err = errors.New("redis down")

	w.Step(0.02)

	snap, err := store.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

// removingSource deletes the session the way the HTTP handler does while
// the worker is stepping it, then hands back one more event.
type removingSource struct {
	mgr   *session.Manager
	store *storage.MockStorage
}

func (r *removingSource) Dequeue(ctx context.Context, id uuid.UUID) ([]*queue.PlayerEvent, error) {
	r.mgr.Remove(id)
	if err := r.store.DeleteSession(ctx, id); err != nil {
		return nil, err
	}
	return []*queue.PlayerEvent{{EventID: "late", Type: queue.EventPlayerEnteredRoom, SessionID: id}}, nil
}

func TestStep_DeletedSessionNotSavedAgain(t *testing.T) {
	w, mgr, _, pub, store := setup(t)
	s, err := mgr.Create(0, 0)
	require.NoError(t, err)
	w.source = &removingSource{mgr: mgr, store: store}

	w.Step(0.02)

	assert.Equal(t, 0, mgr.Len())
	snap, err := store.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Empty(t, pub.types(s.ID()))
}

// removeOnSave lets a whole delete request finish after the worker flushed
// the session but before its snapshot write lands.
type removeOnSave struct {
	*storage.MockStorage
	mgr *session.Manager
}

func (r *removeOnSave) SaveSession(ctx context.Context, ss *state.SessionState) error {
	r.mgr.Remove(ss.ID)
	if err := r.MockStorage.DeleteSession(ctx, ss.ID); err != nil {
		return err
	}
	return r.MockStorage.SaveSession(ctx, ss)
}

func TestStep_DeleteDuringSaveLeavesNoSnapshot(t *testing.T) {
	mgr := session.NewManager(config.DefaultGame(), 99, testLogger())
	inner := storage.NewMockStorage()
	store := &removeOnSave{MockStorage: inner, mgr: mgr}
	w := New(mgr, &fakeSource{}, &fakePublisher{}, store, 20*time.Millisecond, testLogger(), "test-worker")

	s, err := mgr.Create(0, 0)
	require.NoError(t, err)
	w.Step(0.02)

	snap, err := inner.LoadSession(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStartStop(t *testing.T) {
	w, mgr, _, _, store := setup(t)
	s, err := mgr.Create(0, 0)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	require.Eventually(t, func() bool {
		snap, _ := store.LoadSession(context.Background(), s.ID())
		return snap != nil
	}, time.Second, 10*time.Millisecond)

	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStep_RecordsMetrics(t *testing.T) {
	w, mgr, src, _, _ := setup(t)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	m, err := observe.NewMetrics(mp)
	require.NoError(t, err)
	w.SetMetrics(m)

	s, err := mgr.Create(0, 0)
	require.NoError(t, err)
	w.Step(0.02)
	target := s.Design().TargetElevatorIndex
	src.push(&queue.PlayerEvent{EventID: "a", Type: queue.EventElevatorDoorsClosed, SessionID: s.ID(), Elevator: &target})
	w.Step(0.02)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			names[met.Name] = true
		}
	}
	assert.True(t, names["masquerade.loop.tick.duration"])
	assert.True(t, names["masquerade.events.applied"])
	assert.True(t, names["masquerade.elevator.resolutions"])
	assert.True(t, names["masquerade.snapshots.saved"])
}
