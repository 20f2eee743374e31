package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/progression"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestBroadcaster_PublishInOrder(t *testing.T) {
	rdb := setupTestRedis(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	b := NewBroadcaster(rdb, logger)

	ctx := context.Background()
	sessionID := uuid.New()

	sub := rdb.Subscribe(ctx, Channel(sessionID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = b.Publish(ctx, sessionID,
		NpcReaction(sessionID, mood.Reaction{NpcID: 3, From: mood.Idle, To: mood.Happy, Look: mood.LookPlayer}),
		ElevatorResolved(sessionID, progression.Resolution{Elevator: 1, Success: true, FromLevel: 2, NextLevel: 3}),
		ElevatorDoors(sessionID, 1, true),
	)
	require.NoError(t, err)

	want := []EventType{EventTypeNpcReaction, EventTypeElevatorResolved, EventTypeElevatorDoors}
	for _, typ := range want {
		msg, err := sub.ReceiveMessage(withTimeout(t))
		require.NoError(t, err)

		var event Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, typ, event.Type)
		assert.Equal(t, sessionID.String(), event.SessionID)
	}
}

func TestEventConstructors(t *testing.T) {
	id := uuid.New()

	reaction := NpcReaction(id, mood.Reaction{NpcID: 7, From: mood.Idle, To: mood.Assault})
	assert.Equal(t, 7, reaction.Data["npc_id"])
	assert.Equal(t, mood.Assault, reaction.Data["to"])

	doors := ElevatorDoors(id, 2, false)
	assert.Equal(t, false, doors.Data["open"])
	assert.Equal(t, "session-events:"+id.String(), Channel(id))
}

func withTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
