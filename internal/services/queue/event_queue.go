package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/masquerade/pkg/queue"
)

// EventQueue holds the player events of each session until the game loop
// applies them.
type EventQueue struct {
	client *Client
	logger *slog.Logger
}

// NewEventQueue creates a new player event queue
func NewEventQueue(client *Client, logger *slog.Logger) *EventQueue {
	return &EventQueue{
		client: client,
		logger: logger,
	}
}

func queueKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-queue:%s", sessionID.String())
}

// Enqueue adds an event to the end of its session's queue
func (q *EventQueue) Enqueue(ctx context.Context, event *queue.PlayerEvent) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize player event: %w", err)
	}

	key := queueKey(event.SessionID)
	if err := q.client.rdb.RPush(ctx, key, data).Err(); err != nil {
		q.logger.Error("Failed to enqueue player event",
			"error", err,
			"session_id", event.SessionID,
			"key", key)
		return fmt.Errorf("failed to enqueue player event: %w", err)
	}

	q.logger.Debug("Enqueued player event",
		"session_id", event.SessionID,
		"event_id", event.EventID,
		"type", event.Type)
	return nil
}

// Dequeue removes and returns all queued events of a session in arrival
// order. Read and delete run in one transaction so no event is dropped.
// Entries that fail to parse are logged and skipped.
func (q *EventQueue) Dequeue(ctx context.Context, sessionID uuid.UUID) ([]*queue.PlayerEvent, error) {
	key := queueKey(sessionID)

	var lrange *redis.StringSliceCmd
	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		q.logger.Error("Failed to dequeue player events",
			"error", err,
			"session_id", sessionID,
			"key", key)
		return nil, fmt.Errorf("failed to dequeue player events: %w", err)
	}

	raw := lrange.Val()
	events := make([]*queue.PlayerEvent, 0, len(raw))
	for _, item := range raw {
		event, err := queue.FromJSON([]byte(item))
		if err != nil {
			q.logger.Warn("Dropping unreadable player event", "session_id", sessionID, "error", err)
			continue
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		q.logger.Debug("Dequeued player events",
			"session_id", sessionID,
			"count", len(events))
	}
	return events, nil
}

// Clear removes all queued events of a session
func (q *EventQueue) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := q.client.rdb.Del(ctx, queueKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear player event queue: %w", err)
	}
	return nil
}

// Depth returns the number of events queued for a session
func (q *EventQueue) Depth(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := q.client.rdb.LLen(ctx, queueKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
