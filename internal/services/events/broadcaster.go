package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/progression"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeLevelGenerated   EventType = "level.generated"
	EventTypeNpcReaction      EventType = "npc.reaction"
	EventTypeElevatorResolved EventType = "elevator.resolved"
	EventTypeElevatorDoors    EventType = "elevator.doors"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// LevelGenerated describes a freshly published level. The full design is
// served by the sessions API; subscribers get the summary.
func LevelGenerated(sessionID uuid.UUID, d *design.LevelDesign) Event {
	return Event{
		Type:      EventTypeLevelGenerated,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"level":           d.LevelIndex,
			"tier":            d.AttributeTier,
			"npc_count":       d.NpcCount,
			"player_mask":     d.PlayerMask.Code(),
			"player_elevator": d.PlayerElevatorIndex,
		},
	}
}

func NpcReaction(sessionID uuid.UUID, r mood.Reaction) Event {
	return Event{
		Type:      EventTypeNpcReaction,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"npc_id": r.NpcID,
			"from":   r.From,
			"to":     r.To,
			"look":   r.Look,
		},
	}
}

func ElevatorResolved(sessionID uuid.UUID, r progression.Resolution) Event {
	return Event{
		Type:      EventTypeElevatorResolved,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"elevator":   r.Elevator,
			"success":    r.Success,
			"from_level": r.FromLevel,
			"next_level": r.NextLevel,
		},
	}
}

func ElevatorDoors(sessionID uuid.UUID, elevator int, open bool) Event {
	return Event{
		Type:      EventTypeElevatorDoors,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"elevator": elevator,
			"open":     open,
		},
	}
}

// Channel returns the pub/sub channel of a session
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish sends events to their session channels in order. It stops at the
// first failure.
func (b *Broadcaster) Publish(ctx context.Context, sessionID uuid.UUID, evts ...Event) error {
	for _, event := range evts {
		if err := b.publishToSession(ctx, sessionID, event); err != nil {
			return err
		}
	}
	return nil
}

// publishToSession publishes an event to the session-specific channel
func (b *Broadcaster) publishToSession(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
