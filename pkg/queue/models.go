package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/pkg/geom"
	"github.com/jwebster45206/masquerade/pkg/mask"
)

// EventType identifies what the player did
type EventType string

const (
	EventPlayerEnteredElevator EventType = "player_entered_elevator"
	EventPlayerExitedElevator  EventType = "player_exited_elevator"
	EventElevatorDoorsClosed   EventType = "elevator_doors_closed"
	EventMaskSelected          EventType = "mask_selected"
	EventPlayerEnteredRoom     EventType = "player_entered_room"
	EventNpcInteracted         EventType = "npc_interacted"
	EventPlayerMoved           EventType = "player_moved"
)

// PlayerEvent is one player action waiting to be applied to a session.
// Which optional field is set depends on Type.
type PlayerEvent struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	SessionID uuid.UUID `json:"session_id"`

	Elevator *int             `json:"elevator,omitempty"`
	NpcID    *int             `json:"npc_id,omitempty"`
	Mask     *mask.Attributes `json:"mask,omitempty"`
	Position *geom.Vec3       `json:"position,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Validate checks that the event carries the field its type needs.
func (e *PlayerEvent) Validate() error {
	switch e.Type {
	case EventPlayerEnteredElevator, EventPlayerExitedElevator, EventElevatorDoorsClosed:
		if e.Elevator == nil {
			return fmt.Errorf("%s requires elevator", e.Type)
		}
	case EventMaskSelected:
		if e.Mask == nil {
			return fmt.Errorf("%s requires mask", e.Type)
		}
		return e.Mask.Validate()
	case EventNpcInteracted:
		if e.NpcID == nil {
			return fmt.Errorf("%s requires npc_id", e.Type)
		}
	case EventPlayerMoved:
		if e.Position == nil {
			return fmt.Errorf("%s requires position", e.Type)
		}
	case EventPlayerEnteredRoom:
	case "":
		return errors.New("event type is required")
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

// ToJSON converts the event to JSON bytes for Redis
func (e *PlayerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from JSON bytes
func FromJSON(data []byte) (*PlayerEvent, error) {
	var e PlayerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
