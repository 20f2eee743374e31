package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/masquerade/pkg/geom"
	"github.com/jwebster45206/masquerade/pkg/mask"
)

func intPtr(n int) *int { return &n }

func TestPlayerEvent_Validate(t *testing.T) {
	good := mask.New(mask.ShapeRound, mask.EyeSmile, mask.MouthHappy)
	bad := mask.Attributes{Shape: "star"}

	tests := []struct {
		name    string
		event   PlayerEvent
		wantErr bool
	}{
		{"enter elevator", PlayerEvent{Type: EventPlayerEnteredElevator, Elevator: intPtr(0)}, false},
		{"enter elevator without index", PlayerEvent{Type: EventPlayerEnteredElevator}, true},
		{"doors closed", PlayerEvent{Type: EventElevatorDoorsClosed, Elevator: intPtr(2)}, false},
		{"mask selected", PlayerEvent{Type: EventMaskSelected, Mask: &good}, false},
		{"mask selected with bad mask", PlayerEvent{Type: EventMaskSelected, Mask: &bad}, true},
		{"mask selected without mask", PlayerEvent{Type: EventMaskSelected}, true},
		{"room entered", PlayerEvent{Type: EventPlayerEnteredRoom}, false},
		{"npc interacted", PlayerEvent{Type: EventNpcInteracted, NpcID: intPtr(4)}, false},
		{"npc interacted without id", PlayerEvent{Type: EventNpcInteracted}, true},
		{"moved", PlayerEvent{Type: EventPlayerMoved, Position: &geom.Vec3{X: 1}}, false},
		{"moved without position", PlayerEvent{Type: EventPlayerMoved}, true},
		{"missing type", PlayerEvent{}, true},
		{"unknown type", PlayerEvent{Type: "dance"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlayerEvent_JSONKeepsZeroIndex(t *testing.T) {
	e := &PlayerEvent{
		EventID:    "evt-1",
		Type:       EventPlayerEnteredElevator,
		SessionID:  uuid.New(),
		Elevator:   intPtr(0),
		EnqueuedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := e.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"elevator":0`)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, e.SessionID, back.SessionID)
	require.NotNil(t, back.Elevator)
	assert.Equal(t, 0, *back.Elevator)
	assert.Nil(t, back.Mask)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte("{not json"))
	assert.Error(t, err)
}
