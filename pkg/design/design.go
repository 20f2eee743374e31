package design

import (
	"fmt"

	"github.com/jwebster45206/masquerade/pkg/geom"
	"github.com/jwebster45206/masquerade/pkg/mask"
)

// LiftChoiceCount is the number of masks offered on the elevators.
const LiftChoiceCount = 3

// Direction tells a spawner how to present an elevator.
type Direction string

const (
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
	DirectionUp      Direction = "up"
	DirectionTarget  Direction = "target"
)

// Fit is the classification of a mask against a reference mask.
type Fit string

const (
	FitBest    Fit = "best"
	FitPartial Fit = "partial"
	FitNone    Fit = "none"
)

// NpcRecord is one generated NPC. Position and LookAt are suggested spawn
// values; spawners may ignore them.
type NpcRecord struct {
	ID       int             `json:"id"`
	Mask     mask.Attributes `json:"mask"`
	Position geom.Vec3       `json:"position"`
	LookAt   geom.Vec3       `json:"look_at"`
}

// ElevatorDescriptor is one elevator of a level. Mask is set on the
// elevators that display a lift choice.
type ElevatorDescriptor struct {
	Index     int              `json:"index"`
	Direction Direction        `json:"direction"`
	Mask      *mask.Attributes `json:"mask,omitempty"`
}

// MaskOption is one entry of the fit board.
type MaskOption struct {
	Mask mask.Attributes `json:"mask"`
	Fit  Fit             `json:"fit"`
}

// LevelDesign is a fully generated level. It is built in one go by the
// generator and never mutated after it has been handed out.
type LevelDesign struct {
	LevelIndex          int                  `json:"level_index"`
	AttributeTier       int                  `json:"attribute_tier"`
	NpcCount            int                  `json:"npc_count"`
	Npcs                []NpcRecord          `json:"npcs"`
	PlayerMask          mask.Attributes      `json:"player_mask"`
	LiftChoices         []mask.Attributes    `json:"lift_choices"`
	Elevators           []ElevatorDescriptor `json:"elevators"`
	PlayerElevatorIndex int                  `json:"player_elevator_index"`
	TargetElevatorIndex int                  `json:"target_elevator_index"`
	AvailableMasks      []MaskOption         `json:"available_masks,omitempty"` // board mode only
	Seed                int64                `json:"seed"`
}

// Npc returns the NPC with the given id.
func (d *LevelDesign) Npc(id int) (NpcRecord, error) {
	if d == nil {
		return NpcRecord{}, fmt.Errorf("no level design: %w", ErrConfigurationMissing)
	}
	for _, npc := range d.Npcs {
		if npc.ID == id {
			return npc, nil
		}
	}
	return NpcRecord{}, fmt.Errorf("npc %d: %w", id, ErrInvalidIndex)
}

// Elevator returns the elevator at index.
func (d *LevelDesign) Elevator(index int) (ElevatorDescriptor, error) {
	if d == nil {
		return ElevatorDescriptor{}, fmt.Errorf("no level design: %w", ErrConfigurationMissing)
	}
	if index < 0 || index >= len(d.Elevators) {
		return ElevatorDescriptor{}, fmt.Errorf("elevator %d of %d: %w", index, len(d.Elevators), ErrInvalidIndex)
	}
	return d.Elevators[index], nil
}

// IsTarget reports whether index is the elevator showing the disguise mask.
func (d *LevelDesign) IsTarget(index int) bool {
	return d != nil && index == d.TargetElevatorIndex
}
