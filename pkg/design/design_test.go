package design

import (
	"errors"
	"testing"

	"github.com/jwebster45206/masquerade/pkg/mask"
)

func testDesign() *LevelDesign {
	choice := mask.New(mask.ShapeRound, mask.EyeNone, mask.MouthNone)
	return &LevelDesign{
		LevelIndex:    1,
		AttributeTier: 1,
		NpcCount:      2,
		Npcs: []NpcRecord{
			{ID: 0, Mask: choice},
			{ID: 1, Mask: mask.New(mask.ShapeSquare, mask.EyeNone, mask.MouthNone)},
		},
		PlayerMask:  choice,
		LiftChoices: []mask.Attributes{choice},
		Elevators: []ElevatorDescriptor{
			{Index: 0, Direction: DirectionDown},
			{Index: 1, Direction: DirectionTarget, Mask: &choice},
		},
		TargetElevatorIndex: 1,
	}
}

func TestLevelDesign_Npc(t *testing.T) {
	d := testDesign()

	npc, err := d.Npc(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if npc.Mask.Shape != mask.ShapeSquare {
		t.Errorf("expected square npc, got %v", npc.Mask)
	}

	if _, err := d.Npc(5); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}

	var missing *LevelDesign
	if _, err := missing.Npc(0); !errors.Is(err, ErrConfigurationMissing) {
		t.Errorf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestLevelDesign_Elevator(t *testing.T) {
	d := testDesign()

	tests := []struct {
		name    string
		index   int
		wantErr bool
	}{
		{"first", 0, false},
		{"last", 1, false},
		{"negative", -1, true},
		{"past end", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Elevator(tt.index)
			if tt.wantErr && !errors.Is(err, ErrInvalidIndex) {
				t.Errorf("expected ErrInvalidIndex, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if !d.IsTarget(1) || d.IsTarget(0) {
		t.Error("IsTarget disagrees with TargetElevatorIndex")
	}
}
