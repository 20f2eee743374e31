package mood

import (
	"testing"

	"github.com/jwebster45206/masquerade/pkg/mask"
)

func TestEvaluate(t *testing.T) {
	player := mask.New(mask.ShapeRound, mask.EyeSmile, mask.MouthHappy)
	faceless := mask.New(mask.ShapeRound, mask.EyeNone, mask.MouthNone)

	tests := []struct {
		name     string
		player   mask.Attributes
		npc      mask.Attributes
		expected Mood
	}{
		{"three matches", player, mask.New(mask.ShapeRound, mask.EyeSmile, mask.MouthHappy), Nodding},
		{"two matches", player, mask.New(mask.ShapeSquare, mask.EyeSmile, mask.MouthHappy), Nodding},
		{"one match", player, mask.New(mask.ShapeSquare, mask.EyeNeutral, mask.MouthHappy), Idle},
		{"no match", player, mask.New(mask.ShapeSquare, mask.EyeNeutral, mask.MouthSad), HeadShaking},
		{"faceless shape match", faceless, mask.New(mask.ShapeRound, mask.EyeFrown, mask.MouthSad), Nodding},
		{"faceless shape mismatch", faceless, mask.New(mask.ShapeTriangle, mask.EyeNone, mask.MouthNone), HeadShaking},
		{"half face counts as faceless", mask.New(mask.ShapeRound, mask.EyeSmile, mask.MouthNone), mask.New(mask.ShapeSquare, mask.EyeSmile, mask.MouthNone), HeadShaking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.player, tt.npc); got != tt.expected {
				t.Errorf("Evaluate(%v, %v) = %s, want %s", tt.player, tt.npc, got, tt.expected)
			}
		})
	}
}

func TestParseMood(t *testing.T) {
	for _, m := range Moods {
		got, err := ParseMood(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMood(%q) = %q, %v", m, got, err)
		}
	}
	if got, err := ParseMood(" Head_Shaking "); err != nil || got != HeadShaking {
		t.Errorf("expected case-insensitive parse, got %q, %v", got, err)
	}
	if _, err := ParseMood("sulking"); err == nil {
		t.Error("expected error for unknown mood")
	}
}

func TestMood_LookAndViewCycle(t *testing.T) {
	for _, m := range []Mood{LookAtPlayer, Assault, Engage} {
		if m.Look() != LookPlayer {
			t.Errorf("%s should look at the player", m)
		}
		if m.CyclesView() {
			t.Errorf("%s should not cycle its view", m)
		}
	}
	for _, m := range []Mood{Idle, Happy, Vibe, Nodding, HeadShaking} {
		if m.Look() != LookIdle {
			t.Errorf("%s should return to its idle look", m)
		}
		if !m.CyclesView() {
			t.Errorf("%s should cycle its view", m)
		}
	}
}
