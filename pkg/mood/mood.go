package mood

import (
	"fmt"
	"strings"
)

// Mood is the behavioral state of an NPC.
type Mood string

const (
	Idle         Mood = "idle"
	LookAtPlayer Mood = "look_at_player"
	Happy        Mood = "happy"
	Vibe         Mood = "vibe"
	Assault      Mood = "assault"
	Engage       Mood = "engage"
	Nodding      Mood = "nodding"
	HeadShaking  Mood = "head_shaking"
)

// Moods lists every mood.
var Moods = []Mood{Idle, LookAtPlayer, Happy, Vibe, Assault, Engage, Nodding, HeadShaking}

// ParseMood parses a mood name. Matching is case-insensitive.
func ParseMood(s string) (Mood, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", s)
}

// Look is where an NPC turns when it enters a mood.
type Look string

const (
	LookIdle   Look = "idle"   // back to the NPC's initial view direction
	LookPlayer Look = "player" // at the player, if within awareness range
)

// Look returns the look intent of a mood.
func (m Mood) Look() Look {
	switch m {
	case LookAtPlayer, Assault, Engage:
		return LookPlayer
	default:
		return LookIdle
	}
}

// CyclesView reports whether NPCs in this mood glance around on their own.
func (m Mood) CyclesView() bool {
	switch m {
	case Idle, Happy, Vibe, Nodding, HeadShaking:
		return true
	default:
		return false
	}
}
