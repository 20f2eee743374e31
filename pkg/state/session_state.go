package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/mood"
)

// SessionState is the stored view of one running game. It is rebuilt after
// every tick that changed something and read by the API.
type SessionState struct {
	ID          uuid.UUID           `json:"id"`
	Seed        int64               `json:"seed"`
	RNGPosition int64               `json:"rng_position"`
	Level       int                 `json:"level"`
	BestLevel   int                 `json:"best_level"`
	Wins        int                 `json:"wins"`
	Losses      int                 `json:"losses"`
	Clock       float64             `json:"clock"` // simulation seconds
	PlayerMask  mask.Attributes     `json:"player_mask"`
	Occupied    []int               `json:"occupied_elevators,omitempty"`
	Moods       map[int]mood.Mood   `json:"moods"`
	Design      *design.LevelDesign `json:"design"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func NewSessionState(seed int64) *SessionState {
	now := time.Now()
	return &SessionState{
		ID:        uuid.New(),
		Seed:      seed,
		Moods:     make(map[int]mood.Mood),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MoodCount returns how many NPCs are in m.
func (s *SessionState) MoodCount(m mood.Mood) int {
	n := 0
	for _, v := range s.Moods {
		if v == m {
			n++
		}
	}
	return n
}
