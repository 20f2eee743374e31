package mood

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/rng"
)

// Crowd owns the mood machines of one level design.
type Crowd struct {
	machines []*Machine
	byID     map[int]*Machine
	logger   *slog.Logger
}

// NewCrowd creates one Idle machine per NPC of the design.
func NewCrowd(npcs []design.NpcRecord, settings Settings, r *rng.RNG, notifier Notifier, logger *slog.Logger) *Crowd {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Crowd{
		machines: make([]*Machine, 0, len(npcs)),
		byID:     make(map[int]*Machine, len(npcs)),
		logger:   logger,
	}
	for _, npc := range npcs {
		m := NewMachine(npc, settings, r, notifier, logger)
		c.machines = append(c.machines, m)
		c.byID[npc.ID] = m
	}
	return c
}

// Len returns the number of NPCs.
func (c *Crowd) Len() int {
	return len(c.machines)
}

// Machines returns the machines in roster order.
func (c *Crowd) Machines() []*Machine {
	return c.machines
}

// Machine returns the machine of an NPC.
func (c *Crowd) Machine(id int) (*Machine, error) {
	m, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("npc %d: %w", id, design.ErrInvalidIndex)
	}
	return m, nil
}

// Broadcast sets mood on every NPC and returns how many changed.
func (c *Crowd) Broadcast(mood Mood) int {
	changed := 0
	for _, m := range c.machines {
		if m.SetMood(mood) {
			changed++
		}
	}
	c.logger.Debug("Mood broadcast", "mood", mood, "changed", changed, "npcs", len(c.machines))
	return changed
}

// Evaluate runs the mask evaluation of one NPC against the player's disguise.
func (c *Crowd) Evaluate(id int, player mask.Attributes) (Mood, error) {
	m, err := c.Machine(id)
	if err != nil {
		return "", err
	}
	return m.EvaluateMask(player), nil
}

// EvaluateAll runs the mask evaluation of every NPC.
func (c *Crowd) EvaluateAll(player mask.Attributes) {
	for _, m := range c.machines {
		m.EvaluateMask(player)
	}
}

// Tick advances every machine by dt seconds.
func (c *Crowd) Tick(dt float64, player Player) {
	for _, m := range c.machines {
		m.Tick(dt, player)
	}
}

// Moods returns the current mood of every NPC keyed by id.
func (c *Crowd) Moods() map[int]Mood {
	moods := make(map[int]Mood, len(c.machines))
	for _, m := range c.machines {
		moods[m.id] = m.mood
	}
	return moods
}
