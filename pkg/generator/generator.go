package generator

import (
	"log/slog"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/rng"
)

// Generator builds level designs. All randomness comes from the injected
// RNG so a seed reproduces a run.
type Generator struct {
	tuning Tuning
	rng    *rng.RNG
	logger *slog.Logger
}

// New creates a generator. A nil logger discards output.
func New(tuning Tuning, r *rng.RNG, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		tuning: tuning,
		rng:    r,
		logger: logger,
	}
}

// Tuning returns the generator's tuning.
func (g *Generator) Tuning() Tuning {
	return g.tuning
}

// GenerateLevel builds a complete design for a level. Levels below 1 are
// treated as level 1. The returned design is fully populated before it is
// returned and must not be modified by callers.
func (g *Generator) GenerateLevel(level int) *design.LevelDesign {
	level = max(1, level)
	tier := g.tuning.AttributeTier(level)
	npcs := g.Roster(level, tier)

	disguise := g.chooseDisguise(npcs, tier)
	choices := g.LiftChoices(disguise, tier)
	elevators, home, target := g.elevators(choices, disguise)

	d := &design.LevelDesign{
		LevelIndex:          level,
		AttributeTier:       tier,
		NpcCount:            len(npcs),
		Npcs:                npcs,
		PlayerMask:          disguise,
		LiftChoices:         choices,
		Elevators:           elevators,
		PlayerElevatorIndex: home,
		TargetElevatorIndex: target,
		Seed:                g.rng.Seed(),
	}

	if g.tuning.BoardMode {
		if reference, ok := MostCommonMask(npcs, tier); ok {
			d.AvailableMasks = g.Board(level, tier, reference)
		}
	}

	g.logger.Debug("Level generated",
		"level", level,
		"tier", tier,
		"npcs", len(npcs),
		"player_mask", disguise.Code(),
		"target_elevator", target,
		"board_size", len(d.AvailableMasks))

	return d
}

// chooseDisguise picks a roster member's mask so the disguise blends in.
// An empty roster gets a fresh mask.
func (g *Generator) chooseDisguise(npcs []design.NpcRecord, tier int) mask.Attributes {
	if len(npcs) == 0 {
		return g.RandomMask(tier)
	}
	return npcs[g.rng.Intn(len(npcs))].Mask.Normalize(tier)
}

// elevators lays the lift choices on the first elevators and points the rest
// relative to the player's home elevator.
func (g *Generator) elevators(choices []mask.Attributes, disguise mask.Attributes) ([]design.ElevatorDescriptor, int, int) {
	count := max(g.tuning.ElevatorCount, len(choices))
	home := g.rng.Intn(count)

	target := 0
	for i, c := range choices {
		if c == disguise {
			target = i
			break
		}
	}

	elevators := make([]design.ElevatorDescriptor, count)
	for i := range elevators {
		e := design.ElevatorDescriptor{Index: i}
		switch {
		case i == target:
			e.Direction = design.DirectionTarget
		case i == home:
			e.Direction = design.DirectionNeutral
		case i < home:
			e.Direction = design.DirectionDown
		default:
			e.Direction = design.DirectionUp
		}
		if i < len(choices) {
			m := choices[i]
			e.Mask = &m
		}
		elevators[i] = e
	}

	return elevators, home, target
}
