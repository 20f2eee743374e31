package generator

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
)

// TierScheme selects how the attribute tier grows with the level.
type TierScheme string

const (
	// TierSchemeTwo: levels 1-2 use shape only, later levels add the eyes.
	TierSchemeTwo TierScheme = "two-tier"
	// TierSchemeThree: levels 1-2 shape only, 3-4 add the eyes, 5+ add the mouth.
	TierSchemeThree TierScheme = "three-tier"
)

// Tuning holds every knob of level generation. It is a plain value: copy it,
// change it, pass it to New. Nothing in the engine mutates it.
type Tuning struct {
	MinNpcs      int `yaml:"min_npcs" json:"min_npcs"`
	MaxNpcs      int `yaml:"max_npcs" json:"max_npcs"`
	NpcsPerLevel int `yaml:"npcs_per_level" json:"npcs_per_level"`
	BaseLevel    int `yaml:"base_level" json:"base_level"`

	MinMasks      int `yaml:"min_masks" json:"min_masks"`
	MaxMasks      int `yaml:"max_masks" json:"max_masks"`
	MasksPerLevel int `yaml:"masks_per_level" json:"masks_per_level"`

	ElevatorCount int        `yaml:"elevator_count" json:"elevator_count"`
	TierScheme    TierScheme `yaml:"tier_scheme" json:"tier_scheme"`
	BoardMode     bool       `yaml:"board_mode" json:"board_mode"` // fill LevelDesign.AvailableMasks

	Placement Placement `yaml:"placement" json:"placement"`

	SampleCap     int `yaml:"sample_cap" json:"sample_cap"`         // rejection sampling cap for a single value
	DecoyAttempts int `yaml:"decoy_attempts" json:"decoy_attempts"` // retries per lift choice decoy
	BoardAttempts int `yaml:"board_attempts" json:"board_attempts"` // total tries when filling the board
}

// Placement controls where NPCs are suggested to spawn. NPCs stand in small
// groups facing the group's center inside a square level area.
type Placement struct {
	LevelSize         float64 `yaml:"level_size" json:"level_size"`
	MinDistance       float64 `yaml:"min_distance" json:"min_distance"`
	MinGroupSize      int     `yaml:"min_group_size" json:"min_group_size"`
	MaxGroupSize      int     `yaml:"max_group_size" json:"max_group_size"`
	GroupRadiusMin    float64 `yaml:"group_radius_min" json:"group_radius_min"`
	GroupRadiusMax    float64 `yaml:"group_radius_max" json:"group_radius_max"`
	AttemptsPerGroup  int     `yaml:"attempts_per_group" json:"attempts_per_group"`
	AttemptsPerSingle int     `yaml:"attempts_per_single" json:"attempts_per_single"`
}

// DefaultTuning returns the values the game shipped with.
func DefaultTuning() Tuning {
	return Tuning{
		MinNpcs:       3,
		MaxNpcs:       12,
		NpcsPerLevel:  1,
		BaseLevel:     1,
		MinMasks:      3,
		MaxMasks:      8,
		MasksPerLevel: 1,
		ElevatorCount: design.LiftChoiceCount,
		TierScheme:    TierSchemeThree,
		Placement: Placement{
			LevelSize:         10,
			MinDistance:       1.5,
			MinGroupSize:      3,
			MaxGroupSize:      5,
			GroupRadiusMin:    0.6,
			GroupRadiusMax:    1.4,
			AttemptsPerGroup:  15,
			AttemptsPerSingle: 25,
		},
		SampleCap:     32,
		DecoyAttempts: 16,
		BoardAttempts: 200,
	}
}

// Validate returns a joined error listing every invalid knob.
func (t Tuning) Validate() error {
	var errs []error

	if t.MinNpcs < 0 {
		errs = append(errs, fmt.Errorf("min_npcs must not be negative, got %d", t.MinNpcs))
	}
	if t.MaxNpcs < t.MinNpcs {
		errs = append(errs, fmt.Errorf("max_npcs (%d) must be >= min_npcs (%d)", t.MaxNpcs, t.MinNpcs))
	}
	if t.NpcsPerLevel < 0 {
		errs = append(errs, fmt.Errorf("npcs_per_level must not be negative, got %d", t.NpcsPerLevel))
	}
	if t.BaseLevel < 1 {
		errs = append(errs, fmt.Errorf("base_level must be >= 1, got %d", t.BaseLevel))
	}
	if t.MinMasks < 1 {
		errs = append(errs, fmt.Errorf("min_masks must be >= 1, got %d", t.MinMasks))
	}
	if t.MaxMasks < t.MinMasks {
		errs = append(errs, fmt.Errorf("max_masks (%d) must be >= min_masks (%d)", t.MaxMasks, t.MinMasks))
	}
	if t.MasksPerLevel < 0 {
		errs = append(errs, fmt.Errorf("masks_per_level must not be negative, got %d", t.MasksPerLevel))
	}
	if t.ElevatorCount < design.LiftChoiceCount {
		errs = append(errs, fmt.Errorf("elevator_count must be >= %d, got %d", design.LiftChoiceCount, t.ElevatorCount))
	}
	if t.TierScheme != TierSchemeTwo && t.TierScheme != TierSchemeThree {
		errs = append(errs, fmt.Errorf("tier_scheme %q is invalid; valid values: %s, %s", t.TierScheme, TierSchemeTwo, TierSchemeThree))
	}
	if t.Placement.LevelSize <= 0 {
		errs = append(errs, fmt.Errorf("placement.level_size must be positive, got %g", t.Placement.LevelSize))
	}
	if t.Placement.MinGroupSize < 1 || t.Placement.MaxGroupSize < t.Placement.MinGroupSize {
		errs = append(errs, fmt.Errorf("placement group sizes must satisfy 1 <= min (%d) <= max (%d)", t.Placement.MinGroupSize, t.Placement.MaxGroupSize))
	}
	if t.Placement.GroupRadiusMin < 0 || t.Placement.GroupRadiusMax < t.Placement.GroupRadiusMin {
		errs = append(errs, fmt.Errorf("placement group radii must satisfy 0 <= min (%g) <= max (%g)", t.Placement.GroupRadiusMin, t.Placement.GroupRadiusMax))
	}
	if t.SampleCap < 1 {
		errs = append(errs, fmt.Errorf("sample_cap must be >= 1, got %d", t.SampleCap))
	}
	if t.DecoyAttempts < 1 {
		errs = append(errs, fmt.Errorf("decoy_attempts must be >= 1, got %d", t.DecoyAttempts))
	}
	if t.BoardAttempts < 1 {
		errs = append(errs, fmt.Errorf("board_attempts must be >= 1, got %d", t.BoardAttempts))
	}

	return errors.Join(errs...)
}

// AttributeTier returns the number of active mask categories at a level.
func (t Tuning) AttributeTier(level int) int {
	if level <= 2 {
		return 1
	}
	if t.TierScheme == TierSchemeTwo {
		return 2
	}
	if level <= 4 {
		return 2
	}
	return mask.MaxTier
}

// NpcCount returns the roster size of a level, clamped to [MinNpcs, MaxNpcs].
func (t Tuning) NpcCount(level int) int {
	steps := max(0, level-t.BaseLevel)
	return clamp(t.MinNpcs+steps*t.NpcsPerLevel, t.MinNpcs, t.MaxNpcs)
}

// MaskCount returns the size of the fit board at a level. It never exceeds
// the number of distinct masks the tier allows.
func (t Tuning) MaskCount(level, tier int) int {
	steps := max(0, level-t.BaseLevel)
	count := clamp(t.MinMasks+steps*t.MasksPerLevel, t.MinMasks, t.MaxMasks)
	return min(count, mask.MaxDistinct(tier))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
