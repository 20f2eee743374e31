package generator

import (
	"testing"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(seed int64) *Generator {
	return New(DefaultTuning(), rng.New(seed), nil)
}

func TestGenerateLevel_Invariants(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		g := newTestGenerator(seed)
		for level := 1; level <= 8; level++ {
			d := g.GenerateLevel(level)
			require.NotNil(t, d)

			assert.Equal(t, level, d.LevelIndex)
			assert.Equal(t, g.Tuning().AttributeTier(level), d.AttributeTier)
			assert.Len(t, d.Npcs, d.NpcCount)
			assert.Equal(t, g.Tuning().NpcCount(level), d.NpcCount)

			require.Len(t, d.LiftChoices, design.LiftChoiceCount, "seed %d level %d", seed, level)
			distinct := map[mask.Attributes]bool{}
			matches := 0
			for _, c := range d.LiftChoices {
				distinct[c.Normalize(d.AttributeTier)] = true
				if c == d.PlayerMask.Normalize(d.AttributeTier) {
					matches++
				}
			}
			assert.Len(t, distinct, design.LiftChoiceCount, "lift choices must be distinct (seed %d level %d)", seed, level)
			assert.Equal(t, 1, matches, "exactly one lift choice must match the disguise (seed %d level %d)", seed, level)

			targets := 0
			for i, e := range d.Elevators {
				assert.Equal(t, i, e.Index)
				if e.Direction == design.DirectionTarget {
					targets++
					assert.Equal(t, d.TargetElevatorIndex, i)
				}
			}
			assert.Equal(t, 1, targets, "exactly one target elevator")

			target, err := d.Elevator(d.TargetElevatorIndex)
			require.NoError(t, err)
			require.NotNil(t, target.Mask)
			assert.Equal(t, d.PlayerMask, *target.Mask)
			assert.GreaterOrEqual(t, d.PlayerElevatorIndex, 0)
			assert.Less(t, d.PlayerElevatorIndex, len(d.Elevators))
		}
	}
}

func TestGenerateLevel_EarlyTierHasNoFace(t *testing.T) {
	g := newTestGenerator(3)
	for i := 0; i < 20; i++ {
		d := g.GenerateLevel(1 + i%2)
		require.Equal(t, 1, d.AttributeTier)

		for _, npc := range d.Npcs {
			assert.Equal(t, mask.EyeNone, npc.Mask.Eye)
			assert.Equal(t, mask.MouthNone, npc.Mask.Mouth)
		}
		for _, c := range d.LiftChoices {
			assert.Equal(t, mask.EyeNone, c.Eye)
			assert.Equal(t, mask.MouthNone, c.Mouth)
		}
		assert.Equal(t, mask.EyeNone, d.PlayerMask.Eye)
	}
}

func TestGenerateLevel_Scenarios(t *testing.T) {
	g := newTestGenerator(8)

	first := g.GenerateLevel(1)
	assert.Equal(t, 1, first.AttributeTier)
	assert.Equal(t, 3, first.NpcCount)

	fifth := g.GenerateLevel(5)
	assert.Equal(t, mask.MaxTier, fifth.AttributeTier)
	assert.Equal(t, min(3+4*1, 12), fifth.NpcCount)
}

func TestGenerateLevel_ClampsLevel(t *testing.T) {
	d := newTestGenerator(1).GenerateLevel(-3)
	assert.Equal(t, 1, d.LevelIndex)
}

func TestGenerateLevel_SameSeedSameDesign(t *testing.T) {
	a := newTestGenerator(1234)
	b := newTestGenerator(1234)

	for level := 1; level <= 6; level++ {
		assert.Equal(t, a.GenerateLevel(level), b.GenerateLevel(level), "level %d", level)
	}
}

func TestGenerateLevel_BoardMode(t *testing.T) {
	tuning := DefaultTuning()
	tuning.BoardMode = true
	g := New(tuning, rng.New(21), nil)

	d := g.GenerateLevel(6)
	require.NotEmpty(t, d.AvailableMasks)
	assert.Equal(t, design.FitBest, d.AvailableMasks[0].Fit)

	reference, ok := MostCommonMask(d.Npcs, d.AttributeTier)
	require.True(t, ok)
	assert.Equal(t, reference, d.AvailableMasks[0].Mask)

	withoutBoard := newTestGenerator(21).GenerateLevel(6)
	assert.Empty(t, withoutBoard.AvailableMasks)
}
