package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTuning_NpcCount(t *testing.T) {
	tuning := DefaultTuning()

	assert.Equal(t, 3, tuning.NpcCount(1), "level 1 should use MinNpcs")
	assert.Equal(t, 7, tuning.NpcCount(5), "level 5 should add four NPCs")
	assert.Equal(t, 12, tuning.NpcCount(50), "count should clamp to MaxNpcs")

	prev := tuning.NpcCount(1)
	for level := 1; level <= 40; level++ {
		count := tuning.NpcCount(level)
		assert.GreaterOrEqual(t, count, prev, "count must not decrease at level %d", level)
		assert.GreaterOrEqual(t, count, tuning.MinNpcs)
		assert.LessOrEqual(t, count, tuning.MaxNpcs)
		prev = count
	}
}

func TestTuning_AttributeTier(t *testing.T) {
	tests := []struct {
		name     string
		scheme   TierScheme
		level    int
		expected int
	}{
		{"three-tier level 1", TierSchemeThree, 1, 1},
		{"three-tier level 2", TierSchemeThree, 2, 1},
		{"three-tier level 3", TierSchemeThree, 3, 2},
		{"three-tier level 4", TierSchemeThree, 4, 2},
		{"three-tier level 5", TierSchemeThree, 5, 3},
		{"three-tier level 20", TierSchemeThree, 20, 3},
		{"two-tier level 2", TierSchemeTwo, 2, 1},
		{"two-tier level 3", TierSchemeTwo, 3, 2},
		{"two-tier level 20", TierSchemeTwo, 20, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := DefaultTuning()
			tuning.TierScheme = tt.scheme
			assert.Equal(t, tt.expected, tuning.AttributeTier(tt.level))
		})
	}
}

func TestTuning_MaskCount(t *testing.T) {
	tuning := DefaultTuning()

	assert.Equal(t, 3, tuning.MaskCount(1, 1))
	assert.Equal(t, 3, tuning.MaskCount(10, 1), "tier 1 has only three distinct masks")
	assert.Equal(t, 5, tuning.MaskCount(3, 2))
	assert.Equal(t, 8, tuning.MaskCount(30, 3), "count should clamp to MaxMasks")
}

func TestTuning_Validate(t *testing.T) {
	require.NoError(t, DefaultTuning().Validate())

	bad := DefaultTuning()
	bad.MaxNpcs = 1
	bad.ElevatorCount = 2
	bad.TierScheme = "four-tier"
	bad.BoardAttempts = 0

	err := bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"max_npcs", "elevator_count", "tier_scheme", "board_attempts"} {
		assert.True(t, strings.Contains(err.Error(), want), "error should mention %s: %v", want, err)
	}
}
