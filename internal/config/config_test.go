package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/masquerade/pkg/generator"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "REDIS_URL", "SEED", "START_LEVEL", "FAILURE_LEVEL", "TICK_INTERVAL", "SESSION_TTL", "TUNING_FILE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 1, cfg.StartLevel)
	assert.Equal(t, 1, cfg.FailureLevel)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SEED", "1234")
	t.Setenv("START_LEVEL", "5")
	t.Setenv("TICK_INTERVAL", "50ms")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, 5, cfg.StartLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadGameFromReader_PartialOverDefaults(t *testing.T) {
	t.Setenv("START_LEVEL", "")
	t.Setenv("FAILURE_LEVEL", "")
	yml := `
generator:
  max_npcs: 20
  tier_scheme: two-tier
progression:
  failure_level: 2
  timings:
    close_delay: 3
`
	g, err := LoadGameFromReader(strings.NewReader(yml), Load())
	require.NoError(t, err)

	assert.Equal(t, 20, g.Generator.MaxNpcs)
	assert.Equal(t, generator.TierSchemeTwo, g.Generator.TierScheme)
	assert.Equal(t, generator.DefaultTuning().MinNpcs, g.Generator.MinNpcs)
	assert.Equal(t, 2, g.Progression.FailureLevel)
	assert.Equal(t, 3.0, g.Progression.Timings.CloseDelay)
	assert.Equal(t, 1.5, g.Progression.Timings.ReopenDelay)
	assert.Equal(t, 1.5, g.Progression.Timings.ResolveDelay)
}

func TestLoadGameFromReader_ImmediateRegeneration(t *testing.T) {
	yml := `
progression:
  timings:
    resolve_delay: 0
`
	g, err := LoadGameFromReader(strings.NewReader(yml), nil)
	require.NoError(t, err)
	assert.Zero(t, g.Progression.Timings.ResolveDelay)
	assert.Equal(t, 1.5, g.Progression.Timings.CloseDelay)
}

func TestLoadGameFromReader_Empty(t *testing.T) {
	g, err := LoadGameFromReader(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultGame(), g)
}

func TestLoadGameFromReader_UnknownField(t *testing.T) {
	_, err := LoadGameFromReader(strings.NewReader("generator:\n  max_npc: 4\n"), nil)
	assert.Error(t, err)
}

func TestLoadGameFromReader_JoinsValidationErrors(t *testing.T) {
	yml := `
generator:
  min_npcs: 10
  max_npcs: 2
progression:
  start_level: 0
`
	_, err := LoadGameFromReader(strings.NewReader(yml), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator")
	assert.Contains(t, err.Error(), "start_level")
}

func TestLoadGame_EnvOverridesFile(t *testing.T) {
	t.Setenv("FAILURE_LEVEL", "4")
	g, err := LoadGame("", Load())
	require.NoError(t, err)
	assert.Equal(t, 4, g.Progression.FailureLevel)
}

func TestLoadGame_MissingFile(t *testing.T) {
	_, err := LoadGame("/nonexistent/tuning.yaml", nil)
	assert.Error(t, err)
}
