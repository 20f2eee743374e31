package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/masquerade/pkg/generator"
	"github.com/jwebster45206/masquerade/pkg/progression"
)

// Game holds the rules tuning read from TUNING_FILE.
type Game struct {
	Generator   generator.Tuning    `yaml:"generator" json:"generator"`
	Progression progression.Options `yaml:"progression" json:"progression"`
}

// DefaultGame returns the tuning the game shipped with.
func DefaultGame() Game {
	return Game{
		Generator:   generator.DefaultTuning(),
		Progression: progression.DefaultOptions(),
	}
}

// LoadGame reads the YAML tuning file at path. An empty path returns the
// defaults with the env overrides of cfg applied.
func LoadGame(path string, cfg *Config) (Game, error) {
	if path == "" {
		g := DefaultGame()
		g.applyEnv(cfg)
		return g, g.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return Game{}, fmt.Errorf("tuning: open %q: %w", path, err)
	}
	defer f.Close()

	g, err := LoadGameFromReader(f, cfg)
	if err != nil {
		return Game{}, fmt.Errorf("tuning: parse %q: %w", path, err)
	}
	return g, nil
}

// LoadGameFromReader decodes YAML over the defaults, so a file only needs
// the values it changes. Unknown keys are rejected.
func LoadGameFromReader(r io.Reader, cfg *Config) (Game, error) {
	g := DefaultGame()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil && !errors.Is(err, io.EOF) {
		return Game{}, fmt.Errorf("tuning: decode yaml: %w", err)
	}
	g.applyEnv(cfg)
	if err := g.Validate(); err != nil {
		return Game{}, err
	}
	return g, nil
}

// Validate returns a joined error listing every invalid value.
func (g Game) Validate() error {
	var errs []error
	if err := g.Generator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generator: %w", err))
	}
	if err := g.Progression.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("progression: %w", err))
	}
	return errors.Join(errs...)
}

// START_LEVEL and FAILURE_LEVEL win over the file when they are set.
func (g *Game) applyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	if os.Getenv("START_LEVEL") != "" {
		g.Progression.StartLevel = cfg.StartLevel
	}
	if os.Getenv("FAILURE_LEVEL") != "" {
		g.Progression.FailureLevel = cfg.FailureLevel
	}
}
