package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jwebster45206/masquerade/internal/config"
	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/generator"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/rng"
)

func main() {
	levels := flag.Int("levels", 20, "levels to dry-run per seed")
	seeds := flag.Int("seeds", 50, "seeds to dry-run")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-levels N] [-seeds N] <tuning.yaml>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	filename := flag.Arg(0)
	validator := &TuningValidator{levels: *levels, seeds: *seeds}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Tuning file is valid! (%d designs checked)\n", validator.checked)
}

type TuningValidator struct {
	levels  int
	seeds   int
	checked int
	errors  []string
}

func (v *TuningValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	game, err := config.LoadGame(filename, nil)
	if err != nil {
		return err
	}

	v.errors = nil
	for seed := int64(1); seed <= int64(v.seeds); seed++ {
		gen := generator.New(game.Generator, rng.New(seed), nil)
		for level := 1; level <= v.levels; level++ {
			v.validateDesign(gen.GenerateLevel(level), game.Generator, seed)
			v.checked++
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateDesign checks the guarantees every generated level must keep.
func (v *TuningValidator) validateDesign(d *design.LevelDesign, tuning generator.Tuning, seed int64) {
	where := fmt.Sprintf("seed %d level %d", seed, d.LevelIndex)

	if want := tuning.NpcCount(d.LevelIndex); d.NpcCount != want || len(d.Npcs) != want {
		v.addError(where, "npc count %d (roster %d), want %d", d.NpcCount, len(d.Npcs), want)
	}

	if len(d.LiftChoices) != design.LiftChoiceCount {
		v.addError(where, "%d lift choices, want %d", len(d.LiftChoices), design.LiftChoiceCount)
	}
	distinct := make(map[mask.Attributes]bool)
	matches := 0
	for _, c := range d.LiftChoices {
		distinct[c] = true
		if c == d.PlayerMask.Normalize(d.AttributeTier) {
			matches++
		}
	}
	if len(distinct) != len(d.LiftChoices) && mask.MaxDistinct(d.AttributeTier) >= design.LiftChoiceCount {
		v.addError(where, "lift choices are not distinct")
	}
	if matches != 1 {
		v.addError(where, "%d lift choices match the disguise, want exactly 1", matches)
	}

	targets := 0
	for _, e := range d.Elevators {
		if e.Direction == design.DirectionTarget {
			targets++
		}
	}
	if targets != 1 || !d.IsTarget(d.TargetElevatorIndex) {
		v.addError(where, "%d target elevators, want exactly 1", targets)
	}

	for _, npc := range d.Npcs {
		if npc.Mask != npc.Mask.Normalize(d.AttributeTier) {
			v.addError(where, "npc %d mask %s uses attributes above tier %d", npc.ID, npc.Mask.Code(), d.AttributeTier)
		}
	}

	if tuning.BoardMode && len(d.Npcs) > 0 {
		if len(d.AvailableMasks) == 0 || d.AvailableMasks[0].Fit != design.FitBest {
			v.addError(where, "board must start with the best fit")
		}
		if len(d.AvailableMasks) > mask.MaxDistinct(d.AttributeTier) {
			v.addError(where, "board has %d masks, tier allows %d", len(d.AvailableMasks), mask.MaxDistinct(d.AttributeTier))
		}
	}
}

func (v *TuningValidator) addError(where, format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf("  %s: %s", where, fmt.Sprintf(format, args...)))
}
