package progression

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/masquerade/pkg/mood"
)

// Timings are the delays of the scheduled one-shot actions, in seconds.
type Timings struct {
	CloseDelay    float64 `yaml:"close_delay" json:"close_delay"`       // player enters or leaves, doors close
	ReopenDelay   float64 `yaml:"reopen_delay" json:"reopen_delay"`     // doors closed with player, doors reopen
	ReactionDelay float64 `yaml:"reaction_delay" json:"reaction_delay"` // player enters the room, NPCs react
	ResolveDelay  float64 `yaml:"resolve_delay" json:"resolve_delay"`   // elevator resolved, next level appears
}

// DefaultTimings returns the delays the game shipped with.
func DefaultTimings() Timings {
	return Timings{
		CloseDelay:    1.5,
		ReopenDelay:   1.5,
		ReactionDelay: 0.5,
		ResolveDelay:  1.5,
	}
}

// Options configure a controller.
type Options struct {
	StartLevel   int           `yaml:"start_level" json:"start_level"`
	FailureLevel int           `yaml:"failure_level" json:"failure_level"` // level to restart at after a wrong elevator
	Timings      Timings       `yaml:"timings" json:"timings"`
	Mood         mood.Settings `yaml:"mood" json:"mood"`
}

// DefaultOptions starts at level 1 and restarts there on failure.
func DefaultOptions() Options {
	return Options{
		StartLevel:   1,
		FailureLevel: 1,
		Timings:      DefaultTimings(),
		Mood:         mood.DefaultSettings(),
	}
}

// Validate returns a joined error listing every invalid option.
func (o Options) Validate() error {
	var errs []error
	if o.StartLevel < 1 {
		errs = append(errs, fmt.Errorf("start_level must be >= 1, got %d", o.StartLevel))
	}
	if o.FailureLevel < 1 {
		errs = append(errs, fmt.Errorf("failure_level must be >= 1, got %d", o.FailureLevel))
	}
	t := o.Timings
	if t.CloseDelay < 0 || t.ReopenDelay < 0 || t.ReactionDelay < 0 || t.ResolveDelay < 0 {
		errs = append(errs, fmt.Errorf("timings must not be negative"))
	}
	if err := o.Mood.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("mood: %w", err))
	}
	return errors.Join(errs...)
}
