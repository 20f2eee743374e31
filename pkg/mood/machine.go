package mood

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/geom"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/rng"
)

// Reaction is the single notification sent for a mood transition. A
// renderer maps it to animation and audio.
type Reaction struct {
	NpcID int  `json:"npc_id"`
	From  Mood `json:"from"`
	To    Mood `json:"to"`
	Look  Look `json:"look"`
}

// Notifier receives reactions. Errors are logged by the machine and never
// stop the simulation.
type Notifier interface {
	NotifyReaction(r Reaction) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(r Reaction) error

func (f NotifierFunc) NotifyReaction(r Reaction) error { return f(r) }

// Player is what an NPC knows about the player during a tick.
type Player struct {
	Position geom.Vec3
	Present  bool
}

// Settings drive the per-tick behavior of a machine.
type Settings struct {
	ViewInterval      float64 `yaml:"view_interval" json:"view_interval"` // seconds per view cycle step
	LookAtPlayerCycle int     `yaml:"look_at_player_cycle" json:"look_at_player_cycle"`
	IdleResetCycle    int     `yaml:"idle_reset_cycle" json:"idle_reset_cycle"`
	AwarenessRange    float64 `yaml:"awareness_range" json:"awareness_range"`
	RandomLookRange   float64 `yaml:"random_look_range" json:"random_look_range"`
	AssaultSpeed      float64 `yaml:"assault_speed" json:"assault_speed"`
	TurnRate          float64 `yaml:"turn_rate" json:"turn_rate"`
}

// DefaultSettings returns the values the game shipped with.
func DefaultSettings() Settings {
	return Settings{
		ViewInterval:      1.5,
		LookAtPlayerCycle: 20,
		IdleResetCycle:    30,
		AwarenessRange:    6,
		RandomLookRange:   10,
		AssaultSpeed:      1.5,
		TurnRate:          1,
	}
}

// Validate checks the settings for values that would stall the view cycle.
func (s Settings) Validate() error {
	if s.ViewInterval <= 0 {
		return fmt.Errorf("view_interval must be positive, got %g", s.ViewInterval)
	}
	if s.LookAtPlayerCycle < 1 || s.IdleResetCycle <= s.LookAtPlayerCycle {
		return fmt.Errorf("cycles must satisfy 1 <= look_at_player_cycle (%d) < idle_reset_cycle (%d)", s.LookAtPlayerCycle, s.IdleResetCycle)
	}
	if s.AwarenessRange < 0 || s.AssaultSpeed < 0 || s.TurnRate < 0 {
		return fmt.Errorf("awareness_range, assault_speed and turn_rate must not be negative")
	}
	return nil
}

// arriveDistanceSq stops assault movement once the NPC is this close (squared).
const arriveDistanceSq = 0.01

// Machine is the mood state machine of one NPC. It is not safe for
// concurrent use; a single simulation tick owns it.
type Machine struct {
	id       int
	mask     mask.Attributes
	mood     Mood
	settings Settings

	position      geom.Vec3
	facing        geom.Vec3
	initialFacing geom.Vec3
	target        geom.Vec3
	player        Player

	lookingAtPlayer bool
	viewTimer       float64
	viewCycle       int

	rng      *rng.RNG
	notifier Notifier
	logger   *slog.Logger

	loggedMissingNotifier bool
	loggedMissingPlayer   bool
}

// NewMachine creates a machine for a generated NPC. The NPC starts Idle,
// facing its spawn look-at point.
func NewMachine(npc design.NpcRecord, settings Settings, r *rng.RNG, notifier Notifier, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	facing := npc.LookAt.Sub(npc.Position).Flat().Normalize()
	if facing == (geom.Vec3{}) {
		facing = geom.Vec3{Z: 1}
	}

	m := &Machine{
		id:            npc.ID,
		mask:          npc.Mask,
		mood:          Idle,
		settings:      settings,
		position:      npc.Position,
		facing:        facing,
		initialFacing: facing,
		rng:           r,
		notifier:      notifier,
		logger:        logger.With("npc_id", npc.ID),
	}
	m.target = m.position.Add(facing)
	return m
}

func (m *Machine) ID() int { return m.id }
func (m *Machine) Mask() mask.Attributes { return m.mask }
func (m *Machine) Mood() Mood { return m.mood }
func (m *Machine) Position() geom.Vec3 { return m.position }
func (m *Machine) Facing() geom.Vec3 { return m.facing }
func (m *Machine) Target() geom.Vec3 { return m.target }
func (m *Machine) LookingAtPlayer() bool { return m.lookingAtPlayer }
func (m *Machine) ViewCycle() int { return m.viewCycle }

// SetMood moves the machine to mood. Setting the current mood is a no-op;
// every real transition sends exactly one reaction. It reports whether a
// transition happened.
func (m *Machine) SetMood(mood Mood) bool {
	if mood == m.mood {
		return false
	}

	from := m.mood
	m.mood = mood
	m.logger.Debug("NPC mood changed", "from", from, "to", mood)

	look := mood.Look()
	switch look {
	case LookPlayer:
		m.tryLookAtPlayer(string(mood))
	default:
		m.idle()
	}

	m.notify(Reaction{NpcID: m.id, From: from, To: mood, Look: look})
	return true
}

// EvaluateMask compares the player's disguise with this NPC's mask and moves
// to the resulting mood.
func (m *Machine) EvaluateMask(player mask.Attributes) Mood {
	result := Evaluate(player, m.mask)
	m.SetMood(result)
	return result
}

// Tick advances the machine by dt seconds.
func (m *Machine) Tick(dt float64, player Player) {
	m.player = player

	if m.lookingAtPlayer {
		if m.playerInRange() {
			m.target = player.Position
		} else {
			m.lookingAtPlayer = false
		}
	}

	m.turn(dt)
	m.moveAssault(dt)
	m.updateViewCycle(dt)
}

// LookAt points the NPC at a world position.
func (m *Machine) LookAt(point geom.Vec3) {
	m.lookingAtPlayer = false
	m.target = point
}

func (m *Machine) idle() {
	m.LookAt(m.position.Add(m.initialFacing))
}

func (m *Machine) tryLookAtPlayer(context string) {
	if !m.player.Present {
		if !m.loggedMissingPlayer {
			m.loggedMissingPlayer = true
			m.logger.Warn("No player known, skipping look at player", "context", context, "error", design.ErrConfigurationMissing)
		}
		return
	}
	if !m.playerInRange() {
		return
	}
	m.target = m.player.Position
	m.lookingAtPlayer = true
}

func (m *Machine) playerInRange() bool {
	if !m.player.Present {
		return false
	}
	r := m.settings.AwarenessRange
	return m.player.Position.Sub(m.position).LenSq() <= r*r
}

func (m *Machine) turn(dt float64) {
	direction := m.target.Sub(m.position).Flat().Normalize()
	if direction == (geom.Vec3{}) {
		return
	}
	next := geom.Lerp(m.facing, direction, dt*m.settings.TurnRate).Normalize()
	if next != (geom.Vec3{}) {
		m.facing = next
	}
}

// moveAssault walks toward the player's horizontal position. It only runs
// while the mood is Assault.
func (m *Machine) moveAssault(dt float64) {
	if m.mood != Assault || !m.player.Present {
		return
	}

	goal := geom.Vec3{X: m.player.Position.X, Y: m.position.Y, Z: m.player.Position.Z}
	offset := goal.Sub(m.position)
	if offset.LenSq() <= arriveDistanceSq {
		return
	}

	step := m.settings.AssaultSpeed * dt
	if step*step >= offset.LenSq() {
		m.position = goal
		return
	}
	m.position = m.position.Add(offset.Normalize().Scale(step))
}

func (m *Machine) updateViewCycle(dt float64) {
	if !m.mood.CyclesView() {
		return
	}

	m.viewTimer += dt
	if m.viewTimer < m.settings.ViewInterval {
		return
	}
	m.viewTimer = 0
	m.viewCycle++

	switch {
	case m.viewCycle == m.settings.LookAtPlayerCycle:
		m.tryLookAtPlayer("view cycle")
	case m.viewCycle >= m.settings.IdleResetCycle:
		m.idle()
		m.viewCycle = 0
	case m.viewCycle < m.settings.LookAtPlayerCycle:
		r := m.settings.RandomLookRange
		m.LookAt(geom.Vec3{X: m.rng.Range(-r, r), Z: m.rng.Range(-r, r)})
	}
}

func (m *Machine) notify(r Reaction) {
	if m.notifier == nil {
		if !m.loggedMissingNotifier {
			m.loggedMissingNotifier = true
			m.logger.Warn("No reaction notifier set, reactions will not be rendered", "error", design.ErrConfigurationMissing)
		}
		return
	}
	if err := m.notifier.NotifyReaction(r); err != nil {
		m.logger.Warn("Failed to deliver NPC reaction", "mood", r.To, "error", err)
	}
}
