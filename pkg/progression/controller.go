package progression

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/generator"
	"github.com/jwebster45206/masquerade/pkg/geom"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/rng"
	"github.com/jwebster45206/masquerade/pkg/schedule"
)

const (
	slotRoomReaction = "room:reaction"
	slotRegenerate   = "level:regenerate"
)

func closeSlot(index int) string  { return fmt.Sprintf("elevator:%d:close", index) }
func reopenSlot(index int) string { return fmt.Sprintf("elevator:%d:reopen", index) }

// Resolution describes the outcome of riding an elevator.
type Resolution struct {
	Elevator  int  `json:"elevator"`
	Target    int  `json:"target"`
	Success   bool `json:"success"`
	FromLevel int  `json:"from_level"`
	NextLevel int  `json:"next_level"`
}

// Listener receives progression events. Implementations must not call back
// into the controller.
type Listener interface {
	LevelGenerated(d *design.LevelDesign)
	ElevatorResolved(r Resolution)
	DoorsChanged(elevator int, open bool)
}

type nopListener struct{}

func (nopListener) LevelGenerated(*design.LevelDesign) {}
func (nopListener) ElevatorResolved(Resolution)        {}
func (nopListener) DoorsChanged(int, bool)             {}

// Controller owns the current level and reacts to player events. It is
// single-threaded: every method must be called from the same simulation
// loop. Design may be read from any goroutine.
type Controller struct {
	gen      *generator.Generator
	rng      *rng.RNG
	opts     Options
	notifier mood.Notifier
	listener Listener
	logger   *slog.Logger
	sched    *schedule.Scheduler

	level       int
	design      atomic.Pointer[design.LevelDesign]
	crowd       *mood.Crowd
	playerMask  mask.Attributes
	player      mood.Player
	occupancy   map[int]bool
	roomReacted bool
}

// New creates a controller. The generator is required; a nil listener or
// notifier is allowed and logged.
func New(gen *generator.Generator, r *rng.RNG, opts Options, notifier mood.Notifier, listener Listener, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if gen == nil || r == nil {
		return nil, fmt.Errorf("controller needs a generator and an rng: %w", design.ErrConfigurationMissing)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid progression options: %w", err)
	}
	if listener == nil {
		logger.Warn("No progression listener set, level events will not be published", "error", design.ErrConfigurationMissing)
		listener = nopListener{}
	}

	return &Controller{
		gen:       gen,
		rng:       r,
		opts:      opts,
		notifier:  notifier,
		listener:  listener,
		logger:    logger,
		sched:     schedule.New(),
		occupancy: make(map[int]bool),
	}, nil
}

// Start generates the configured start level.
func (c *Controller) Start() *design.LevelDesign {
	return c.GenerateLevel(c.opts.StartLevel)
}

// GenerateLevel builds a fresh design for level and publishes it in one
// step. Pending room and door-close actions of the old design are dropped.
func (c *Controller) GenerateLevel(level int) *design.LevelDesign {
	d := c.gen.GenerateLevel(level)
	crowd := mood.NewCrowd(d.Npcs, c.opts.Mood, c.rng, c.notifier, c.logger)

	for index := range c.occupancy {
		c.sched.Cancel(closeSlot(index))
	}
	c.sched.Cancel(slotRoomReaction)
	c.sched.Cancel(slotRegenerate)

	c.level = d.LevelIndex
	c.crowd = crowd
	c.playerMask = d.PlayerMask
	c.roomReacted = false
	c.design.Store(d)

	c.logger.Info("Level ready",
		"level", d.LevelIndex,
		"tier", d.AttributeTier,
		"npcs", d.NpcCount,
		"target_elevator", d.TargetElevatorIndex)
	c.listener.LevelGenerated(d)
	return d
}

// Level returns the current level index.
func (c *Controller) Level() int {
	return c.level
}

// Design returns the published design, or nil before the first generation.
func (c *Controller) Design() *design.LevelDesign {
	return c.design.Load()
}

// Crowd returns the NPC machines of the current design.
func (c *Controller) Crowd() *mood.Crowd {
	return c.crowd
}

// PlayerMask returns the disguise NPCs currently judge.
func (c *Controller) PlayerMask() mask.Attributes {
	return c.playerMask
}

// Clock returns the simulation time in seconds.
func (c *Controller) Clock() float64 {
	return c.sched.Now()
}

// Pending reports whether a scheduled action is waiting in slot.
func (c *Controller) Pending(slot string) bool {
	return c.sched.Pending(slot)
}

// OnMaskSelected records the player's chosen disguise. NPCs already reacting
// keep their mood until they are evaluated again.
func (c *Controller) OnMaskSelected(m mask.Attributes) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("mask selection rejected: %w", err)
	}
	tier := mask.MaxTier
	if d := c.Design(); d != nil {
		tier = d.AttributeTier
	}
	c.playerMask = m.Normalize(tier)
	c.logger.Debug("Player selected mask", "mask", c.playerMask.Code())
	return nil
}

// OnElevatorResolved compares the ridden elevator with the target. The right
// elevator makes the crowd happy and advances one level; any other one sends
// the crowd into Assault and restarts at the failure level. A level resolves
// once: further resolutions before the next level appears fail with
// design.ErrLevelResolved.
func (c *Controller) OnElevatorResolved(index int) (Resolution, error) {
	d := c.Design()
	if d == nil {
		return Resolution{}, fmt.Errorf("resolve elevator %d before any level: %w", index, design.ErrConfigurationMissing)
	}
	if _, err := d.Elevator(index); err != nil {
		c.logger.Warn("Ignoring elevator resolution", "elevator", index, "error", err)
		return Resolution{}, err
	}
	if c.sched.Pending(slotRegenerate) {
		c.logger.Warn("Ignoring elevator resolution", "elevator", index, "level", c.level, "error", design.ErrLevelResolved)
		return Resolution{}, fmt.Errorf("resolve elevator %d on level %d: %w", index, c.level, design.ErrLevelResolved)
	}

	res := Resolution{
		Elevator:  index,
		Target:    d.TargetElevatorIndex,
		Success:   d.IsTarget(index),
		FromLevel: c.level,
	}
	if res.Success {
		c.crowd.Broadcast(mood.Happy)
		res.NextLevel = c.level + 1
	} else {
		c.crowd.Broadcast(mood.Assault)
		res.NextLevel = c.opts.FailureLevel
	}

	c.logger.Info("Elevator resolved",
		"elevator", index,
		"target", res.Target,
		"success", res.Success,
		"next_level", res.NextLevel)
	c.listener.ElevatorResolved(res)

	if c.opts.Timings.ResolveDelay > 0 {
		next := res.NextLevel
		c.sched.Schedule(slotRegenerate, c.opts.Timings.ResolveDelay, func() { c.GenerateLevel(next) })
	} else {
		c.GenerateLevel(res.NextLevel)
	}
	return res, nil
}

// PlayerEnteredElevator marks the player inside and schedules the doors to
// close. Repeated enters are ignored.
func (c *Controller) PlayerEnteredElevator(index int) error {
	if err := c.checkElevator(index); err != nil {
		return err
	}
	if c.occupancy[index] {
		return nil
	}
	c.occupancy[index] = true
	c.logger.Debug("Player entered elevator", "elevator", index)
	c.scheduleClose(index)
	return nil
}

// PlayerExitedElevator marks the player outside and schedules the doors to
// close behind them.
func (c *Controller) PlayerExitedElevator(index int) error {
	if err := c.checkElevator(index); err != nil {
		return err
	}
	if !c.occupancy[index] {
		return nil
	}
	c.occupancy[index] = false
	c.logger.Debug("Player exited elevator", "elevator", index)
	c.scheduleClose(index)
	return nil
}

// ElevatorDoorsClosedWithPlayer resolves the elevator. Spawners that run
// their own door timers report this directly.
func (c *Controller) ElevatorDoorsClosedWithPlayer(index int) error {
	_, err := c.OnElevatorResolved(index)
	return err
}

// PlayerEnteredRoom schedules the crowd to judge the disguise once per level.
func (c *Controller) PlayerEnteredRoom() {
	if c.roomReacted {
		return
	}
	c.roomReacted = true
	c.sched.Schedule(slotRoomReaction, c.opts.Timings.ReactionDelay, func() {
		c.logger.Debug("Crowd reacting to room entry", "mask", c.playerMask.Code())
		c.crowd.EvaluateAll(c.playerMask)
	})
}

// EvaluateNpc lets one NPC judge the current disguise.
func (c *Controller) EvaluateNpc(id int) (mood.Mood, error) {
	if c.crowd == nil {
		return "", fmt.Errorf("evaluate npc %d before any level: %w", id, design.ErrConfigurationMissing)
	}
	m, err := c.crowd.Evaluate(id, c.playerMask)
	if err != nil {
		c.logger.Warn("Ignoring NPC evaluation", "npc_id", id, "error", err)
		return "", err
	}
	return m, nil
}

// MovePlayer records the player's position for the next ticks.
func (c *Controller) MovePlayer(pos geom.Vec3) {
	c.player = mood.Player{Position: pos, Present: true}
}

// Tick advances scheduled actions, then every NPC, by dt seconds.
func (c *Controller) Tick(dt float64) {
	c.sched.Advance(dt)
	if c.crowd != nil {
		c.crowd.Tick(dt, c.player)
	}
}

// Stop drops every scheduled action. The controller must not be used after.
func (c *Controller) Stop() {
	c.sched.CancelAll()
}

// Inside reports whether the player is inside an elevator.
func (c *Controller) Inside(index int) bool {
	return c.occupancy[index]
}

// Occupied lists the elevators the player is inside, in index order.
func (c *Controller) Occupied() []int {
	var inside []int
	for index, in := range c.occupancy {
		if in {
			inside = append(inside, index)
		}
	}
	slices.Sort(inside)
	return inside
}

func (c *Controller) checkElevator(index int) error {
	d := c.Design()
	if d == nil {
		return fmt.Errorf("elevator %d before any level: %w", index, design.ErrConfigurationMissing)
	}
	if _, err := d.Elevator(index); err != nil {
		c.logger.Warn("Ignoring elevator event", "elevator", index, "error", err)
		return err
	}
	return nil
}

func (c *Controller) scheduleClose(index int) {
	c.sched.Schedule(closeSlot(index), c.opts.Timings.CloseDelay, func() {
		c.listener.DoorsChanged(index, false)
		if !c.occupancy[index] {
			return
		}
		if err := c.ElevatorDoorsClosedWithPlayer(index); err != nil {
			c.logger.Warn("Elevator closed but could not resolve", "elevator", index, "error", err)
		}
		c.sched.Schedule(reopenSlot(index), c.opts.Timings.ReopenDelay, func() {
			c.listener.DoorsChanged(index, true)
		})
	})
}
