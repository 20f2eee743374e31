// Package schedule runs delayed one-shot actions on simulation time.
//
// Every task lives in a named slot. Scheduling into a slot that already holds
// a pending task replaces it, so a door that is asked to close twice closes
// once. Nothing runs on its own: the owner advances the clock from its tick.
package schedule

import (
	"sort"
)

type task struct {
	slot string
	due  float64
	seq  uint64
	fn   func()
}

// Scheduler is a single-threaded delayed task queue.
type Scheduler struct {
	now   float64
	seq   uint64
	tasks map[string]*task
}

// New returns an empty scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// Now returns the scheduler's clock in seconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Schedule runs fn after delay seconds, cancelling any task pending in slot.
// It reports whether a pending task was replaced.
func (s *Scheduler) Schedule(slot string, delay float64, fn func()) bool {
	_, replaced := s.tasks[slot]
	s.seq++
	s.tasks[slot] = &task{
		slot: slot,
		due:  s.now + max(0, delay),
		seq:  s.seq,
		fn:   fn,
	}
	return replaced
}

// Cancel drops the task pending in slot and reports whether there was one.
func (s *Scheduler) Cancel(slot string) bool {
	_, ok := s.tasks[slot]
	delete(s.tasks, slot)
	return ok
}

// CancelAll drops every pending task.
func (s *Scheduler) CancelAll() {
	clear(s.tasks)
}

// Pending reports whether slot holds a task.
func (s *Scheduler) Pending(slot string) bool {
	_, ok := s.tasks[slot]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Advance moves the clock forward by dt and runs every task that came due,
// earliest first. Tasks scheduled by a running task with no delay run in the
// same call; a task may reschedule its own slot.
func (s *Scheduler) Advance(dt float64) int {
	s.now += max(0, dt)
	ran := 0

	for {
		next := s.nextDue()
		if next == nil {
			return ran
		}
		delete(s.tasks, next.slot)
		next.fn()
		ran++
	}
}

func (s *Scheduler) nextDue() *task {
	due := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}
