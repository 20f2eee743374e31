package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/queue"
)

// Special action values that do not map to a player event
const (
	ResetSessionAction = "RESET_SESSION"
)

// Elevator references resolved against the live level design
const (
	ElevatorTarget = "target"
	ElevatorWrong  = "wrong"
	ElevatorHome   = "home"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name       string     `json:"name"`
	Seed       int64      `json:"seed,omitempty"`        // Used for regular tests
	StartLevel int        `json:"start_level,omitempty"` // Used for regular tests
	Steps      []TestStep `json:"steps,omitempty"`       // Used for regular tests
	Cases      []string   `json:"cases,omitempty"`       // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player action and its expected outcomes
// Use action: "RESET_SESSION" to start over from the suite's seed
type TestStep struct {
	Name         string          `json:"name,omitempty"`
	Action       queue.EventType `json:"action"`
	Elevator     *int            `json:"elevator,omitempty"`
	ElevatorRef  string          `json:"elevator_ref,omitempty"` // target, wrong or home
	NpcID        *int            `json:"npc_id,omitempty"`
	Mask         string          `json:"mask,omitempty"` // mask code, e.g. MR.SH
	Expectations Expectations    `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// SessionState properties - aligned with pkg/state/session_state.go
	Level     *int  `json:"level,omitempty"`
	BestLevel *int  `json:"best_level,omitempty"`
	Wins      *int  `json:"wins,omitempty"`
	Losses    *int  `json:"losses,omitempty"`
	Occupied  []int `json:"occupied,omitempty"` // exact set of occupied elevators

	// Design properties
	Tier     *int `json:"tier,omitempty"`
	NpcCount *int `json:"npc_count,omitempty"`

	// Crowd reaction: at least this many NPCs in each mood
	MoodsAtLeast map[mood.Mood]int `json:"moods_at_least,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	EventID  string
	IsReset  bool // True if this was a RESET_SESSION step (should not count toward pass/fail metrics)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Session  uuid.UUID
	Duration time.Duration
	Error    error
}
