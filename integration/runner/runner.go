package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

var errSettleTimeout = errors.New("session did not settle")

// Runner executes integration tests against a running masquerade API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	SeedOverride      int64 // If set, overrides the seed for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Timeout:           SettleTimeout,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	if r.SeedOverride != 0 {
		suite.Seed = r.SeedOverride
	}

	sessionID, err := r.createSession(ctx, suite.Seed, suite.StartLevel)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = sessionID
	defer func() {
		// Use a fresh context so cleanup runs even after a cancelled suite.
		_ = r.deleteSession(context.Background(), result.Session)
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		if step.Action == ResetSessionAction {
			_ = r.deleteSession(ctx, result.Session)
			newID, err := r.createSession(ctx, suite.Seed, suite.StartLevel)
			stepResult := TestResult{TestName: suite.Name, StepName: step.Name, IsReset: true, Success: err == nil, Error: err}
			result.Results = append(result.Results, stepResult)
			if err != nil {
				result.Error = fmt.Errorf("step %d (%s) failed to reset session: %w", i, step.Name, err)
				break
			}
			result.Session = newID
			continue
		}

		stepResult := r.runStep(ctx, result.Session, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// CreateSessionRequest matches the API request structure
type CreateSessionRequest struct {
	Seed       int64 `json:"seed,omitempty"`
	StartLevel int   `json:"start_level,omitempty"`
}

func (r *Runner) createSession(ctx context.Context, seed int64, startLevel int) (uuid.UUID, error) {
	body, err := json.Marshal(CreateSessionRequest{Seed: seed, StartLevel: startLevel})
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/sessions", bytes.NewBuffer(body))
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return uuid.UUID{}, fmt.Errorf("create session returned %d: %s", resp.StatusCode, string(respBody))
	}

	var created state.SessionState
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to decode created session: %w", err)
	}
	return created.ID, nil
}

func (r *Runner) deleteSession(ctx context.Context, sessionID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.BaseURL+"/v1/sessions/"+sessionID.String(), nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// runStep executes a single test step and checks expectations
// Will retry the wait once when the session does not settle in time
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	result := r.executeStep(ctx, sessionID, step)
	if result.Error != nil && errors.Is(result.Error, errSettleTimeout) {
		r.Logger("    Timeout detected, waiting again: %s", step.Name)
		start := time.Now()
		_, err := PollForSession(ctx, r.Client, r.BaseURL, sessionID, r.Timeout, expectationCheck(step.Expectations))
		result.Duration += time.Since(start)
		if err == nil {
			result.Error = nil
			result.Success = true
		}
	}
	return result
}

// executeStep performs the actual step execution
func (r *Runner) executeStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	if step.Action != "" {
		d, err := GetDesign(ctx, r.Client, r.BaseURL, sessionID)
		if err != nil {
			result.Error = fmt.Errorf("failed to read design: %w", err)
			result.Duration = time.Since(start)
			return result
		}

		event, err := buildEvent(sessionID, step, d)
		if err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}

		eventID, err := PostEvent(ctx, r.Client, r.BaseURL, event)
		if err != nil {
			result.Error = fmt.Errorf("failed to post event: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		result.EventID = eventID
	}

	if _, err := PollForSession(ctx, r.Client, r.BaseURL, sessionID, r.Timeout, expectationCheck(step.Expectations)); err != nil {
		result.Error = fmt.Errorf("%w: %w", errSettleTimeout, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// buildEvent turns a step into the player event it describes
func buildEvent(sessionID uuid.UUID, step TestStep, d *design.LevelDesign) (*queue.PlayerEvent, error) {
	event := &queue.PlayerEvent{
		Type:      step.Action,
		SessionID: sessionID,
		Elevator:  step.Elevator,
		NpcID:     step.NpcID,
	}

	if step.ElevatorRef != "" {
		idx, err := resolveElevator(d, step.ElevatorRef)
		if err != nil {
			return nil, err
		}
		event.Elevator = &idx
	}

	if step.Mask != "" {
		m, ok := mask.ParseCode(step.Mask)
		if !ok {
			return nil, fmt.Errorf("invalid mask code %q", step.Mask)
		}
		event.Mask = &m
	}

	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step %q: %w", step.Name, err)
	}
	return event, nil
}

// resolveElevator maps a symbolic elevator reference onto an index of d
func resolveElevator(d *design.LevelDesign, ref string) (int, error) {
	switch ref {
	case ElevatorTarget:
		return d.TargetElevatorIndex, nil
	case ElevatorHome:
		return d.PlayerElevatorIndex, nil
	case ElevatorWrong:
		for _, e := range d.Elevators {
			if e.Index != d.TargetElevatorIndex {
				return e.Index, nil
			}
		}
		return 0, fmt.Errorf("level %d has no wrong elevator", d.LevelIndex)
	}
	return 0, fmt.Errorf("unknown elevator reference %q", ref)
}

func expectationCheck(exp Expectations) func(*state.SessionState) error {
	return func(ss *state.SessionState) error {
		return checkExpectations(exp, ss)
	}
}

// checkExpectations validates the test expectations against a session snapshot
func checkExpectations(exp Expectations, ss *state.SessionState) error {
	if exp.Level != nil && ss.Level != *exp.Level {
		return fmt.Errorf("expected level %d, got %d", *exp.Level, ss.Level)
	}

	if exp.BestLevel != nil && ss.BestLevel != *exp.BestLevel {
		return fmt.Errorf("expected best_level %d, got %d", *exp.BestLevel, ss.BestLevel)
	}

	if exp.Wins != nil && ss.Wins != *exp.Wins {
		return fmt.Errorf("expected wins %d, got %d", *exp.Wins, ss.Wins)
	}

	if exp.Losses != nil && ss.Losses != *exp.Losses {
		return fmt.Errorf("expected losses %d, got %d", *exp.Losses, ss.Losses)
	}

	if exp.Occupied != nil {
		want := slices.Sorted(slices.Values(exp.Occupied))
		got := slices.Sorted(slices.Values(ss.Occupied))
		if !slices.Equal(want, got) {
			return fmt.Errorf("expected occupied elevators %v, got %v", want, got)
		}
	}

	if exp.Tier != nil || exp.NpcCount != nil {
		if ss.Design == nil {
			return fmt.Errorf("session has no level design yet")
		}
		if exp.Tier != nil && ss.Design.AttributeTier != *exp.Tier {
			return fmt.Errorf("expected tier %d, got %d", *exp.Tier, ss.Design.AttributeTier)
		}
		if exp.NpcCount != nil && ss.Design.NpcCount != *exp.NpcCount {
			return fmt.Errorf("expected npc_count %d, got %d", *exp.NpcCount, ss.Design.NpcCount)
		}
	}

	for m, atLeast := range exp.MoodsAtLeast {
		if got := ss.MoodCount(m); got < atLeast {
			return fmt.Errorf("expected at least %d NPCs in mood %s, got %d", atLeast, m, got)
		}
	}

	return nil
}
