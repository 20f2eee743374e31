package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/state"
)

func intPtr(v int) *int { return &v }

func testDesign() *design.LevelDesign {
	return &design.LevelDesign{
		LevelIndex:          2,
		AttributeTier:       1,
		NpcCount:            4,
		PlayerElevatorIndex: 0,
		TargetElevatorIndex: 2,
		Elevators: []design.ElevatorDescriptor{
			{Index: 0, Direction: design.DirectionNeutral},
			{Index: 1, Direction: design.DirectionDown},
			{Index: 2, Direction: design.DirectionTarget},
		},
	}
}

func TestResolveElevator(t *testing.T) {
	d := testDesign()

	idx, err := resolveElevator(d, ElevatorTarget)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = resolveElevator(d, ElevatorHome)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = resolveElevator(d, ElevatorWrong)
	require.NoError(t, err)
	assert.NotEqual(t, d.TargetElevatorIndex, idx)

	_, err = resolveElevator(d, "sideways")
	assert.Error(t, err)
}

func TestBuildEvent(t *testing.T) {
	id := uuid.New()
	d := testDesign()

	event, err := buildEvent(id, TestStep{Action: queue.EventPlayerEnteredElevator, ElevatorRef: ElevatorTarget}, d)
	require.NoError(t, err)
	assert.Equal(t, id, event.SessionID)
	require.NotNil(t, event.Elevator)
	assert.Equal(t, 2, *event.Elevator)

	event, err = buildEvent(id, TestStep{Action: queue.EventMaskSelected, Mask: "MT.OO"}, d)
	require.NoError(t, err)
	require.NotNil(t, event.Mask)

	_, err = buildEvent(id, TestStep{Action: queue.EventMaskSelected, Mask: "bogus"}, d)
	assert.Error(t, err)

	_, err = buildEvent(id, TestStep{Action: queue.EventNpcInteracted}, d)
	assert.Error(t, err, "npc_interacted needs an npc id")
}

func TestCheckExpectations(t *testing.T) {
	ss := &state.SessionState{
		Level:     3,
		BestLevel: 3,
		Wins:      2,
		Occupied:  []int{2, 0},
		Moods:     map[int]mood.Mood{0: mood.Happy, 1: mood.Happy, 2: mood.Idle},
		Design:    testDesign(),
	}

	tests := []struct {
		name    string
		exp     Expectations
		wantErr bool
	}{
		{name: "empty", exp: Expectations{}},
		{name: "level", exp: Expectations{Level: intPtr(3), Wins: intPtr(2)}},
		{name: "wrong level", exp: Expectations{Level: intPtr(4)}, wantErr: true},
		{name: "losses", exp: Expectations{Losses: intPtr(1)}, wantErr: true},
		{name: "occupied any order", exp: Expectations{Occupied: []int{0, 2}}},
		{name: "occupied mismatch", exp: Expectations{Occupied: []int{}}, wantErr: true},
		{name: "design", exp: Expectations{Tier: intPtr(1), NpcCount: intPtr(4)}},
		{name: "moods", exp: Expectations{MoodsAtLeast: map[mood.Mood]int{mood.Happy: 2}}},
		{name: "too few moods", exp: Expectations{MoodsAtLeast: map[mood.Mood]int{mood.Assault: 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkExpectations(tt.exp, ss)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadTestSuiteWithExpansion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.json"),
		[]byte(`{"name":"one","seed":1,"steps":[{"name":"wait","expect":{"level":1}}]}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.json"),
		[]byte(`{"name":"two","steps":[{"action":"player_entered_room","expect":{}}]}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "all.json"),
		[]byte(`{"name":"all","cases":["one.json","two.json"]}`), 0o600))

	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(dir, "all.json"), dir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "one", jobs[0].Name)
	assert.Equal(t, int64(1), jobs[0].Suite.Seed)
	assert.Equal(t, queue.EventPlayerEnteredRoom, jobs[1].Suite.Steps[0].Action)

	_, err = LoadTestSuiteWithExpansion(filepath.Join(dir, "missing.json"), dir)
	assert.Error(t, err)
}
