package design

import "errors"

// Error kinds shared by the engine packages. Callers wrap them with context
// and test with errors.Is; none of them is allowed to stop a simulation tick.
var (
	// ErrConfigurationMissing means a required collaborator was never set.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrGenerationExhausted means a bounded uniqueness search ran out of attempts.
	ErrGenerationExhausted = errors.New("generation exhausted")
	// ErrInvalidIndex means an elevator, NPC or level index is out of range.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrLevelResolved means the current level was already resolved and is
	// waiting to be replaced.
	ErrLevelResolved = errors.New("level already resolved")
)
