package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/masquerade/pkg/state"
)

func TestMockStorage_SaveLoadDelete(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	s := state.NewSessionState(3)
	s.Level = 4
	require.NoError(t, m.SaveSession(ctx, s))

	// stored copies are independent of the caller's value
	s.Level = 9
	loaded, err := m.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 4, loaded.Level)

	ids, err := m.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{s.ID}, ids)

	require.NoError(t, m.DeleteSession(ctx, s.ID))
	loaded, err = m.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	assert.Error(t, m.SaveSession(ctx, nil))

	m.SetSaveError(errors.New("disk full"))
	assert.Error(t, m.SaveSession(ctx, state.NewSessionState(1)))

	m.SetPingError(errors.New("down"))
	assert.Error(t, m.Ping(ctx))
	m.SetPingSuccess()
	assert.NoError(t, m.Ping(ctx))
}
