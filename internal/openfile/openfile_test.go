package openfile

import (
	"testing"

	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/stretchr/testify/require"
)

func TestAddGetRemove(t *testing.T) {
	table := NewSize(4)
	id := identifier.New()

	h, err := table.Add(id)
	require.NoError(t, err)

	got, err := table.Get(h)
	require.NoError(t, err)
	require.Equal(t, id, got)

	require.True(t, table.IsOpen(id))

	fcbID, stillOpen, err := table.Remove(h)
	require.NoError(t, err)
	require.Equal(t, id, fcbID)
	require.False(t, stillOpen)
	require.False(t, table.IsOpen(id))
}

func TestRemoveReportsStillOpenWithAnotherHandle(t *testing.T) {
	table := NewSize(4)
	id := identifier.New()

	h1, err := table.Add(id)
	require.NoError(t, err)
	h2, err := table.Add(id)
	require.NoError(t, err)

	_, stillOpen, err := table.Remove(h1)
	require.NoError(t, err)
	require.True(t, stillOpen)
	require.True(t, table.IsOpen(id))

	_, stillOpen, err = table.Remove(h2)
	require.NoError(t, err)
	require.False(t, stillOpen)
}

func TestAddTooManyOpen(t *testing.T) {
	table := NewSize(2)
	_, err := table.Add(identifier.New())
	require.NoError(t, err)
	_, err = table.Add(identifier.New())
	require.NoError(t, err)

	_, err = table.Add(identifier.New())
	require.True(t, kvfserrors.Is(err, kvfserrors.KindTooManyOpen))
}

func TestGetUnusedHandleIsNoEntry(t *testing.T) {
	table := NewSize(4)
	_, err := table.Get(0)
	require.True(t, kvfserrors.Is(err, kvfserrors.KindNoEntry))
}

func TestSlotRecycledAfterRemove(t *testing.T) {
	table := NewSize(1)
	id1 := identifier.New()
	h, err := table.Add(id1)
	require.NoError(t, err)
	_, _, err = table.Remove(h)
	require.NoError(t, err)

	id2 := identifier.New()
	h2, err := table.Add(id2)
	require.NoError(t, err)
	require.Equal(t, h, h2)
}
