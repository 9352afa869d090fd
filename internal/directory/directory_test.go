package directory

import (
	"context"
	"testing"
	"time"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore/memstore"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T, store *memstore.Store) *fcb.FCB {
	t.Helper()
	ctx := context.Background()
	dataID, err := block.NewIndex(ctx, store)
	require.NoError(t, err)
	d := &fcb.FCB{ID: identifier.New(), Data: dataID, Mode: fcb.TypeDir | 0755}
	require.NoError(t, block.WriteData(ctx, store, d, InitialContent(), 0, time.Unix(0, 0)))
	return d
}

func TestAddLookupIterate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	dir := newTestDir(t, store)
	now := time.Unix(0, 0)

	a := identifier.New()
	require.NoError(t, AddEntry(ctx, store, dir, a, "a", now))

	got, err := Lookup(ctx, store, dir, "a")
	require.NoError(t, err)
	require.Equal(t, a, got.FCBID)

	n, err := Size(ctx, store, dir)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSlotRecycling(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	dir := newTestDir(t, store)
	now := time.Unix(0, 0)

	a, b, c := identifier.New(), identifier.New(), identifier.New()
	require.NoError(t, AddEntry(ctx, store, dir, a, "a", now))
	require.NoError(t, AddEntry(ctx, store, dir, b, "b", now))
	require.NoError(t, AddEntry(ctx, store, dir, c, "c", now))

	require.NoError(t, RemoveEntry(ctx, store, dir, "b", now))

	z := identifier.New()
	require.NoError(t, AddEntry(ctx, store, dir, z, "z", now))

	entries, err := Iterate(ctx, store, dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "a", entries[0].Name)
	require.Equal(t, "z", entries[1].Name) // recycled into b's former slot
	require.Equal(t, "c", entries[2].Name)
}

func TestRemoveEntryNotFound(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	dir := newTestDir(t, store)

	err := RemoveEntry(ctx, store, dir, "missing", time.Unix(0, 0))
	require.True(t, kvfserrors.Is(err, kvfserrors.KindNoEntry))
}

func TestIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	dir := newTestDir(t, store)
	now := time.Unix(0, 0)

	empty, err := IsEmpty(ctx, store, dir)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, AddEntry(ctx, store, dir, identifier.New(), "a", now))

	empty, err = IsEmpty(ctx, store, dir)
	require.NoError(t, err)
	require.False(t, empty)
}
