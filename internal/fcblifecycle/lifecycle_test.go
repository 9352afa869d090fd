package fcblifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore/memstore"
	"github.com/stretchr/testify/require"
)

var never IsOpenFunc = func(identifier.ID) bool { return false }

func TestCreateFileThenRead(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Unix(100, 0)

	f, err := CreateFile(ctx, store, 0644, 1000, 1000, now)
	require.NoError(t, err)
	require.True(t, f.IsRegular())
	require.EqualValues(t, 0, f.Nlink)
	require.EqualValues(t, 0, f.Size)

	loaded, err := Read(ctx, store, f.ID)
	require.NoError(t, err)
	require.Equal(t, f.ID, loaded.ID)
	require.Equal(t, f.Data, loaded.Data)
}

func TestInitRootNlinkForcedToOne(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	root, err := InitRoot(ctx, store, 0755, time.Unix(0, 0))
	require.NoError(t, err)
	require.EqualValues(t, 1, root.Nlink)
	require.True(t, root.IsDir())
}

func TestLinkUnlinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Unix(0, 0)

	dir, err := CreateDirectory(ctx, store, 0755, 0, 0, now)
	require.NoError(t, err)
	file, err := CreateFile(ctx, store, 0644, 0, 0, now)
	require.NoError(t, err)

	require.NoError(t, Link(ctx, store, dir, file, "hello", now))
	require.EqualValues(t, 1, file.Nlink)

	require.NoError(t, Unlink(ctx, store, dir, file, "hello", never, now))
	require.EqualValues(t, 0, file.Nlink)

	// nlink reached zero and the file was not open: fully removed.
	_, err = Read(ctx, store, file.ID)
	require.Error(t, err)
}

func TestUnlinkKeepsFileAliveWhileOpen(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Unix(0, 0)

	dir, err := CreateDirectory(ctx, store, 0755, 0, 0, now)
	require.NoError(t, err)
	file, err := CreateFile(ctx, store, 0644, 0, 0, now)
	require.NoError(t, err)
	require.NoError(t, Link(ctx, store, dir, file, "h", now))

	stillOpen := func(id identifier.ID) bool { return id == file.ID }
	require.NoError(t, Unlink(ctx, store, dir, file, "h", stillOpen, now))

	// The FCB record is still readable while a handle is open.
	loaded, err := Read(ctx, store, file.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, loaded.Nlink)
}

func TestRemoveDeletesBlocksAndRecord(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Unix(0, 0)

	file, err := CreateFile(ctx, store, 0644, 0, 0, now)
	require.NoError(t, err)
	require.NoError(t, block.WriteData(ctx, store, file, []byte("payload"), 0, now))

	require.NoError(t, Remove(ctx, store, file))

	_, err = store.Fetch(ctx, file.ID)
	require.Error(t, err)
	_, err = store.Fetch(ctx, file.Data)
	require.Error(t, err)
}

func TestDirectoryIsAlsoAnFCBWithFileContent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Unix(0, 0)

	dir, err := CreateDirectory(ctx, store, 0755, 0, 0, now)
	require.NoError(t, err)
	// A fresh directory's size equals just the serialized header.
	require.EqualValues(t, 8, dir.Size)
	require.Equal(t, fcb.TypeDir, dir.Mode&fcb.TypeMask)
}
