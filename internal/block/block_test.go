package block

import (
	"context"
	"testing"
	"time"

	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore/memstore"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T, store *memstore.Store) *fcb.FCB {
	t.Helper()
	ctx := context.Background()
	dataID, err := NewIndex(ctx, store)
	require.NoError(t, err)
	return &fcb.FCB{ID: identifier.New(), Data: dataID, Mode: fcb.TypeRegular | 0644}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	f := newTestFile(t, store)
	now := time.Unix(1000, 0)

	require.NoError(t, WriteData(ctx, store, f, []byte("abc"), 0, now))
	require.EqualValues(t, 3, f.Size)

	buf := make([]byte, 3)
	require.NoError(t, ReadData(ctx, store, f, buf, 0))
	require.Equal(t, "abc", string(buf))
}

func TestGrowAcrossBlockBoundaryZeroFills(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	f := newTestFile(t, store)
	now := time.Unix(0, 0)

	payload := make([]byte, 20000)
	for i := range payload {
		payload[i] = 'X'
	}

	require.NoError(t, WriteData(ctx, store, f, payload, 10000, now))
	require.EqualValues(t, 30000, f.Size)

	one := make([]byte, 1)
	require.NoError(t, ReadData(ctx, store, f, one, 10000))
	require.Equal(t, byte('X'), one[0])

	require.NoError(t, ReadData(ctx, store, f, one, 0))
	require.Equal(t, byte(0), one[0])
}

func TestWritePreservesPriorBytes(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	f := newTestFile(t, store)
	now := time.Unix(0, 0)

	require.NoError(t, WriteData(ctx, store, f, []byte("0123456789"), 0, now))
	require.NoError(t, WriteData(ctx, store, f, []byte("XY"), 4, now))

	buf := make([]byte, 10)
	require.NoError(t, ReadData(ctx, store, f, buf, 0))
	require.Equal(t, "0123XY6789", string(buf))
}

func TestTruncateShrinkThenGrowZeroFillsNewTail(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	f := newTestFile(t, store)
	now := time.Unix(0, 0)

	require.NoError(t, WriteData(ctx, store, f, []byte("hello world"), 0, now))
	require.NoError(t, TruncateTo(ctx, store, f, 3, now))
	require.EqualValues(t, 3, f.Size)

	oldSize := f.Size
	require.NoError(t, TruncateTo(ctx, store, f, 100, now))

	buf := make([]byte, f.Size-oldSize)
	require.NoError(t, ReadData(ctx, store, f, buf, oldSize))
	for _, b := range buf {
		require.Equal(t, byte(0), b)
	}
}

func TestTruncateTooLarge(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	f := newTestFile(t, store)

	err := TruncateTo(ctx, store, f, MaxSize+1, time.Unix(0, 0))
	require.Error(t, err)
}

func TestRemoveAllDeletesBlocksAndIndex(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	f := newTestFile(t, store)
	now := time.Unix(0, 0)

	require.NoError(t, WriteData(ctx, store, f, make([]byte, 40000), 0, now))
	require.NoError(t, RemoveAll(ctx, store, f))

	exists, err := store.Exists(ctx, f.Data)
	require.NoError(t, err)
	require.False(t, exists)
}
