package memstore

import (
	"context"
	"testing"

	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreFetchDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := identifier.New()

	_, err := s.Fetch(ctx, key)
	assert.True(t, kvfserrors.Is(err, kvfserrors.KindNoEntry))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Store(ctx, key, []byte("hello")))

	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := s.Fetch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Fetch(ctx, key)
	assert.True(t, kvfserrors.Is(err, kvfserrors.KindNoEntry))

	err = s.Delete(ctx, key)
	assert.True(t, kvfserrors.Is(err, kvfserrors.KindNoEntry))
}

func TestFetchReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := identifier.New()
	require.NoError(t, s.Store(ctx, key, []byte("abc")))

	v, err := s.Fetch(ctx, key)
	require.NoError(t, err)
	v[0] = 'z'

	v2, err := s.Fetch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v2)
}
