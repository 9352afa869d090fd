package fcb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := &FCB{
		ID:    identifier.New(),
		Data:  identifier.New(),
		Mode:  TypeRegular | 0644,
		UID:   1000,
		GID:   1000,
		Nlink: 1,
		Size:  12345,
		Atime: 1000,
		Mtime: 1060,
		Ctime: 1060,
	}

	buf := Encode(f)
	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestIsDirAndIsRegular(t *testing.T) {
	dir := &FCB{Mode: TypeDir | 0755}
	assert.True(t, dir.IsDir())
	assert.False(t, dir.IsRegular())

	file := &FCB{Mode: TypeRegular | 0644}
	assert.True(t, file.IsRegular())
	assert.False(t, file.IsDir())
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, err := Decode(make([]byte, recordSize-1))
	assert.Error(t, err)
}
