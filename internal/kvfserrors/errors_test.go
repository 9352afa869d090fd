package kvfserrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestIsUnwrapsWrappedError(t *testing.T) {
	base := New("block.ReadData", KindNoEntry)
	wrapped := fmt.Errorf("read failed: %w", base)
	assert.True(t, Is(wrapped, KindNoEntry))
	assert.False(t, Is(wrapped, KindNoAccess))
}

func TestIsFalseForForeignError(t *testing.T) {
	assert.False(t, Is(errors.New("boom"), KindInternal))
}

func TestToErrnoMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want unix.Errno
	}{
		{KindNoEntry, unix.ENOENT},
		{KindNoAccess, unix.EACCES},
		{KindNotPermitted, unix.EPERM},
		{KindExists, unix.EEXIST},
		{KindNotDirectory, unix.ENOTDIR},
		{KindNotEmpty, unix.ENOTEMPTY},
		{KindTooLarge, unix.EFBIG},
		{KindTooManyOpen, unix.ENFILE},
		{KindInternal, unix.EIO},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToErrno(New("op", c.kind)), c.kind.String())
	}
}

func TestToErrnoForeignErrorIsEIO(t *testing.T) {
	assert.Equal(t, unix.EIO, ToErrno(errors.New("boom")))
}
