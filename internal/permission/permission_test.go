package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriadSelection(t *testing.T) {
	owner := Owner{UID: 1000, GID: 1000, Mode: 0740}

	// Owner gets rwx (7).
	assert.True(t, CanRead(owner, User{UID: 1000, GID: 1000}))
	assert.True(t, CanWrite(owner, User{UID: 1000, GID: 1000}))
	assert.True(t, CanExecute(owner, User{UID: 1000, GID: 1000}))

	// Same group, different uid, gets r (4).
	group := User{UID: 2000, GID: 1000}
	assert.True(t, CanRead(owner, group))
	assert.False(t, CanWrite(owner, group))
	assert.False(t, CanExecute(owner, group))

	// Neither owner nor group, gets other bits (0).
	other := User{UID: 2000, GID: 2000}
	assert.False(t, CanRead(owner, other))
	assert.False(t, CanWrite(owner, other))
	assert.False(t, CanExecute(owner, other))
}

func TestCheckOpenFlags(t *testing.T) {
	owner := Owner{UID: 1, GID: 1, Mode: 0644}
	u := User{UID: 1, GID: 1}
	other := User{UID: 2, GID: 2}

	assert.True(t, CheckOpenFlags(owner, u, ORDONLY))
	assert.True(t, CheckOpenFlags(owner, u, OWRONLY))
	assert.True(t, CheckOpenFlags(owner, u, ORDWR))

	// other has r-- only: read-only ok, write modes fail.
	assert.True(t, CheckOpenFlags(owner, other, ORDONLY))
	assert.False(t, CheckOpenFlags(owner, other, OWRONLY))
	assert.False(t, CheckOpenFlags(owner, other, ORDWR))
}

func TestIsOwner(t *testing.T) {
	owner := Owner{UID: 42, GID: 1}
	assert.True(t, IsOwner(owner, User{UID: 42, GID: 99}))
	assert.False(t, IsOwner(owner, User{UID: 43, GID: 1}))
}
