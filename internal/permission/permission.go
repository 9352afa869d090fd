// Package permission implements spec.md §2 component 4 and §4.6: given an
// FCB's owner/group/mode and a caller identity, decide read/write/execute
// and map an open-flag set to the rights it requires.
//
// Grounded on original_source/myfs_lib.c's has_permission/can_read/
// can_write/can_execute/check_open_flags, using golang.org/x/sys/unix's
// S_IRUSR-family constants (the teacher reaches for golang.org/x/sys/unix
// in its gateway code) instead of hand-rolled octal literals.
package permission

import "golang.org/x/sys/unix"

// User is the caller identity the host gateway supplies for a request.
type User struct {
	UID uint32
	GID uint32
}

// Owner is the subset of FCB fields permission checks need. Kept separate
// from fcb.FCB so this package does not import fcb.
type Owner struct {
	UID  uint32
	GID  uint32
	Mode uint32
}

// triad picks which rwx bits apply: owner bits if the caller is the owner,
// else group bits if the caller is in the owning group, else other bits
// (spec.md §4.6 "first matching rule").
func triad(o Owner, u User) (r, w, x uint32) {
	switch {
	case o.UID == u.UID:
		return unix.S_IRUSR, unix.S_IWUSR, unix.S_IXUSR
	case o.GID == u.GID:
		return unix.S_IRGRP, unix.S_IWGRP, unix.S_IXGRP
	default:
		return unix.S_IROTH, unix.S_IWOTH, unix.S_IXOTH
	}
}

// CanRead reports whether u may read o.
func CanRead(o Owner, u User) bool {
	r, _, _ := triad(o, u)
	return o.Mode&r == r
}

// CanWrite reports whether u may write o.
func CanWrite(o Owner, u User) bool {
	_, w, _ := triad(o, u)
	return o.Mode&w == w
}

// CanExecute reports whether u may execute/traverse o.
func CanExecute(o Owner, u User) bool {
	_, _, x := triad(o, u)
	return o.Mode&x == x
}

// Open-flag bits, mirroring the POSIX constants the gateway receives from
// the host (spec.md §4.6 "Open-flag mapping").
const (
	ORDONLY = 0
	OWRONLY = 1
	ORDWR   = 2
)

// CheckOpenFlags reports whether u holds the rights the given open-flag
// accessmode requires: O_RDWR needs read&&write, O_WRONLY needs write,
// anything else (including O_RDONLY, which is zero) needs read.
func CheckOpenFlags(o Owner, u User, accessMode int) bool {
	switch accessMode {
	case ORDWR:
		return CanRead(o, u) && CanWrite(o, u)
	case OWRONLY:
		return CanWrite(o, u)
	default:
		return CanRead(o, u)
	}
}

// IsOwner reports whether u owns o. chmod is restricted to the owner
// (spec.md §4.6 "Ownership policy"); chown has no further core-level
// restriction.
func IsOwner(o Owner, u User) bool {
	return o.UID == u.UID
}
