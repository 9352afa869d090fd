package kvfserrors

import "golang.org/x/sys/unix"

// ToErrno maps a Kind to the POSIX errno the gateway reports to the host
// kernel (spec.md §7). This translation happens only at the mount
// boundary; every other component keeps returning the richer *Error.
func (k Kind) ToErrno() unix.Errno {
	switch k {
	case KindNoEntry:
		return unix.ENOENT
	case KindNoAccess:
		return unix.EACCES
	case KindNotPermitted:
		return unix.EPERM
	case KindExists:
		return unix.EEXIST
	case KindNotDirectory:
		return unix.ENOTDIR
	case KindNotEmpty:
		return unix.ENOTEMPTY
	case KindTooLarge:
		return unix.EFBIG
	case KindTooManyOpen:
		return unix.ENFILE
	default:
		return unix.EIO
	}
}

// ToErrno maps err to the POSIX errno the gateway reports to the host
// kernel, defaulting to EIO for anything that isn't a *Error.
func ToErrno(err error) unix.Errno {
	k, ok := KindOf(err)
	if !ok {
		return unix.EIO
	}
	return k.ToErrno()
}
