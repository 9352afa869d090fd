// Package fcb defines the File Control Block, the persistent metadata
// record for one file or directory (spec.md §3 "File Control Block"), and
// its fixed-size KV wire encoding (spec.md §6 "Persisted layouts").
//
// Grounded on original_source/myfs.h's struct my_fcb, field-for-field.
package fcb

import (
	"encoding/binary"
	"fmt"

	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
)

// Type bits, matching the POSIX S_IFDIR/S_IFREG bits original_source uses
// via is_directory/is_file (myfs_lib.c).
const (
	TypeMask    uint32 = 0170000
	TypeDir     uint32 = 0040000
	TypeRegular uint32 = 0100000
)

// FCB is one file or directory's metadata record (spec.md §3).
//
// INVARIANT: Mode's type bits identify exactly one of {TypeDir, TypeRegular}.
// INVARIANT: Data always addresses a valid index block, even when Size==0.
type FCB struct {
	ID    identifier.ID // stable key for the FCB itself
	Data  identifier.ID // key of the associated index block
	Mode  uint32        // POSIX mode bits, including the type bits
	UID   uint32
	GID   uint32
	Nlink uint32 // number of directory entries pointing at this FCB
	Size  int64  // logical byte length of the associated content
	Atime int64  // seconds
	Mtime int64
	Ctime int64
}

// IsDir reports whether f is a directory.
func (f *FCB) IsDir() bool { return f.Mode&TypeMask == TypeDir }

// IsRegular reports whether f is a regular file.
func (f *FCB) IsRegular() bool { return f.Mode&TypeMask == TypeRegular }

// recordSize is the encoded length of an FCB: two 16-byte identifiers, one
// uint32 mode, two uint32 ownership fields, one uint32 nlink, and four
// int64 time/size fields.
const recordSize = 16 + 16 + 4 + 4 + 4 + 4 + 8 + 8 + 8 + 8

// Encode serializes f in the field order of spec.md §3, matching the byte
// layout §6 "Persisted layouts" requires.
func Encode(f *FCB) []byte {
	buf := make([]byte, recordSize)
	off := 0
	copy(buf[off:off+16], f.ID[:])
	off += 16
	copy(buf[off:off+16], f.Data[:])
	off += 16
	binary.LittleEndian.PutUint32(buf[off:], f.Mode)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], f.UID)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], f.GID)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], f.Nlink)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(f.Size))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(f.Atime))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(f.Mtime))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(f.Ctime))

	return buf
}

// Decode parses an FCB record previously produced by Encode.
func Decode(buf []byte) (*FCB, error) {
	if len(buf) < recordSize {
		return nil, fmt.Errorf("fcb.Decode: record too short: %d < %d", len(buf), recordSize)
	}

	f := &FCB{}
	off := 0
	copy(f.ID[:], buf[off:off+16])
	off += 16
	copy(f.Data[:], buf[off:off+16])
	off += 16
	f.Mode = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	f.UID = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	f.GID = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	f.Nlink = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	f.Size = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	f.Atime = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	f.Mtime = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	f.Ctime = int64(binary.LittleEndian.Uint64(buf[off:]))

	return f, nil
}
