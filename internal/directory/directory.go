// Package directory implements spec.md §2 component 6: directory content
// stored in-band as the owning FCB's file content, a header carrying an
// item count and free-list head plus an array of fixed-size slots, with
// O(1) free-slot recycling.
//
// Grounded on original_source/myfs.h's struct my_dir_header/my_dir_entry
// and myfs_lib.c's add_dir_entry/remove_dir_entry/iterate_dir_entries, and
// on spec.md §9 "Directory free list": the intrusive linked list stays
// in-record, a head-push/head-pop stack of i32 slot indices.
package directory

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore"
)

// MaxName is the maximum entry name length including the terminating NUL
// (spec.md §8 "literal values").
const MaxName = 256

const headerSize = 4 + 4               // items, first_free
const slotSize = MaxName + 16 + 4 + 1  // name, fcb_id, next_free, used

// Entry is one resolved (used) directory slot, as yielded by Iterate.
type Entry struct {
	Name  string
	FCBID identifier.ID
	slot  int // physical slot index, used internally by RemoveEntry
}

// InitialContent returns the bytes a freshly created directory's content
// consists of: a header with items=0, first_free=-1 (spec.md §4.4
// create_directory).
func InitialContent() []byte {
	return encodeHeader(header{Items: 0, FirstFree: -1})
}

type header struct {
	Items     int32
	FirstFree int32
}

func encodeHeader(h header) []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(h.Items))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.FirstFree))
	return buf
}

func decodeHeader(buf []byte) header {
	return header{
		Items:     int32(binary.LittleEndian.Uint32(buf[0:])),
		FirstFree: int32(binary.LittleEndian.Uint32(buf[4:])),
	}
}

type slot struct {
	Name     string
	FCBID    identifier.ID
	NextFree int32
	Used     bool
}

func encodeSlot(s slot) []byte {
	buf := make([]byte, slotSize)
	nameBytes := []byte(s.Name)
	if len(nameBytes) > MaxName-1 {
		nameBytes = nameBytes[:MaxName-1]
	}
	copy(buf[0:MaxName], nameBytes) // remainder is NUL by zero-value
	copy(buf[MaxName:MaxName+16], s.FCBID[:])
	binary.LittleEndian.PutUint32(buf[MaxName+16:], uint32(s.NextFree))
	if s.Used {
		buf[MaxName+16+4] = 1
	}
	return buf
}

func decodeSlot(buf []byte) slot {
	nameEnd := 0
	for nameEnd < MaxName && buf[nameEnd] != 0 {
		nameEnd++
	}
	s := slot{Name: string(buf[0:nameEnd])}
	copy(s.FCBID[:], buf[MaxName:MaxName+16])
	s.NextFree = int32(binary.LittleEndian.Uint32(buf[MaxName+16:]))
	s.Used = buf[MaxName+16+4] != 0
	return s
}

func slotOffset(index int) int64 {
	return int64(headerSize + index*slotSize)
}

func readHeader(ctx context.Context, store kvstore.Store, dir *fcb.FCB) (header, error) {
	buf := make([]byte, headerSize)
	if err := block.ReadData(ctx, store, dir, buf, 0); err != nil {
		return header{}, err
	}
	return decodeHeader(buf), nil
}

func writeHeader(ctx context.Context, store kvstore.Store, dir *fcb.FCB, h header, now time.Time) error {
	return block.WriteData(ctx, store, dir, encodeHeader(h), 0, now)
}

func readSlot(ctx context.Context, store kvstore.Store, dir *fcb.FCB, index int) (slot, error) {
	buf := make([]byte, slotSize)
	if err := block.ReadData(ctx, store, dir, buf, slotOffset(index)); err != nil {
		return slot{}, err
	}
	return decodeSlot(buf), nil
}

func writeSlot(ctx context.Context, store kvstore.Store, dir *fcb.FCB, index int, s slot, now time.Time) error {
	return block.WriteData(ctx, store, dir, encodeSlot(s), slotOffset(index), now)
}

// AddEntry binds name to targetID within dir, reusing a free slot in O(1)
// if one exists, else appending a new slot (spec.md §4.3 add_entry).
func AddEntry(ctx context.Context, store kvstore.Store, dir *fcb.FCB, targetID identifier.ID, name string, now time.Time) error {
	h, err := readHeader(ctx, store, dir)
	if err != nil {
		return err
	}

	s := slot{Name: name, FCBID: targetID, Used: true}

	if h.FirstFree >= 0 {
		index := int(h.FirstFree)
		free, err := readSlot(ctx, store, dir, index)
		if err != nil {
			return err
		}
		h.FirstFree = free.NextFree
		if err := writeSlot(ctx, store, dir, index, s, now); err != nil {
			return err
		}
		return writeHeader(ctx, store, dir, h, now)
	}

	index := int(h.Items)
	newSize := slotOffset(index) + slotSize
	if newSize > block.MaxSize {
		return kvfserrors.New("directory.AddEntry", kvfserrors.KindTooLarge)
	}

	if err := writeSlot(ctx, store, dir, index, s, now); err != nil {
		return err
	}
	h.Items++
	return writeHeader(ctx, store, dir, h, now)
}

// RemoveEntry unbinds name from dir, pushing its slot onto the free list
// (spec.md §4.3 remove_entry). Does not shrink the directory's byte
// length.
func RemoveEntry(ctx context.Context, store kvstore.Store, dir *fcb.FCB, name string, now time.Time) error {
	h, err := readHeader(ctx, store, dir)
	if err != nil {
		return err
	}

	for i := 0; i < int(h.Items); i++ {
		s, err := readSlot(ctx, store, dir, i)
		if err != nil {
			return err
		}
		if !s.Used || s.Name != name {
			continue
		}

		s.Used = false
		s.Name = ""
		s.FCBID = identifier.Nil
		s.NextFree = h.FirstFree
		if err := writeSlot(ctx, store, dir, i, s, now); err != nil {
			return err
		}
		h.FirstFree = int32(i)
		return writeHeader(ctx, store, dir, h, now)
	}

	return kvfserrors.New("directory.RemoveEntry", kvfserrors.KindNoEntry)
}

// Iterate returns every used slot in physical order. It loads the
// directory bytes once; the returned slice is not live and must not be
// used after dir is mutated by the same caller (spec.md §4.3 iterate,
// §9 "Iterators").
func Iterate(ctx context.Context, store kvstore.Store, dir *fcb.FCB) ([]Entry, error) {
	if dir.Size < headerSize {
		return nil, kvfserrors.New("directory.Iterate", kvfserrors.KindInternal)
	}
	raw := make([]byte, dir.Size)
	if err := block.ReadData(ctx, store, dir, raw, 0); err != nil {
		return nil, err
	}
	h := decodeHeader(raw)

	var out []Entry
	for i := 0; i < int(h.Items); i++ {
		off := slotOffset(i)
		if off+slotSize > int64(len(raw)) {
			return nil, kvfserrors.New("directory.Iterate", kvfserrors.KindInternal)
		}
		s := decodeSlot(raw[off : off+slotSize])
		if s.Used {
			out = append(out, Entry{Name: s.Name, FCBID: s.FCBID, slot: i})
		}
	}
	return out, nil
}

// Lookup returns the entry named name within dir, or KindNoEntry if there
// is none (used by the resolver, spec.md §4.5 step 4).
func Lookup(ctx context.Context, store kvstore.Store, dir *fcb.FCB, name string) (Entry, error) {
	entries, err := Iterate(ctx, store, dir)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, kvfserrors.New("directory.Lookup", kvfserrors.KindNoEntry)
}

// Size returns the count of used slots (spec.md §4.3 size).
func Size(ctx context.Context, store kvstore.Store, dir *fcb.FCB) (int, error) {
	entries, err := Iterate(ctx, store, dir)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// IsEmpty reports whether dir has zero used entries (used by rmdir).
func IsEmpty(ctx context.Context, store kvstore.Store, dir *fcb.FCB) (bool, error) {
	n, err := Size(ctx, store, dir)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
