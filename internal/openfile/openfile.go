// Package openfile implements spec.md §2 component 9: the process-lifetime
// open-file table. Entries remember only the FCB identifier, never a
// metadata snapshot, so a handle always sees the latest size/mtime even if
// another handle mutated the file in between (spec.md §4.7 "Rationale").
//
// Grounded on the teacher's fs/handle_map.go-style fixed slot table, and on
// original_source/myfs_lib.c's open_file_table (a linear array scanned for
// a free slot on add, and by identifier equality on is_open).
package openfile

import (
	"sync"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
)

// Handle identifies a live entry in a Table. Handles are never reused while
// the slot they name is in use, but may be recycled once freed.
type Handle int

type slot struct {
	used  bool
	fcbID identifier.ID
}

// Table is the fixed-capacity open-file table of spec.md §4.7. The zero
// value is not usable; construct with New. Safe for concurrent use, though
// in practice every caller already holds the mount lock.
type Table struct {
	mu    sync.Mutex
	slots []slot
}

// New builds a Table with the default MAX_OPEN_FILES capacity.
func New() *Table {
	return NewSize(block.MaxOpenFiles)
}

// NewSize builds a Table with an explicit capacity, mainly for tests that
// want to exercise TooManyOpen without allocating a thousand slots.
func NewSize(capacity int) *Table {
	return &Table{slots: make([]slot, capacity)}
}

// Add records fcbID as open and returns the handle the gateway should hand
// back to the host, or KindTooManyOpen if every slot is in use (spec.md
// §4.7 add).
func (t *Table) Add(fcbID identifier.ID) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if !t.slots[i].used {
			t.slots[i] = slot{used: true, fcbID: fcbID}
			return Handle(i), nil
		}
	}
	return -1, kvfserrors.New("openfile.Add", kvfserrors.KindTooManyOpen)
}

// Get returns the FCB identifier a handle names. It does not itself re-read
// the FCB from the KV store — callers do that (fcblifecycle.Read) so that
// every access observes the latest metadata (spec.md §4.7 get).
func (t *Table) Get(h Handle) (identifier.ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid(h) {
		return identifier.Nil, kvfserrors.New("openfile.Get", kvfserrors.KindNoEntry)
	}
	return t.slots[h].fcbID, nil
}

// Remove marks h unused. It reports whether fcbID remains open in some
// other slot afterward; the caller (the gateway's release operation) uses
// this to decide whether an nlink==0 file may now be finally deleted.
func (t *Table) Remove(h Handle) (fcbID identifier.ID, stillOpen bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid(h) {
		return identifier.Nil, false, kvfserrors.New("openfile.Remove", kvfserrors.KindNoEntry)
	}
	fcbID = t.slots[h].fcbID
	t.slots[h] = slot{}

	for i := range t.slots {
		if t.slots[i].used && t.slots[i].fcbID == fcbID {
			return fcbID, true, nil
		}
	}
	return fcbID, false, nil
}

// IsOpen reports whether fcbID is held open in any slot (spec.md §4.7
// is_open). It satisfies fcblifecycle.IsOpenFunc.
func (t *Table) IsOpen(fcbID identifier.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.slots {
		if t.slots[i].used && t.slots[i].fcbID == fcbID {
			return true
		}
	}
	return false
}

func (t *Table) valid(h Handle) bool {
	return h >= 0 && int(h) < len(t.slots) && t.slots[h].used
}
