// Package block implements spec.md §2 component 5, the block I/O engine:
// it maps (offset, length) read/write windows onto a fixed-size block
// array addressed through an index block, and implements grow/shrink with
// zero-fill.
//
// Grounded on the read-modify-write dirty-tracking approach of the
// teacher's gcsproxy/mutable_content.go (ReadAt/WriteAt/Truncate over a
// lease.ReadWriteLease), adapted from a single mutable byte range to the
// fixed-size, KV-addressed block array spec.md §3/§4.2 describe.
package block

import (
	"context"
	"fmt"

	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore"
)

// Geometry constants (spec.md §3, §8 "literal values").
const (
	BlockSize     = 16384
	MaxBlocks     = 65536
	MaxOpenFiles  = 1000
	MaxSize int64 = int64(BlockSize) * int64(MaxBlocks)
)

const indexEntrySize = 16
const indexBlockSize = indexEntrySize * MaxBlocks

// blockCount returns ceil(size/BlockSize), the number of index entries
// that are meaningful for a content of the given size.
func blockCount(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + BlockSize - 1) / BlockSize)
}

// encodeIndex serializes entries (len == MaxBlocks) into a fixed-length
// index block (spec.md §6 "Index block: MAX_BLOCKS × 16 bytes").
func encodeIndex(entries []identifier.ID) []byte {
	buf := make([]byte, indexBlockSize)
	for i, id := range entries {
		copy(buf[i*indexEntrySize:], id[:])
	}
	return buf
}

func decodeIndex(buf []byte) ([]identifier.ID, error) {
	if len(buf) < indexBlockSize {
		return nil, fmt.Errorf("block.decodeIndex: short index block: %d < %d", len(buf), indexBlockSize)
	}
	entries := make([]identifier.ID, MaxBlocks)
	for i := range entries {
		copy(entries[i][:], buf[i*indexEntrySize:])
	}
	return entries, nil
}

// NewIndex allocates and persists a fresh, all-empty index block, for use
// by fcblifecycle's create when minting a new FCB.
func NewIndex(ctx context.Context, store kvstore.Store) (identifier.ID, error) {
	id := identifier.New()
	entries := make([]identifier.ID, MaxBlocks)
	if err := store.Store(ctx, id, encodeIndex(entries)); err != nil {
		return identifier.Nil, kvfserrors.Wrap("block.NewIndex", kvfserrors.KindInternal, err)
	}
	return id, nil
}

func loadIndex(ctx context.Context, store kvstore.Store, dataID identifier.ID) ([]identifier.ID, error) {
	raw, err := store.Fetch(ctx, dataID)
	if err != nil {
		return nil, kvfserrors.Wrap("block.loadIndex", kvfserrors.KindInternal, err)
	}
	entries, err := decodeIndex(raw)
	if err != nil {
		return nil, kvfserrors.Wrap("block.loadIndex", kvfserrors.KindInternal, err)
	}
	return entries, nil
}

func saveIndex(ctx context.Context, store kvstore.Store, dataID identifier.ID, entries []identifier.ID) error {
	if err := store.Store(ctx, dataID, encodeIndex(entries)); err != nil {
		return kvfserrors.Wrap("block.saveIndex", kvfserrors.KindInternal, err)
	}
	return nil
}

func persistFCB(ctx context.Context, store kvstore.Store, f *fcb.FCB) error {
	if err := store.Store(ctx, f.ID, fcb.Encode(f)); err != nil {
		return kvfserrors.Wrap("block.persistFCB", kvfserrors.KindInternal, err)
	}
	return nil
}

func readBlock(ctx context.Context, store kvstore.Store, id identifier.ID) ([]byte, error) {
	if id == identifier.Nil {
		return make([]byte, BlockSize), nil
	}
	buf, err := store.Fetch(ctx, id)
	if err != nil {
		return nil, kvfserrors.Wrap("block.readBlock", kvfserrors.KindInternal, err)
	}
	if len(buf) < BlockSize {
		return nil, kvfserrors.New("block.readBlock", kvfserrors.KindInternal)
	}
	return buf, nil
}

func writeBlock(ctx context.Context, store kvstore.Store, id identifier.ID, buf []byte) error {
	if err := store.Store(ctx, id, buf); err != nil {
		return kvfserrors.Wrap("block.writeBlock", kvfserrors.KindInternal, err)
	}
	return nil
}

