package block

import (
	"context"
	"time"

	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore"
)

// ReadData copies [offset, offset+len(buf)) of f's content into buf
// (spec.md §4.2 read_data). Precondition: offset+len(buf) <= f.Size.
func ReadData(ctx context.Context, store kvstore.Store, f *fcb.FCB, buf []byte, offset int64) error {
	size := int64(len(buf))
	if offset < 0 || offset+size > f.Size {
		return kvfserrors.New("block.ReadData", kvfserrors.KindInternal)
	}
	if size == 0 {
		return nil
	}

	entries, err := loadIndex(ctx, store, f.Data)
	if err != nil {
		return err
	}

	firstBlock := int(offset / BlockSize)
	lastBlock := int((offset + size - 1) / BlockSize)

	for b := firstBlock; b <= lastBlock; b++ {
		blk, err := readBlock(ctx, store, entries[b])
		if err != nil {
			return err
		}

		blockStart := int64(b) * BlockSize
		// Intersection of [offset, offset+size) with [blockStart, blockStart+BlockSize).
		srcLo := int64(0)
		if offset > blockStart {
			srcLo = offset - blockStart
		}
		srcHi := int64(BlockSize)
		if offset+size < blockStart+BlockSize {
			srcHi = offset + size - blockStart
		}

		dstOffset := blockStart + srcLo - offset
		copy(buf[dstOffset:dstOffset+(srcHi-srcLo)], blk[srcLo:srcHi])
	}

	return nil
}

// WriteData overwrites [offset, offset+len(buf)) of f's content, growing
// the file first if the write extends past its current size (spec.md §4.2
// write_data). Bytes in [0, offset) are preserved.
func WriteData(ctx context.Context, store kvstore.Store, f *fcb.FCB, buf []byte, offset int64, now time.Time) error {
	size := int64(len(buf))
	end := offset + size

	if end > f.Size {
		if err := TruncateTo(ctx, store, f, end, now); err != nil {
			return err
		}
	}

	if size == 0 {
		return nil
	}

	entries, err := loadIndex(ctx, store, f.Data)
	if err != nil {
		return err
	}

	firstBlock := int(offset / BlockSize)
	lastBlock := int((end - 1) / BlockSize)
	dirty := false

	for b := firstBlock; b <= lastBlock; b++ {
		blockStart := int64(b) * BlockSize

		dstLo := int64(0)
		if offset > blockStart {
			dstLo = offset - blockStart
		}
		dstHi := int64(BlockSize)
		if end < blockStart+BlockSize {
			dstHi = end - blockStart
		}

		var blk []byte
		if dstLo == 0 && dstHi == BlockSize {
			// Whole block is overwritten: no need to read-modify-write.
			blk = make([]byte, BlockSize)
		} else {
			blk, err = readBlock(ctx, store, entries[b])
			if err != nil {
				return err
			}
		}

		srcOffset := blockStart + dstLo - offset
		copy(blk[dstLo:dstHi], buf[srcOffset:srcOffset+(dstHi-dstLo)])

		if entries[b] == identifier.Nil {
			entries[b] = identifier.New()
			dirty = true
		}
		if err := writeBlock(ctx, store, entries[b], blk); err != nil {
			return err
		}
	}

	if dirty {
		if err := saveIndex(ctx, store, f.Data, entries); err != nil {
			return err
		}
	}

	f.Mtime = now.Unix()
	return persistFCB(ctx, store, f)
}

// TruncateTo grows or shrinks f to exactly newSize bytes (spec.md §4.2
// truncate_to). Growth zero-fills; shrinkage deletes the tail blocks.
// Fails with KindTooLarge when newSize exceeds MaxSize.
func TruncateTo(ctx context.Context, store kvstore.Store, f *fcb.FCB, newSize int64, now time.Time) error {
	if newSize > MaxSize {
		return kvfserrors.New("block.TruncateTo", kvfserrors.KindTooLarge)
	}
	if newSize < 0 {
		return kvfserrors.New("block.TruncateTo", kvfserrors.KindInternal)
	}

	entries, err := loadIndex(ctx, store, f.Data)
	if err != nil {
		return err
	}

	if newSize > f.Size && f.Size%BlockSize != 0 {
		// Bytes past the old size in its last block may still hold data from
		// before an earlier shrink; zero them so growth exposes only zeros.
		last := int(f.Size / BlockSize)
		if entries[last] != identifier.Nil {
			blk, err := readBlock(ctx, store, entries[last])
			if err != nil {
				return err
			}
			clear(blk[f.Size%BlockSize:])
			if err := writeBlock(ctx, store, entries[last], blk); err != nil {
				return err
			}
		}
	}

	oldCount := blockCount(f.Size)
	newCount := blockCount(newSize)

	if newCount < oldCount {
		// Shrink: delete the now-unreferenced tail blocks.
		for b := newCount; b < oldCount; b++ {
			if entries[b] == identifier.Nil {
				continue
			}
			_ = store.Delete(ctx, entries[b]) // tolerate already-absent tail blocks
			entries[b] = identifier.Nil
		}
	} else if newCount > oldCount {
		// Grow: allocate and zero-fill new blocks up to newCount. The final
		// new block is zero-filled in full; WriteData is responsible for
		// splicing real bytes into any partially-written block later.
		zero := make([]byte, BlockSize)
		for b := oldCount; b < newCount; b++ {
			id := identifier.New()
			if err := writeBlock(ctx, store, id, zero); err != nil {
				return err
			}
			entries[b] = id
		}
	}

	if err := saveIndex(ctx, store, f.Data, entries); err != nil {
		return err
	}

	f.Size = newSize
	f.Mtime = now.Unix()
	return persistFCB(ctx, store, f)
}

// RemoveAll deletes every data block referenced by f's index (the first
// ceil(size/BlockSize) entries) and the index block itself, leaving the
// bare FCB record for the caller to delete (spec.md §4.4 remove).
func RemoveAll(ctx context.Context, store kvstore.Store, f *fcb.FCB) error {
	entries, err := loadIndex(ctx, store, f.Data)
	if err != nil {
		return err
	}

	count := blockCount(f.Size)
	for b := 0; b < count; b++ {
		if entries[b] == identifier.Nil {
			continue
		}
		if err := store.Delete(ctx, entries[b]); err != nil && !kvfserrors.Is(err, kvfserrors.KindNoEntry) {
			return kvfserrors.Wrap("block.RemoveAll", kvfserrors.KindInternal, err)
		}
	}

	if err := store.Delete(ctx, f.Data); err != nil && !kvfserrors.Is(err, kvfserrors.KindNoEntry) {
		return kvfserrors.Wrap("block.RemoveAll", kvfserrors.KindInternal, err)
	}

	return nil
}
