// Package fcblifecycle implements spec.md §2 component 7: create/update/
// read/delete of files and directories, nlink bookkeeping on link/unlink,
// and the deferred-delete rule for unlinked-but-open files.
//
// Grounded on original_source/myfs_lib.c's create_file/create_directory/
// read_file/update_file/add_dir_entry/remove_dir_entry, with the
// root-never-garbage-collected exception of spec.md §4.4.
package fcblifecycle

import (
	"context"
	"time"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/directory"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/kvstore"
)

func create(ctx context.Context, store kvstore.Store, typeBit, mode uint32, uid, gid uint32, now time.Time) (*fcb.FCB, error) {
	dataID, err := block.NewIndex(ctx, store)
	if err != nil {
		return nil, err
	}

	f := &fcb.FCB{
		ID:    identifier.New(),
		Data:  dataID,
		Mode:  (mode &^ fcb.TypeMask) | typeBit,
		UID:   uid,
		GID:   gid,
		Nlink: 0,
		Size:  0,
		Atime: now.Unix(),
		Mtime: now.Unix(),
		Ctime: now.Unix(),
	}

	if err := Update(ctx, store, f); err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFile mints a new regular-file FCB with an empty index block
// (spec.md §4.4 create_file).
func CreateFile(ctx context.Context, store kvstore.Store, mode uint32, uid, gid uint32, now time.Time) (*fcb.FCB, error) {
	return create(ctx, store, fcb.TypeRegular, mode, uid, gid, now)
}

// CreateDirectory mints a new directory FCB and writes its initial
// {items: 0, first_free: -1} header as content (spec.md §4.4
// create_directory).
func CreateDirectory(ctx context.Context, store kvstore.Store, mode uint32, uid, gid uint32, now time.Time) (*fcb.FCB, error) {
	d, err := create(ctx, store, fcb.TypeDir, mode, uid, gid, now)
	if err != nil {
		return nil, err
	}

	if err := block.WriteData(ctx, store, d, directory.InitialContent(), 0, now); err != nil {
		return nil, err
	}
	return d, nil
}

// InitRoot creates the root directory FCB with nlink forced to 1 so it is
// never garbage-collected (spec.md §4.4 "Root exception").
func InitRoot(ctx context.Context, store kvstore.Store, mode uint32, now time.Time) (*fcb.FCB, error) {
	root, err := CreateDirectory(ctx, store, mode, 0, 0, now)
	if err != nil {
		return nil, err
	}
	root.Nlink = 1
	if err := Update(ctx, store, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Update persists f. Time fields are the caller's responsibility (spec.md
// §4.4 update).
func Update(ctx context.Context, store kvstore.Store, f *fcb.FCB) error {
	if err := store.Store(ctx, f.ID, fcb.Encode(f)); err != nil {
		return kvfserrors.Wrap("fcblifecycle.Update", kvfserrors.KindInternal, err)
	}
	return nil
}

// Read loads the FCB stored at id, failing with KindNoEntry if absent
// (spec.md §4.4 read).
func Read(ctx context.Context, store kvstore.Store, id identifier.ID) (*fcb.FCB, error) {
	raw, err := store.Fetch(ctx, id)
	if err != nil {
		if kvfserrors.Is(err, kvfserrors.KindNoEntry) {
			return nil, err
		}
		return nil, kvfserrors.Wrap("fcblifecycle.Read", kvfserrors.KindInternal, err)
	}

	f, err := fcb.Decode(raw)
	if err != nil {
		return nil, kvfserrors.Wrap("fcblifecycle.Read", kvfserrors.KindInternal, err)
	}
	return f, nil
}

// Remove deletes every data block, the index block, and the FCB record
// itself (spec.md §4.4 remove). The caller must already have established
// that f is not otherwise reachable (no directory entry, not open).
func Remove(ctx context.Context, store kvstore.Store, f *fcb.FCB) error {
	if err := block.RemoveAll(ctx, store, f); err != nil {
		return err
	}
	if err := store.Delete(ctx, f.ID); err != nil && !kvfserrors.Is(err, kvfserrors.KindNoEntry) {
		return kvfserrors.Wrap("fcblifecycle.Remove", kvfserrors.KindInternal, err)
	}
	return nil
}

// Link adds a directory entry for file under name within dir, then
// increments file's link count (spec.md §4.4 link).
func Link(ctx context.Context, store kvstore.Store, dir, file *fcb.FCB, name string, now time.Time) error {
	if err := directory.AddEntry(ctx, store, dir, file.ID, name, now); err != nil {
		return err
	}
	file.Nlink++
	file.Ctime = now.Unix()
	return Update(ctx, store, file)
}

// IsOpenFunc reports whether an FCB id currently has an open handle; the
// caller (internal/mount) supplies the real open-file table here so that
// fcblifecycle need not depend on it.
type IsOpenFunc func(identifier.ID) bool

// Unlink removes the directory entry for name within dir, decrements
// file's link count, and — if the count has reached zero and no handle
// keeps file open — deletes it outright (spec.md §4.4 unlink, the
// deferred-delete rule).
func Unlink(ctx context.Context, store kvstore.Store, dir, file *fcb.FCB, name string, isOpen IsOpenFunc, now time.Time) error {
	if err := directory.RemoveEntry(ctx, store, dir, name, now); err != nil {
		return err
	}

	if file.Nlink > 0 {
		file.Nlink--
		file.Ctime = now.Unix()
		if err := Update(ctx, store, file); err != nil {
			return err
		}
	}

	if file.Nlink == 0 && !isOpen(file.ID) {
		return Remove(ctx, store, file)
	}
	return nil
}
