package mount

import (
	"context"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/kvfsfuse/kvfsfuse/internal/directory"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/fcblifecycle"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/permission"
)

// openDirHandle additionally snapshots the directory's entries at open
// time (spec.md's directory engine has no cursor concept of its own, so
// the gateway takes its own consistent listing for one ReadDir sequence,
// same as the teacher's dirHandle.entries snapshot in fs/dir_handle.go).
type openDirHandle struct {
	inode   fuseops.InodeID
	entries []directory.Entry
}

func (fs *FileSystem) checkDirAccess(ctx context.Context, f *fcb.FCB, wantWrite bool) error {
	if !f.IsDir() {
		return kvfserrors.New("mount.checkDirAccess", kvfserrors.KindNotDirectory)
	}
	caller := fs.callerOf(ctx)
	owner := permission.Owner{UID: f.UID, GID: f.GID, Mode: f.Mode}
	if !permission.CanExecute(owner, caller) {
		return kvfserrors.New("mount.checkDirAccess", kvfserrors.KindNoAccess)
	}
	if wantWrite && !permission.CanWrite(owner, caller) {
		return kvfserrors.New("mount.checkDirAccess", kvfserrors.KindNoAccess)
	}
	return nil
}

// MkDir implements spec.md §4.8's mkdir row.
func (fs *FileSystem) MkDir(ctx context.Context, op *fuseops.MkDirOp) (err error) {
	defer fs.track("mkdir", &err)()

	parent, err := fs.readFCB(ctx, op.Parent)
	if err != nil {
		return err
	}
	if err := fs.checkDirAccess(ctx, parent, true); err != nil {
		return err
	}
	if _, err := directory.Lookup(ctx, fs.store, parent, op.Name); err == nil {
		return kvfserrors.New("mount.MkDir", kvfserrors.KindExists)
	}

	caller := fs.callerOf(ctx)
	now := fs.clock.Now()
	child, err := fcblifecycle.CreateDirectory(ctx, fs.store, uint32(op.Mode&0777), caller.UID, caller.GID, now)
	if err != nil {
		return err
	}
	if err := fcblifecycle.Link(ctx, fs.store, parent, child, op.Name, now); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	op.Entry.Child = fs.assignInode(child.ID)
	op.Entry.Attributes = toAttributes(child)
	return nil
}

// RmDir implements spec.md §4.8's rmdir row: target must exist, be a
// directory, and be empty.
func (fs *FileSystem) RmDir(ctx context.Context, op *fuseops.RmDirOp) (err error) {
	defer fs.track("rmdir", &err)()

	parent, err := fs.readFCB(ctx, op.Parent)
	if err != nil {
		return err
	}
	if err := fs.checkDirAccess(ctx, parent, true); err != nil {
		return err
	}

	entry, err := directory.Lookup(ctx, fs.store, parent, op.Name)
	if err != nil {
		return err
	}
	child, err := fcblifecycle.Read(ctx, fs.store, entry.FCBID)
	if err != nil {
		return err
	}
	if !child.IsDir() {
		return kvfserrors.New("mount.RmDir", kvfserrors.KindNotDirectory)
	}
	empty, err := directory.IsEmpty(ctx, fs.store, child)
	if err != nil {
		return err
	}
	if !empty {
		return kvfserrors.New("mount.RmDir", kvfserrors.KindNotEmpty)
	}

	now := fs.clock.Now()
	return fcblifecycle.Unlink(ctx, fs.store, parent, child, op.Name, fs.isOpen, now)
}

// OpenDir implements spec.md §4.8's opendir row, snapshotting the
// directory's current entries for this handle's lifetime.
func (fs *FileSystem) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) (err error) {
	defer fs.track("opendir", &err)()

	f, err := fs.readFCB(ctx, op.Inode)
	if err != nil {
		return err
	}
	if err := fs.checkDirAccess(ctx, f, false); err != nil {
		return err
	}
	entries, err := directory.Iterate(ctx, fs.store, f)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	handleID := fs.nextHandleID
	fs.nextHandleID++
	fs.dirHandles[handleID] = &openDirHandle{inode: op.Inode, entries: entries}
	op.Handle = handleID
	return nil
}

// ReadDir implements spec.md §4.8's readdir row, serving from the
// snapshot OpenDir took.
func (fs *FileSystem) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) (err error) {
	defer fs.track("readdir", &err)()

	fs.mu.Lock()
	dh, ok := fs.dirHandles[op.Handle]
	fs.mu.Unlock()
	if !ok {
		return kvfserrors.New("mount.ReadDir", kvfserrors.KindNoEntry)
	}

	index := int(op.Offset)
	for index < len(dh.entries) {
		e := dh.entries[index]
		child, err := fcblifecycle.Read(ctx, fs.store, e.FCBID)
		if err != nil {
			return err
		}

		fs.mu.Lock()
		inode := fs.assignInode(e.FCBID)
		fs.mu.Unlock()

		dirent := fuseutil.Dirent{
			Offset: fuseops.DirOffset(index + 1),
			Inode:  inode,
			Name:   e.Name,
			Type:   direntType(child),
		}
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], dirent)
		if n == 0 {
			break
		}
		op.BytesRead += n
		index++
	}
	return nil
}

func direntType(f *fcb.FCB) fuseutil.DirentType {
	if f.IsDir() {
		return fuseutil.DT_Directory
	}
	return fuseutil.DT_File
}

// ReleaseDirHandle implements spec.md §4.8's release row for directory
// handles: there is no corresponding open-file-table entry to retire
// since directories are never tracked there (spec.md §4.7 covers regular
// files opened for I/O).
func (fs *FileSystem) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) (err error) {
	defer fs.track("releasedir", &err)()

	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.dirHandles, op.Handle)
	return nil
}
