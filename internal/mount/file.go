package mount

import (
	"context"
	"syscall"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/directory"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/fcblifecycle"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/permission"
)

// CreateFile implements spec.md §4.8's create row: the parent must exist
// and be writable, and the leaf name must not already exist.
func (fs *FileSystem) CreateFile(ctx context.Context, op *fuseops.CreateFileOp) (err error) {
	defer fs.track("create", &err)()

	parent, err := fs.readFCB(ctx, op.Parent)
	if err != nil {
		return err
	}
	if err := fs.checkDirAccess(ctx, parent, true); err != nil {
		return err
	}
	if _, err := directory.Lookup(ctx, fs.store, parent, op.Name); err == nil {
		return kvfserrors.New("mount.CreateFile", kvfserrors.KindExists)
	}

	caller := fs.callerOf(ctx)
	now := fs.clock.Now()
	child, err := fcblifecycle.CreateFile(ctx, fs.store, uint32(op.Mode&0777), caller.UID, caller.GID, now)
	if err != nil {
		return err
	}
	if err := fcblifecycle.Link(ctx, fs.store, parent, child, op.Name, now); err != nil {
		return err
	}

	fs.mu.Lock()
	inode := fs.assignInode(child.ID)
	handleID := fs.nextHandleID
	fs.nextHandleID++
	fs.mu.Unlock()

	openHandle, err := fs.openFiles.Add(child.ID)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	fs.fileHandles[handleID] = &fileHandle{openHandle: openHandle}
	fs.mu.Unlock()

	op.Entry.Child = inode
	op.Entry.Attributes = toAttributes(child)
	op.Handle = handleID
	return nil
}

// OpenFile implements spec.md §4.8's open row: flags map to the rights
// they require, and a successful open adds an open-file-table entry.
func (fs *FileSystem) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) (err error) {
	defer fs.track("open", &err)()

	f, err := fs.readFCB(ctx, op.Inode)
	if err != nil {
		return err
	}
	if f.IsDir() {
		return kvfserrors.New("mount.OpenFile", kvfserrors.KindNotDirectory)
	}

	caller := fs.callerOf(ctx)
	owner := permission.Owner{UID: f.UID, GID: f.GID, Mode: f.Mode}
	accessMode := accessModeOf(op)
	if !permission.CheckOpenFlags(owner, caller, accessMode) {
		return kvfserrors.New("mount.OpenFile", kvfserrors.KindNoAccess)
	}

	openHandle, err := fs.openFiles.Add(f.ID)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	handleID := fs.nextHandleID
	fs.nextHandleID++
	fs.fileHandles[handleID] = &fileHandle{openHandle: openHandle}
	fs.mu.Unlock()

	op.Handle = handleID
	return nil
}

// ReadFile implements spec.md §4.8's read row. A read starting at or past
// the file's current size returns zero bytes rather than an error
// (spec.md §8 "Boundary behaviors").
func (fs *FileSystem) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) (err error) {
	defer fs.track("read", &err)()

	f, err := fs.fcbForHandle(ctx, op.Handle)
	if err != nil {
		return err
	}

	if op.Offset >= f.Size {
		op.BytesRead = 0
		return nil
	}

	want := int64(len(op.Dst))
	if op.Offset+want > f.Size {
		want = f.Size - op.Offset
	}

	if err := block.ReadData(ctx, fs.store, f, op.Dst[:want], op.Offset); err != nil {
		return err
	}
	op.BytesRead = int(want)
	if fs.metrics != nil {
		fs.metrics.BytesRead(want)
	}
	return nil
}

// WriteFile implements spec.md §4.8's write row, including the gateway's
// own EFBIG clamp at offset == MAX_SIZE (the block engine itself rejects
// only a post-write size beyond MAX_SIZE; an at-the-ceiling offset with a
// zero-length grow would otherwise slip through).
func (fs *FileSystem) WriteFile(ctx context.Context, op *fuseops.WriteFileOp) (err error) {
	defer fs.track("write", &err)()

	if op.Offset >= block.MaxSize {
		return kvfserrors.New("mount.WriteFile", kvfserrors.KindTooLarge)
	}

	f, err := fs.fcbForHandle(ctx, op.Handle)
	if err != nil {
		return err
	}

	data := op.Data
	if op.Offset+int64(len(data)) > block.MaxSize {
		data = data[:block.MaxSize-op.Offset]
	}

	if err := block.WriteData(ctx, fs.store, f, data, op.Offset, fs.clock.Now()); err != nil {
		return err
	}
	if fs.metrics != nil {
		fs.metrics.BytesWritten(int64(len(data)))
	}
	return nil
}

// SyncFile and FlushFile are no-ops: every mutation here is already
// durably written to the KV store by the time the call that made it
// returns (spec.md §5 "commits changes incrementally").
func (fs *FileSystem) SyncFile(ctx context.Context, op *fuseops.SyncFileOp) error  { return nil }
func (fs *FileSystem) FlushFile(ctx context.Context, op *fuseops.FlushFileOp) error { return nil }

// ReleaseFileHandle implements spec.md §4.8's release row: remove the
// open-file-table entry, and if the backing file's link count is already
// zero and no other handle keeps it open, delete it for good.
func (fs *FileSystem) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) (err error) {
	defer fs.track("release", &err)()

	fs.mu.Lock()
	fh, ok := fs.fileHandles[op.Handle]
	delete(fs.fileHandles, op.Handle)
	fs.mu.Unlock()
	if !ok {
		return nil
	}

	fcbID, stillOpen, err := fs.openFiles.Remove(fh.openHandle)
	if err != nil {
		return err
	}
	if stillOpen {
		return nil
	}

	f, err := fcblifecycle.Read(ctx, fs.store, fcbID)
	if err != nil {
		if kvfserrors.Is(err, kvfserrors.KindNoEntry) {
			return nil
		}
		return err
	}
	if f.Nlink == 0 {
		return fcblifecycle.Remove(ctx, fs.store, f)
	}
	return nil
}

func (fs *FileSystem) fcbForHandle(ctx context.Context, handle fuseops.HandleID) (*fcb.FCB, error) {
	fs.mu.Lock()
	fh, ok := fs.fileHandles[handle]
	fs.mu.Unlock()
	if !ok {
		return nil, kvfserrors.New("mount.fcbForHandle", kvfserrors.KindNoEntry)
	}

	fcbID, err := fs.openFiles.Get(fh.openHandle)
	if err != nil {
		return nil, err
	}
	return fcblifecycle.Read(ctx, fs.store, fcbID)
}

// accessModeOf translates the kernel's open flags into the
// permission.ORDONLY/OWRONLY/ORDWR access-mode space (spec.md §4.6
// "Open-flag mapping").
func accessModeOf(op *fuseops.OpenFileOp) int {
	switch uint32(op.OpenFlags) & syscall.O_ACCMODE {
	case syscall.O_WRONLY:
		return permission.OWRONLY
	case syscall.O_RDWR:
		return permission.ORDWR
	default:
		return permission.ORDONLY
	}
}
