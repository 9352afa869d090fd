package mount

import (
	"context"
	"os"
	"time"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
	"github.com/kvfsfuse/kvfsfuse/internal/fcb"
	"github.com/kvfsfuse/kvfsfuse/internal/fcblifecycle"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
	"github.com/kvfsfuse/kvfsfuse/internal/permission"
	"github.com/kvfsfuse/kvfsfuse/internal/resolver"
)

// toAttributes translates an FCB into the attribute struct the kernel
// expects (spec.md §3 FCB fields map directly onto POSIX stat fields).
func toAttributes(f *fcb.FCB) fuseops.InodeAttributes {
	mode := os.FileMode(f.Mode & 0777)
	if f.IsDir() {
		mode |= os.ModeDir
	}
	return fuseops.InodeAttributes{
		Size:   uint64(f.Size),
		Nlink:  f.Nlink,
		Mode:   mode,
		Atime:  time.Unix(f.Atime, 0),
		Mtime:  time.Unix(f.Mtime, 0),
		Ctime:  time.Unix(f.Ctime, 0),
		Uid:    f.UID,
		Gid:    f.GID,
	}
}

// lookup resolves name within the directory at inode parent through the
// resolver, so execute permission on parent is checked exactly as in a
// path walk; in a single-lock model this is cheap enough that no dedicated
// cache is needed (spec.md §9 "Global state").
func (fs *FileSystem) lookup(ctx context.Context, parent fuseops.InodeID, name string) (*fcb.FCB, error) {
	dir, err := fs.readFCB(ctx, parent)
	if err != nil {
		return nil, err
	}
	caller := fs.callerOf(ctx)

	owner := permission.Owner{UID: dir.UID, GID: dir.GID, Mode: dir.Mode}
	if !permission.CanExecute(owner, caller) {
		return nil, kvfserrors.New("mount.lookup", kvfserrors.KindNoAccess)
	}

	res, err := resolver.Resolve(ctx, fs.store, dir, "/"+name, caller)
	if err != nil {
		return nil, err
	}
	return res.File, nil
}

// LookUpInode resolves a child name within a known parent directory
// (spec.md §4.8 getattr-adjacent traversal step).
func (fs *FileSystem) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) (err error) {
	defer fs.track("lookup", &err)()

	child, err := fs.lookup(ctx, op.Parent, op.Name)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	op.Entry.Child = fs.assignInode(child.ID)
	op.Entry.Attributes = toAttributes(child)
	return nil
}

// GetInodeAttributes implements spec.md §4.8's getattr row.
func (fs *FileSystem) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) (err error) {
	defer fs.track("getattr", &err)()

	f, err := fs.readFCB(ctx, op.Inode)
	if err != nil {
		return err
	}
	op.Attributes = toAttributes(f)
	return nil
}

// SetInodeAttributes implements the chmod/utime/truncate rows of spec.md
// §4.8: each field present in op is applied independently, in the order
// mode, size, mtime, atime. It does not change uid or gid, so chown has no
// effect here.
func (fs *FileSystem) SetInodeAttributes(ctx context.Context, op *fuseops.SetInodeAttributesOp) (err error) {
	defer fs.track("setattr", &err)()

	f, err := fs.readFCB(ctx, op.Inode)
	if err != nil {
		return err
	}
	caller := fs.callerOf(ctx)
	now := fs.clock.Now()
	dirty := false

	if op.Mode != nil {
		owner := permission.Owner{UID: f.UID, GID: f.GID, Mode: f.Mode}
		if !permission.IsOwner(owner, caller) {
			return kvfserrors.New("mount.SetInodeAttributes", kvfserrors.KindNotPermitted)
		}
		f.Mode = (f.Mode &^ 0777) | uint32(*op.Mode&0777)
		dirty = true
	}

	if op.Size != nil {
		if err := block.TruncateTo(ctx, fs.store, f, int64(*op.Size), now); err != nil {
			return err
		}
		dirty = true
	}

	if op.Mtime != nil {
		f.Mtime = op.Mtime.Unix()
		dirty = true
	}
	if op.Atime != nil {
		f.Atime = op.Atime.Unix()
		dirty = true
	}

	if dirty {
		f.Ctime = now.Unix()
		if err := fcblifecycle.Update(ctx, fs.store, f); err != nil {
			return err
		}
	}

	op.Attributes = toAttributes(f)
	return nil
}

// ForgetInode drops the kernel's reference to an inode; once its lookup
// count reaches zero the mount may recycle the InodeID. The FCB itself
// persists in the KV store regardless (spec.md §4.7's handles, not kernel
// lookups, govern deletion).
func (fs *FileSystem) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) (err error) {
	defer fs.track("forget", &err)()

	fs.mu.Lock()
	defer fs.mu.Unlock()

	count, ok := fs.lookupCount[op.Inode]
	if !ok {
		return nil
	}
	if uint64(op.N) >= count {
		delete(fs.lookupCount, op.Inode)
		if id, ok := fs.inodeToFCB[op.Inode]; ok && op.Inode != fuseops.RootInodeID {
			delete(fs.inodeToFCB, op.Inode)
			delete(fs.fcbToInode, id)
		}
		return nil
	}
	fs.lookupCount[op.Inode] = count - uint64(op.N)
	return nil
}
