package mount

import (
	"context"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/kvfsfuse/kvfsfuse/internal/directory"
	"github.com/kvfsfuse/kvfsfuse/internal/fcblifecycle"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
)

// CreateLink implements spec.md §4.8's link row: the source must exist
// and not be a directory, the destination parent must be writable, and
// the destination name must not already exist.
func (fs *FileSystem) CreateLink(ctx context.Context, op *fuseops.CreateLinkOp) (err error) {
	defer fs.track("link", &err)()

	target, err := fs.readFCB(ctx, op.Target)
	if err != nil {
		return err
	}
	if target.IsDir() {
		return kvfserrors.New("mount.CreateLink", kvfserrors.KindNotPermitted)
	}

	parent, err := fs.readFCB(ctx, op.Parent)
	if err != nil {
		return err
	}
	if err := fs.checkDirAccess(ctx, parent, true); err != nil {
		return err
	}
	if _, err := directory.Lookup(ctx, fs.store, parent, op.Name); err == nil {
		return kvfserrors.New("mount.CreateLink", kvfserrors.KindExists)
	}

	if err := fcblifecycle.Link(ctx, fs.store, parent, target, op.Name, fs.clock.Now()); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	op.Entry.Child = fs.assignInode(target.ID)
	op.Entry.Attributes = toAttributes(target)
	return nil
}

// Unlink implements spec.md §4.8's unlink row: the target must exist and
// be a regular file.
func (fs *FileSystem) Unlink(ctx context.Context, op *fuseops.UnlinkOp) (err error) {
	defer fs.track("unlink", &err)()

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
	target, err := fcblifecycle.Read(ctx, fs.store, entry.FCBID)
	if err != nil {
		return err
	}
	if target.IsDir() {
		return kvfserrors.New("mount.Unlink", kvfserrors.KindNotPermitted)
	}

	return fcblifecycle.Unlink(ctx, fs.store, parent, target, op.Name, fs.isOpen, fs.clock.Now())
}

// Rename implements spec.md §4.8's rename row and the supplemented
// same-directory tie-break rule of SPEC_FULL.md: a destination that
// already exists is unlinked first, then the source entry is moved by
// removing it from the old parent and adding it to the new one. When old
// and new parents are the same directory, the two FCB reads alias to one
// in-memory copy so the remove/add pair sees a consistent free list.
func (fs *FileSystem) Rename(ctx context.Context, op *fuseops.RenameOp) (err error) {
	defer fs.track("rename", &err)()

	oldParent, err := fs.readFCB(ctx, op.OldParent)
	if err != nil {
		return err
	}
	newParent := oldParent
	if op.NewParent != op.OldParent {
		newParent, err = fs.readFCB(ctx, op.NewParent)
		if err != nil {
			return err
		}
	}
	if err := fs.checkDirAccess(ctx, oldParent, true); err != nil {
		return err
	}
	if newParent != oldParent {
		if err := fs.checkDirAccess(ctx, newParent, true); err != nil {
			return err
		}
	}

	sourceEntry, err := directory.Lookup(ctx, fs.store, oldParent, op.OldName)
	if err != nil {
		return err
	}
	source, err := fcblifecycle.Read(ctx, fs.store, sourceEntry.FCBID)
	if err != nil {
		return err
	}

	now := fs.clock.Now()

	if destEntry, err := directory.Lookup(ctx, fs.store, newParent, op.NewName); err == nil {
		dest, err := fcblifecycle.Read(ctx, fs.store, destEntry.FCBID)
		if err != nil {
			return err
		}
		if err := fcblifecycle.Unlink(ctx, fs.store, newParent, dest, op.NewName, fs.isOpen, now); err != nil {
			return err
		}
	} else if !kvfserrors.Is(err, kvfserrors.KindNoEntry) {
		return err
	}

	if err := directory.RemoveEntry(ctx, fs.store, oldParent, op.OldName, now); err != nil {
		return err
	}
	if err := directory.AddEntry(ctx, fs.store, newParent, source.ID, op.NewName, now); err != nil {
		return err
	}
	return nil
}
