package mount

import (
	"context"

	"github.com/jacobsa/fuse/fuseops"
	"golang.org/x/sys/unix"

	"github.com/kvfsfuse/kvfsfuse/internal/block"
)

// The operations in this file implement spec.md §1's explicit Non-goals
// (symlinks, xattrs, device nodes) and the handful of fuseutil.FileSystem
// methods the core has no use for. Each except StatFS reports ENOSYS
// rather than panicking, so an otherwise-compliant mount degrades
// gracefully if the kernel probes for this functionality; StatFS reports
// the block geometry with no free blocks.

func (fs *FileSystem) MkNode(ctx context.Context, op *fuseops.MkNodeOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) CreateSymlink(ctx context.Context, op *fuseops.CreateSymlinkOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) GetXattr(ctx context.Context, op *fuseops.GetXattrOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) ListXattr(ctx context.Context, op *fuseops.ListXattrOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) SetXattr(ctx context.Context, op *fuseops.SetXattrOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) RemoveXattr(ctx context.Context, op *fuseops.RemoveXattrOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) Fallocate(ctx context.Context, op *fuseops.FallocateOp) error {
	return unix.ENOSYS
}

func (fs *FileSystem) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	op.Blocks = block.MaxBlocks
	op.BlocksFree = 0
	op.BlocksAvailable = 0
	op.IoSize = block.BlockSize
	return nil
}
