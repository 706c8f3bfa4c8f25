package simplefs

import (
	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/sfserr"
)

// Remove frees every data block owned by inumber (direct pointers, the
// indirect pointer block, and everything it points to) and clears the
// inode slot so Create can reuse it. Removing an already-invalid or
// out-of-range inode is an error; removing is not idempotent.
func (fs *FileSystem) Remove(inumber uint32) error {
	if err := fs.requireMounted(); err != nil {
		return err
	}
	if err := fs.validateInumber(inumber); err != nil {
		return err
	}

	inode, err := fs.loadInode(inumber)
	if err != nil {
		return err
	}
	if !inode.Valid {
		return sfserr.ErrInvalidInode.WithMessage("inode is not allocated")
	}

	for _, ptr := range inode.Direct {
		if ptr != 0 {
			fs.bitmap.markFree(ptr)
		}
	}

	if inode.Indirect != 0 {
		var raw [disk.BlockSize]byte
		if err := fs.disk.ReadBlock(inode.Indirect, raw[:]); err != nil {
			return err
		}
		for _, ptr := range decodeIndirectBlock(raw[:]) {
			if ptr != 0 {
				fs.bitmap.markFree(ptr)
			}
		}
		fs.bitmap.markFree(inode.Indirect)
	}

	return fs.saveInode(inumber, Inode{})
}
