package simplefs

import (
	"log/slog"

	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/sfserr"
)

// Create allocates the first free inode slot, zeroes its size and pointer
// fields, marks it valid, and returns its inode number.
//
// Reusing a slot freed by a previous Remove must not resurrect that file's
// old size or pointers (spec §9 Open Question #3): the zeroed Inode literal
// below is what guarantees that, regardless of what garbage the slot held
// on disk from the last occupant.
func (fs *FileSystem) Create() (uint32, error) {
	if err := fs.requireMounted(); err != nil {
		return 0, err
	}

	var raw [disk.BlockSize]byte
	for blockIdx := uint32(0); blockIdx < fs.super.InodeBlocks; blockIdx++ {
		blockNum := blockIdx + 1
		if err := fs.disk.ReadBlock(blockNum, raw[:]); err != nil {
			return 0, err
		}

		for slot := 0; slot < InodesPerBlock; slot++ {
			if decodeInode(raw[:], slot).Valid {
				continue
			}

			inumber := blockIdx*InodesPerBlock + uint32(slot)
			encodeInode(raw[:], slot, Inode{Valid: true})
			if err := fs.disk.WriteBlock(blockNum, raw[:]); err != nil {
				return 0, err
			}
			return inumber, nil
		}
	}

	slog.Error("create failed: inode table is full", "inodes", fs.super.Inodes)
	return 0, sfserr.ErrInodeTableFull
}
