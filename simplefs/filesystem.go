// Package simplefs implements the SimpleFS on-disk layout and operations:
// the superblock, inode table, free-block bitmap, and the block allocation
// and pointer-traversal algorithms that back Create/Remove/Stat/Read/Write.
//
// A FileSystem is a single-mount handle: it owns an in-memory bitmap and
// holds a non-owning reference to the disk.Disk it's mounted on. There is
// no concurrency support; the caller must not invoke two operations on the
// same FileSystem at once.
package simplefs

import (
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/sfserr"
)

// FileSystem is a mounted (or not-yet-mounted) SimpleFS handle.
type FileSystem struct {
	disk   *disk.Disk
	bitmap *freeBlockBitmap
	super  Superblock
}

// computeInodeBlocks returns ceil(blocks/10), the number of blocks reserved
// for the inode table on a device of the given size.
func computeInodeBlocks(blocks uint32) uint32 {
	return (blocks + 9) / 10
}

// IsMounted reports whether fs currently has a disk attached.
func (fs *FileSystem) IsMounted() bool {
	return fs.disk != nil
}

// Inodes returns the total number of inode slots on the mounted device, or
// 0 if fs is not mounted.
func (fs *FileSystem) Inodes() uint32 {
	return fs.super.Inodes
}

// FreeBlocks returns the number of data blocks currently unallocated, or 0
// if fs is not mounted.
func (fs *FileSystem) FreeBlocks() uint32 {
	if fs.bitmap == nil {
		return 0
	}
	return fs.bitmap.CountFree()
}

// Format writes a fresh superblock to block 0 of d and zeroes every
// remaining block. It fails without writing anything if fs is currently
// mounted on d; formatting a disk some other handle has mounted is the
// caller's mistake to avoid (spec §4.2's note that format does not clear a
// stale mount elsewhere).
func Format(fs *FileSystem, d *disk.Disk) error {
	if fs.disk == d && d != nil {
		return sfserr.ErrAlreadyMounted.WithMessage("cannot format a disk this handle has mounted")
	}

	blocks := d.Blocks()
	inodeBlocks := computeInodeBlocks(blocks)
	sb := Superblock{
		MagicNumber: MagicNumber,
		Blocks:      blocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodeBlocks * InodesPerBlock,
	}

	superblockBlock := encodeSuperblock(sb)
	if err := d.WriteBlock(0, superblockBlock[:]); err != nil {
		return err
	}

	var zero [disk.BlockSize]byte
	var writeErrs *multierror.Error
	for b := uint32(1); b < blocks; b++ {
		if err := d.WriteBlock(b, zero[:]); err != nil {
			writeErrs = multierror.Append(writeErrs, err)
		}
	}

	if err := writeErrs.ErrorOrNil(); err != nil {
		slog.Error("format failed while zeroing data blocks", "blocks", blocks, "error", err)
		return err
	}
	slog.Info("formatted device", "blocks", blocks, "inode_blocks", inodeBlocks, "inodes", sb.Inodes)
	return nil
}

// Mount validates the superblock on d and rebuilds fs's in-memory bitmap
// from the on-disk inode pointers. On any validation failure fs is left
// completely unchanged.
func Mount(fs *FileSystem, d *disk.Disk) error {
	if fs.disk == d && d != nil {
		return sfserr.ErrAlreadyMounted
	}

	var raw [disk.BlockSize]byte
	if err := d.ReadBlock(0, raw[:]); err != nil {
		return err
	}
	sb := decodeSuperblock(raw[:])

	if sb.MagicNumber != MagicNumber {
		slog.Error("mount rejected: bad magic number", "got", sb.MagicNumber, "want", MagicNumber)
		return sfserr.ErrBadMagic
	}
	if sb.Blocks != d.Blocks() {
		slog.Error("mount rejected: block count mismatch", "superblock", sb.Blocks, "device", d.Blocks())
		return sfserr.ErrBadLayout.WithMessage("superblock block count does not match device")
	}
	if sb.InodeBlocks != computeInodeBlocks(sb.Blocks) {
		slog.Error("mount rejected: bad inode_blocks", "inode_blocks", sb.InodeBlocks)
		return sfserr.ErrBadLayout.WithMessage("superblock inode_blocks is wrong for this device size")
	}
	if sb.Inodes != sb.InodeBlocks*InodesPerBlock {
		slog.Error("mount rejected: bad inodes count", "inodes", sb.Inodes)
		return sfserr.ErrBadLayout.WithMessage("superblock inodes does not match inode_blocks*128")
	}

	bm, err := rebuildBitmap(d, sb)
	if err != nil {
		slog.Error("mount failed while rebuilding free-block bitmap", "error", err)
		return err
	}

	fs.disk = d
	fs.super = sb
	fs.bitmap = bm
	slog.Info("mounted device", "blocks", sb.Blocks, "inodes", sb.Inodes, "free_blocks", bm.CountFree())
	return nil
}

// rebuildBitmap replays every valid inode's pointers to reconstruct the
// free-block bitmap, per spec §4.3 step 4-6 (including marking indirect
// pointer blocks themselves used, not just their contents: Open Question
// #1 in spec §9).
func rebuildBitmap(d *disk.Disk, sb Superblock) (*freeBlockBitmap, error) {
	bm := newFreeBlockBitmap(sb.Blocks)
	bm.markUsed(0)
	for b := uint32(1); b <= sb.InodeBlocks; b++ {
		bm.markUsed(b)
	}

	var inodeBlock [disk.BlockSize]byte
	var indirectBlock [disk.BlockSize]byte
	for i := uint32(0); i < sb.InodeBlocks; i++ {
		if err := d.ReadBlock(i+1, inodeBlock[:]); err != nil {
			return nil, err
		}

		for slot := 0; slot < InodesPerBlock; slot++ {
			inode := decodeInode(inodeBlock[:], slot)
			if !inode.Valid {
				continue
			}

			for _, ptr := range inode.Direct {
				if ptr != 0 {
					bm.markUsed(ptr)
				}
			}

			if inode.Indirect == 0 {
				continue
			}
			bm.markUsed(inode.Indirect)

			if err := d.ReadBlock(inode.Indirect, indirectBlock[:]); err != nil {
				return nil, err
			}
			pointers := decodeIndirectBlock(indirectBlock[:])
			for _, ptr := range pointers {
				if ptr != 0 {
					bm.markUsed(ptr)
				}
			}
		}
	}

	return bm, nil
}

// Unmount releases fs's bitmap and detaches its disk reference. It is
// idempotent: calling it on an already-unmounted handle is a no-op.
func (fs *FileSystem) Unmount() {
	if fs.disk != nil {
		slog.Info("unmounted device", "blocks", fs.super.Blocks)
	}
	fs.disk = nil
	fs.bitmap = nil
	fs.super = Superblock{}
}
