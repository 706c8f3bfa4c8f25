package simplefs

import (
	"log/slog"

	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/sfserr"
)

// inodeBlockFor returns the inode-table block number and in-block slot for
// an absolute inode number.
func inodeBlockFor(inumber uint32) (block uint32, slot int) {
	return inumber/InodesPerBlock + 1, int(inumber % InodesPerBlock)
}

// requireMounted returns sfserr.ErrNotMounted if fs has no disk attached.
func (fs *FileSystem) requireMounted() error {
	if fs.disk == nil {
		slog.Error("operation attempted on an unmounted filesystem")
		return sfserr.ErrNotMounted
	}
	return nil
}

// validateInumber checks inumber is within [0, fs.super.Inodes).
func (fs *FileSystem) validateInumber(inumber uint32) error {
	if inumber >= fs.super.Inodes {
		slog.Error("inode number out of range", "inumber", inumber, "inodes", fs.super.Inodes)
		return sfserr.ErrInvalidInode
	}
	return nil
}

// loadInode reads and decodes the inode at inumber. The caller must have
// already confirmed fs is mounted and inumber is in range.
func (fs *FileSystem) loadInode(inumber uint32) (Inode, error) {
	blockNum, slot := inodeBlockFor(inumber)
	var raw [disk.BlockSize]byte
	if err := fs.disk.ReadBlock(blockNum, raw[:]); err != nil {
		return Inode{}, err
	}
	return decodeInode(raw[:], slot), nil
}

// saveInode is the read-modify-write primitive every mutating operation
// funnels through: it reads the inode's home block, overwrites just the
// target slot, and writes the block back so sibling inodes in the same
// block are preserved.
func (fs *FileSystem) saveInode(inumber uint32, inode Inode) error {
	blockNum, slot := inodeBlockFor(inumber)
	var raw [disk.BlockSize]byte
	if err := fs.disk.ReadBlock(blockNum, raw[:]); err != nil {
		return err
	}
	encodeInode(raw[:], slot, inode)
	return fs.disk.WriteBlock(blockNum, raw[:])
}

// Stat returns the logical size in bytes of the file stored at inumber.
func (fs *FileSystem) Stat(inumber uint32) (uint32, error) {
	if err := fs.requireMounted(); err != nil {
		return 0, err
	}
	if err := fs.validateInumber(inumber); err != nil {
		return 0, err
	}

	inode, err := fs.loadInode(inumber)
	if err != nil {
		return 0, err
	}
	if !inode.Valid {
		return 0, sfserr.ErrInvalidInode.WithMessage("inode is not allocated")
	}
	return inode.Size, nil
}
