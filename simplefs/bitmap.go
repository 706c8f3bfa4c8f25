package simplefs

import (
	bitmap "github.com/boljen/go-bitmap"

	"github.com/dargueta/simplefs/sfserr"
)

// freeBlockBitmap is the in-memory, per-mount record of data-block
// availability described in spec §3/§4.5. A set bit means "in use"; the
// package-level helpers below present it in terms of "free" to match the
// spec's boolean sense (true = available).
//
// It is rebuilt from the on-disk inode pointers every time the file system
// is mounted and is never itself persisted.
type freeBlockBitmap struct {
	bits  bitmap.Bitmap
	total uint32
}

// newFreeBlockBitmap allocates a bitmap of the given size with every entry
// marked free.
func newFreeBlockBitmap(total uint32) *freeBlockBitmap {
	return &freeBlockBitmap{bits: bitmap.New(int(total)), total: total}
}

// IsFree reports whether block is currently unallocated.
func (m *freeBlockBitmap) IsFree(block uint32) bool {
	return !m.bits.Get(int(block))
}

// markUsed flips block to "in use". Used while rebuilding the bitmap at
// mount time and when linking a newly allocated block into an inode.
func (m *freeBlockBitmap) markUsed(block uint32) {
	m.bits.Set(int(block), true)
}

// markFree flips block back to "available". Used by Remove.
func (m *freeBlockBitmap) markFree(block uint32) {
	m.bits.Set(int(block), false)
}

// Allocate scans for the first free block, marks it used, and returns its
// index. It returns sfserr.ErrNoFreeBlock if the bitmap is exhausted.
func (m *freeBlockBitmap) Allocate() (uint32, error) {
	for i := uint32(0); i < m.total; i++ {
		if !m.bits.Get(int(i)) {
			m.bits.Set(int(i), true)
			return i, nil
		}
	}
	return 0, sfserr.ErrNoFreeBlock
}

// CountFree returns the number of bitmap entries currently marked free.
// Used by FileSystem.FreeBlocks (which tests use to check the bitmap
// invariant) and by Mount's log record.
func (m *freeBlockBitmap) CountFree() uint32 {
	free := uint32(0)
	for i := uint32(0); i < m.total; i++ {
		if !m.bits.Get(int(i)) {
			free++
		}
	}
	return free
}
