package simplefs

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/dargueta/simplefs/disk"
)

// MagicNumber identifies a SimpleFS image. It is written to the first four
// bytes of block 0 by Format and checked by Mount.
const MagicNumber = 0xf0f03410

// InodesPerBlock is the number of fixed-size inode records packed into a
// single inode-table block.
const InodesPerBlock = 128

// PointersPerInode is the number of direct data-block pointers carried
// directly inside an inode.
const PointersPerInode = 5

// PointersPerBlock is the number of 32-bit data-block indices that fit in a
// single indirect pointer block.
const PointersPerBlock = 1024

// inodeSize is the on-disk size, in bytes, of one Inode record: valid (4) +
// size (4) + 5 direct pointers (20) + indirect pointer (4).
const inodeSize = 4 + 4 + PointersPerInode*4 + 4

// Superblock is the decoded form of block 0. byteOrder is fixed at
// little-endian for this module: per the spec this is a host-order image,
// and a single explicit order keeps the codec deterministic across hosts of
// either endianness.
type Superblock struct {
	MagicNumber uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

var byteOrder = binary.LittleEndian

// encodeSuperblock renders sb into a fresh, zero-filled block buffer. The
// bytes beyond the four header fields are left at zero, matching the
// "remainder unused" layout from the on-disk format.
func encodeSuperblock(sb Superblock) [disk.BlockSize]byte {
	var block [disk.BlockSize]byte
	writer := bytewriter.New(block[:16])
	binary.Write(writer, byteOrder, sb.MagicNumber)
	binary.Write(writer, byteOrder, sb.Blocks)
	binary.Write(writer, byteOrder, sb.InodeBlocks)
	binary.Write(writer, byteOrder, sb.Inodes)
	return block
}

// decodeSuperblock interprets the first 16 bytes of block as a Superblock.
func decodeSuperblock(block []byte) Superblock {
	return Superblock{
		MagicNumber: byteOrder.Uint32(block[0:4]),
		Blocks:      byteOrder.Uint32(block[4:8]),
		InodeBlocks: byteOrder.Uint32(block[8:12]),
		Inodes:      byteOrder.Uint32(block[12:16]),
	}
}

// Inode is the decoded form of one 32-byte on-disk inode record.
type Inode struct {
	Valid    bool
	Size     uint32
	Direct   [PointersPerInode]uint32
	Indirect uint32
}

// inodeOffset returns the byte offset of inode slot within an inode-table
// block.
func inodeOffset(slot int) int {
	return slot * inodeSize
}

// decodeInode reads the inode at the given slot out of a raw inode-table
// block.
func decodeInode(block []byte, slot int) Inode {
	off := inodeOffset(slot)
	var inode Inode
	inode.Valid = byteOrder.Uint32(block[off:off+4]) != 0
	inode.Size = byteOrder.Uint32(block[off+4 : off+8])
	for i := 0; i < PointersPerInode; i++ {
		start := off + 8 + i*4
		inode.Direct[i] = byteOrder.Uint32(block[start : start+4])
	}
	indirectOff := off + 8 + PointersPerInode*4
	inode.Indirect = byteOrder.Uint32(block[indirectOff : indirectOff+4])
	return inode
}

// encodeInode writes inode into the given slot of a raw inode-table block,
// leaving every other slot in block untouched. This is the building block
// for the read-modify-write discipline loadInode/saveInode rely on.
func encodeInode(block []byte, slot int, inode Inode) {
	off := inodeOffset(slot)
	writer := bytewriter.New(block[off : off+inodeSize])

	var validWord uint32
	if inode.Valid {
		validWord = 1
	}
	binary.Write(writer, byteOrder, validWord)
	binary.Write(writer, byteOrder, inode.Size)
	for i := 0; i < PointersPerInode; i++ {
		binary.Write(writer, byteOrder, inode.Direct[i])
	}
	binary.Write(writer, byteOrder, inode.Indirect)
}

// decodeIndirectBlock interprets a raw data block as PointersPerBlock
// 32-bit data-block indices.
func decodeIndirectBlock(block []byte) [PointersPerBlock]uint32 {
	var pointers [PointersPerBlock]uint32
	for i := range pointers {
		pointers[i] = byteOrder.Uint32(block[i*4 : i*4+4])
	}
	return pointers
}

// encodeIndirectBlock serializes pointers into a fresh block buffer.
func encodeIndirectBlock(pointers [PointersPerBlock]uint32) [disk.BlockSize]byte {
	var block [disk.BlockSize]byte
	writer := bytewriter.New(block[:])
	for _, p := range pointers {
		binary.Write(writer, byteOrder, p)
	}
	return block
}

func setIndirectPointer(block []byte, slot int, value uint32) {
	byteOrder.PutUint32(block[slot*4:slot*4+4], value)
}

func getIndirectPointer(block []byte, slot int) uint32 {
	return byteOrder.Uint32(block[slot*4 : slot*4+4])
}
