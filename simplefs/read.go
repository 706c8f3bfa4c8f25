package simplefs

import (
	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/sfserr"
)

// Read copies up to len(buf) bytes of inumber's data starting at offset
// into buf and returns how many bytes were actually copied. Reading at or
// past the file's current size copies nothing and returns (0, nil): it is
// not an error to read off the end of a file, matching the original
// fs_read's behavior. Within [offset, size) a zero pointer is a fault, not
// a hole: every block in that range is always one Write has linked, so a
// zero there means the inode is corrupt, and Read reports sfserr.ErrMissingBlock
// rather than silently fabricating zero bytes.
func (fs *FileSystem) Read(inumber uint32, buf []byte, offset uint32) (int, error) {
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

	if offset >= inode.Size {
		return 0, nil
	}

	remaining := inode.Size - offset
	if uint32(len(buf)) < remaining {
		remaining = uint32(len(buf))
	}

	var indirectBlock *[PointersPerBlock]uint32
	copied := uint32(0)
	for copied < remaining {
		blockIndex := (offset + copied) / disk.BlockSize
		blockOffset := (offset + copied) % disk.BlockSize

		pointer, err := fs.dataPointerForRead(inode, blockIndex, &indirectBlock)
		if err != nil {
			return int(copied), err
		}

		if pointer == 0 {
			return int(copied), sfserr.ErrMissingBlock
		}

		chunk := disk.BlockSize - blockOffset
		if chunk > remaining-copied {
			chunk = remaining - copied
		}

		var raw [disk.BlockSize]byte
		if err := fs.disk.ReadBlock(pointer, raw[:]); err != nil {
			return int(copied), err
		}
		copy(buf[copied:copied+chunk], raw[blockOffset:blockOffset+chunk])

		copied += chunk
	}

	return int(copied), nil
}

// dataPointerForRead resolves the data block number for the blockIndex'th
// block of inode (0-based across direct then indirect pointers), returning
// 0 for a block that was never allocated. indirectCache is lazily filled
// the first time an indirect-range index is requested so a multi-block
// read only pays for one indirect-block fetch.
func (fs *FileSystem) dataPointerForRead(inode Inode, blockIndex uint32, indirectCache **[PointersPerBlock]uint32) (uint32, error) {
	if blockIndex < PointersPerInode {
		return inode.Direct[blockIndex], nil
	}

	if inode.Indirect == 0 {
		return 0, nil
	}

	if *indirectCache == nil {
		var raw [disk.BlockSize]byte
		if err := fs.disk.ReadBlock(inode.Indirect, raw[:]); err != nil {
			return 0, err
		}
		pointers := decodeIndirectBlock(raw[:])
		*indirectCache = &pointers
	}

	idx := blockIndex - PointersPerInode
	return (*indirectCache)[idx], nil
}
