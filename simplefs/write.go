package simplefs

import (
	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/sfserr"
)

// maxFileSize is the largest a file can grow: five direct blocks plus
// everything reachable through one indirect block.
const maxFileSize = uint32(PointersPerInode)*disk.BlockSize + uint32(PointersPerBlock)*disk.BlockSize

// Write copies buf into inumber's data starting at offset, allocating
// blocks on demand and growing the file's size monotonically (a write
// never shrinks a file, even when it only touches bytes before the
// current end). It returns the number of bytes actually written.
//
// If the device runs out of free blocks partway through, Write stops and
// returns the partial count with a nil error rather than rolling anything
// back: everything linked into the inode before the free-block exhaustion
// stays written. Spec §9 Open Question #2/#4 call this out explicitly —
// a partial write is not itself a failure, and the bitmap is allowed to
// stay stricter than strictly necessary (a block allocated but never
// linked is simply leaked until the next Mount rebuilds the bitmap from
// what's actually reachable).
func (fs *FileSystem) Write(inumber uint32, buf []byte, offset uint32) (int, error) {
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

	if len(buf) == 0 || offset >= maxFileSize {
		return 0, nil
	}

	end := offset + uint32(len(buf))
	if end > maxFileSize {
		end = maxFileSize
	}
	toWrite := end - offset

	var indirectBlock [disk.BlockSize]byte
	indirectLoaded := false
	indirectDirty := false

	written := uint32(0)
	for written < toWrite {
		blockIndex := (offset + written) / disk.BlockSize
		blockOffset := (offset + written) % disk.BlockSize
		chunk := uint32(disk.BlockSize) - blockOffset
		if chunk > toWrite-written {
			chunk = toWrite - written
		}

		var pointer uint32
		var allocErr error

		if blockIndex < PointersPerInode {
			pointer = inode.Direct[blockIndex]
			if pointer == 0 {
				pointer, allocErr = fs.bitmap.Allocate()
				if allocErr == nil {
					inode.Direct[blockIndex] = pointer
				}
			}
		} else {
			if !indirectLoaded {
				if inode.Indirect != 0 {
					if err := fs.disk.ReadBlock(inode.Indirect, indirectBlock[:]); err != nil {
						return int(written), err
					}
				}
				indirectLoaded = true
			}

			if inode.Indirect == 0 {
				newIndirect, err := fs.bitmap.Allocate()
				if err != nil {
					allocErr = err
				} else {
					inode.Indirect = newIndirect
					indirectBlock = [disk.BlockSize]byte{}
					indirectDirty = true
				}
			}

			if allocErr == nil {
				idx := int(blockIndex - PointersPerInode)
				pointer = getIndirectPointer(indirectBlock[:], idx)
				if pointer == 0 {
					pointer, allocErr = fs.bitmap.Allocate()
					if allocErr == nil {
						setIndirectPointer(indirectBlock[:], idx, pointer)
						indirectDirty = true
					}
				}
			}
		}

		if allocErr != nil {
			break
		}

		var raw [disk.BlockSize]byte
		if blockOffset != 0 || chunk != disk.BlockSize {
			if err := fs.disk.ReadBlock(pointer, raw[:]); err != nil {
				return int(written), err
			}
		}
		copy(raw[blockOffset:blockOffset+chunk], buf[written:written+chunk])
		if err := fs.disk.WriteBlock(pointer, raw[:]); err != nil {
			return int(written), err
		}

		written += chunk
	}

	if offset+written > inode.Size {
		inode.Size = offset + written
	}

	if indirectDirty {
		if err := fs.disk.WriteBlock(inode.Indirect, indirectBlock[:]); err != nil {
			return int(written), err
		}
	}
	if err := fs.saveInode(inumber, inode); err != nil {
		return int(written), err
	}

	return int(written), nil
}
