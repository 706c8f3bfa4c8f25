package simplefs

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dargueta/simplefs/disk"
)

// Debug reads d directly — no FileSystem needs to be mounted — and writes
// a human-readable report of the superblock and every valid inode's size
// and pointers to w, while also emitting an Info-level log/slog summary of
// the same superblock fields. It's read-only and safe to run on a disk some
// other handle currently has mounted.
func Debug(d *disk.Disk, w io.Writer) error {
	var raw [disk.BlockSize]byte
	if err := d.ReadBlock(0, raw[:]); err != nil {
		return err
	}
	sb := decodeSuperblock(raw[:])

	validity := "invalid"
	if sb.MagicNumber == MagicNumber {
		validity = "valid"
	}
	slog.Info("debug dump", "magic_valid", validity == "valid", "blocks", sb.Blocks,
		"inode_blocks", sb.InodeBlocks, "inodes", sb.Inodes)

	fmt.Fprintf(w, "SuperBlock:\n")
	fmt.Fprintf(w, "    magic number is %s\n", validity)
	fmt.Fprintf(w, "    %d blocks\n", sb.Blocks)
	fmt.Fprintf(w, "    %d inode blocks\n", sb.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", sb.Inodes)

	var inodeBlock [disk.BlockSize]byte
	var indirectBlock [disk.BlockSize]byte
	for i := uint32(0); i < sb.InodeBlocks; i++ {
		if err := d.ReadBlock(i+1, inodeBlock[:]); err != nil {
			return err
		}

		for slot := 0; slot < InodesPerBlock; slot++ {
			inode := decodeInode(inodeBlock[:], slot)
			if !inode.Valid {
				continue
			}

			fmt.Fprintf(w, "\nInode %d:\n", i*InodesPerBlock+uint32(slot))
			fmt.Fprintf(w, "    size: %d bytes\n", inode.Size)
			fmt.Fprintf(w, "    direct blocks:")
			for _, ptr := range inode.Direct {
				if ptr != 0 {
					fmt.Fprintf(w, " %d", ptr)
				}
			}
			fmt.Fprintf(w, "\n")

			if inode.Indirect == 0 {
				continue
			}
			fmt.Fprintf(w, "    indirect block: %d\n", inode.Indirect)
			fmt.Fprintf(w, "    indirect data blocks:")

			if err := d.ReadBlock(inode.Indirect, indirectBlock[:]); err != nil {
				return err
			}
			for _, ptr := range decodeIndirectBlock(indirectBlock[:]) {
				if ptr != 0 {
					fmt.Fprintf(w, " %d", ptr)
				}
			}
			fmt.Fprintf(w, "\n")
		}
	}

	return nil
}
