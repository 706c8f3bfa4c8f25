// Package disk implements the fixed-size block device SimpleFS persists
// itself inside: aligned, whole-block reads and writes over a backing file
// (or, for tests, any io.ReadWriteSeeker), with bounds checking and
// read/write counters.
package disk

import (
	"io"
	"log/slog"
	"os"

	"github.com/dargueta/simplefs/sfserr"
)

// BlockSize is the fixed size, in bytes, of every block on a SimpleFS
// device. All reads and writes are in exact multiples of this size.
const BlockSize = 4096

// Disk is a fixed-size block device backed by a stream. The zero value is
// not usable; construct one with Open or NewFromStream.
type Disk struct {
	stream io.ReadWriteSeeker
	closer io.Closer
	blocks uint32
	reads  uint64
	writes uint64
}

// Open creates or opens the backing file at path, truncates it to exactly
// blocks*BlockSize bytes, and returns a Disk ready for block I/O.
func Open(path string, blocks uint32) (*Disk, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, sfserr.ErrIO.Wrap(err)
	}

	size := int64(blocks) * BlockSize
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, sfserr.ErrIO.Wrap(err)
	}

	slog.Info("opened block device", "path", path, "blocks", blocks)
	return &Disk{stream: file, closer: file, blocks: blocks}, nil
}

// NewFromStream wraps an already-sized io.ReadWriteSeeker (e.g. an
// in-memory buffer from github.com/xaionaro-go/bytesextra) as a Disk of the
// given number of blocks. Used by tests that don't want to touch the
// filesystem.
func NewFromStream(stream io.ReadWriteSeeker, blocks uint32) *Disk {
	return &Disk{stream: stream, blocks: blocks}
}

// Close releases the underlying file, if Open created one. Closing a Disk
// built with NewFromStream is a no-op.
func (d *Disk) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

// Blocks returns the total number of blocks on the device.
func (d *Disk) Blocks() uint32 {
	if d == nil {
		return 0
	}
	return d.blocks
}

// Reads returns the number of successful ReadBlock calls made so far.
func (d *Disk) Reads() uint64 {
	if d == nil {
		return 0
	}
	return d.reads
}

// Writes returns the number of successful WriteBlock calls made so far.
func (d *Disk) Writes() uint64 {
	if d == nil {
		return 0
	}
	return d.writes
}

// LogFields returns a set of slog.Attr describing d's current state
// (block count and I/O counters), so callers can log disk activity with
// log/slog without reaching into private fields.
func (d *Disk) LogFields() []slog.Attr {
	if d == nil {
		return []slog.Attr{slog.Bool("nil", true)}
	}
	return []slog.Attr{
		slog.Int64("blocks", int64(d.blocks)),
		slog.Int64("reads", int64(d.reads)),
		slog.Int64("writes", int64(d.writes)),
	}
}

// sanityCheck verifies the disk, block index, and buffer are all usable for
// I/O, the same three checks disk_sanity_check performed in the original C
// implementation.
func (d *Disk) sanityCheck(block uint32, buf []byte) error {
	if d == nil {
		slog.Error("block I/O on a nil disk")
		return sfserr.ErrNilDisk
	}
	if block >= d.blocks {
		slog.Error("block index out of range", "block", block, "blocks", d.blocks)
		return sfserr.ErrBlockOutOfRange.WithMessage(
			indexOutOfRangeMessage(block, d.blocks))
	}
	if buf == nil {
		slog.Error("block I/O with a nil buffer")
		return sfserr.ErrNilBuffer
	}
	if len(buf) != BlockSize {
		slog.Error("block I/O with wrong buffer size", "got", len(buf), "want", BlockSize)
		return sfserr.ErrWrongBufferSize
	}
	return nil
}

// ReadBlock reads exactly BlockSize bytes from the given block index into
// buf, which must be exactly BlockSize bytes long.
func (d *Disk) ReadBlock(block uint32, buf []byte) error {
	if err := d.sanityCheck(block, buf); err != nil {
		return err
	}

	if _, err := d.stream.Seek(int64(block)*BlockSize, io.SeekStart); err != nil {
		return sfserr.ErrIO.Wrap(err)
	}

	n, err := io.ReadFull(d.stream, buf)
	if err != nil {
		return sfserr.ErrIO.Wrap(err)
	}
	if n != BlockSize {
		return sfserr.ErrIO.WithMessage("short read")
	}

	d.reads++
	return nil
}

// WriteBlock writes buf, which must be exactly BlockSize bytes long, to the
// given block index.
func (d *Disk) WriteBlock(block uint32, buf []byte) error {
	if err := d.sanityCheck(block, buf); err != nil {
		return err
	}

	if _, err := d.stream.Seek(int64(block)*BlockSize, io.SeekStart); err != nil {
		return sfserr.ErrIO.Wrap(err)
	}

	n, err := d.stream.Write(buf)
	if err != nil {
		return sfserr.ErrIO.Wrap(err)
	}
	if n != BlockSize {
		return sfserr.ErrIO.WithMessage("short write")
	}

	d.writes++
	return nil
}
