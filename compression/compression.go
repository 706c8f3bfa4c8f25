package compression

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/dargueta/simplefs/disk"
)

// CompressDisk reads every block of d, in order, and writes an RLE8+gzip
// compressed copy of the whole device to output.
//
// The returned int64 gives the number of bytes written to the output stream.
// If an error occurred, this value is undefined and should not be used.
func CompressDisk(d *disk.Disk, output io.Writer) (int64, error) {
	// Because we have no way of getting the number of bytes written to the
	// output stream from an io.Writer, we need to keep track of it ourselves.
	writer := countingWriter{Writer: output}

	// Wrap the output stream in a gzip compressor using the highest
	// compression available. SimpleFS images aren't huge by modern standards
	// (mostly under 32MiB), so we won't notice much of a speed difference
	// between the default and highest levels.
	gzWriter, err := gzip.NewWriterLevel(&writer, gzip.BestCompression)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	_, rleErr := CompressRLE8(newDiskBlockReader(d), gzWriter)
	closeErr := gzWriter.Close()
	if rleErr != nil {
		return writer.BytesWritten, fmt.Errorf("RLE8 compression error: %w", rleErr)
	}
	if closeErr != nil {
		return writer.BytesWritten, fmt.Errorf("gzip compression error: %w", closeErr)
	}
	return writer.BytesWritten, nil
}

// DecompressToDisk reads a gzipped, RLE8-encoded stream produced by
// CompressDisk and writes it back onto d one block at a time. It fails if
// the decompressed data isn't exactly d.Blocks()*disk.BlockSize bytes.
func DecompressToDisk(input io.Reader, d *disk.Disk) error {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	w := newDiskBlockWriter(d)
	if _, err := DecompressRLE8(gzReader, w); err != nil {
		return fmt.Errorf("failed to decompress onto disk: %w", err)
	}
	return w.finish()
}

// countingWriter is a wrapper around [io.Writer] streams that keeps track of
// how many bytes are successfully written to the stream.
type countingWriter struct {
	// Writer is the [io.Writer] that this intercepts the writes to.
	Writer io.Writer

	// BytesWritten is the total number of bytes successfully written to [Writer].
	BytesWritten int64
}

// Write writes bytes to the underlying stream.
func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.Writer.Write(b)
	if err == nil {
		w.BytesWritten += int64(n)
	}
	return n, err
}

// diskBlockReader presents a *disk.Disk as a single sequential io.Reader,
// reading blocks 0..Blocks()-1 in order. It's what lets CompressRLE8 run
// across the whole device in one pass instead of block by block, so runs
// that straddle a block boundary still compress as one run.
type diskBlockReader struct {
	d       *disk.Disk
	next    uint32
	pending []byte
}

func newDiskBlockReader(d *disk.Disk) *diskBlockReader {
	return &diskBlockReader{d: d}
}

func (r *diskBlockReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.next >= r.d.Blocks() {
			return 0, io.EOF
		}
		block := make([]byte, disk.BlockSize)
		if err := r.d.ReadBlock(r.next, block); err != nil {
			return 0, err
		}
		r.next++
		r.pending = block
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// diskBlockWriter is the inverse of diskBlockReader: it buffers whatever
// it's given and writes a full block back to d as soon as one is ready,
// rejecting a stream that would write past the device's last block.
type diskBlockWriter struct {
	d      *disk.Disk
	next   uint32
	buffer []byte
}

func newDiskBlockWriter(d *disk.Disk) *diskBlockWriter {
	return &diskBlockWriter{d: d}
}

func (w *diskBlockWriter) Write(p []byte) (int, error) {
	w.buffer = append(w.buffer, p...)
	for len(w.buffer) >= disk.BlockSize {
		if w.next >= w.d.Blocks() {
			return 0, fmt.Errorf("decompressed image is larger than the device's %d blocks", w.d.Blocks())
		}
		if err := w.d.WriteBlock(w.next, w.buffer[:disk.BlockSize]); err != nil {
			return 0, err
		}
		w.buffer = w.buffer[disk.BlockSize:]
		w.next++
	}
	return len(p), nil
}

// finish checks the decompressed stream ended exactly on a block boundary
// and covered every block of the device, not fewer or more.
func (w *diskBlockWriter) finish() error {
	if len(w.buffer) != 0 {
		return fmt.Errorf("decompressed image is not a whole number of blocks (%d leftover bytes)", len(w.buffer))
	}
	if w.next != w.d.Blocks() {
		return fmt.Errorf("decompressed image has %d blocks, device has %d", w.next, w.d.Blocks())
	}
	return nil
}
