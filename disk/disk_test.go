package disk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dargueta/simplefs/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newMemDisk(t *testing.T, blocks uint32) *disk.Disk {
	t.Helper()
	backing := make([]byte, int(blocks)*disk.BlockSize)
	stream := bytesextra.NewReadWriteSeeker(backing)
	return disk.NewFromStream(stream, blocks)
}

func TestOpenCreatesFileOfExactSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.sfs")
	d, err := disk.Open(path, 10)
	require.NoError(t, err)
	defer d.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 10*disk.BlockSize, info.Size())
	assert.EqualValues(t, 10, d.Blocks())
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	d := newMemDisk(t, 4)

	out := make([]byte, disk.BlockSize)
	for i := range out {
		out[i] = byte(i % 251)
	}
	require.NoError(t, d.WriteBlock(2, out))

	in := make([]byte, disk.BlockSize)
	require.NoError(t, d.ReadBlock(2, in))
	assert.Equal(t, out, in)

	assert.EqualValues(t, 1, d.Reads())
	assert.EqualValues(t, 1, d.Writes())
}

func TestReadWriteRejectNilDisk(t *testing.T) {
	var d *disk.Disk
	buf := make([]byte, disk.BlockSize)

	assert.Error(t, d.ReadBlock(0, buf))
	assert.Error(t, d.WriteBlock(0, buf))
}

func TestReadWriteRejectOutOfRangeBlock(t *testing.T) {
	d := newMemDisk(t, 4)
	buf := make([]byte, disk.BlockSize)

	assert.Error(t, d.ReadBlock(4, buf))
	assert.Error(t, d.WriteBlock(4, buf))
}

func TestReadWriteRejectWrongSizedBuffer(t *testing.T) {
	d := newMemDisk(t, 4)

	assert.Error(t, d.ReadBlock(0, nil))
	assert.Error(t, d.WriteBlock(0, make([]byte, 10)))
}

func TestCloseOnStreamBackedDiskIsNoop(t *testing.T) {
	d := newMemDisk(t, 1)
	assert.NoError(t, d.Close())
}
