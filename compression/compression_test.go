package compression_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	c "github.com/dargueta/simplefs/compression"
	"github.com/dargueta/simplefs/disk"
)

func newMemDisk(t *testing.T, contents []byte) *disk.Disk {
	t.Helper()
	require.Equal(t, 0, len(contents)%disk.BlockSize, "fixture must be a whole number of blocks")
	blocks := uint32(len(contents) / disk.BlockSize)
	backing := make([]byte, len(contents))
	copy(backing, contents)
	return disk.NewFromStream(bytesextra.NewReadWriteSeeker(backing), blocks)
}

func readAllBlocks(t *testing.T, d *disk.Disk) []byte {
	t.Helper()
	out := make([]byte, 0, int(d.Blocks())*disk.BlockSize)
	block := make([]byte, disk.BlockSize)
	for b := uint32(0); b < d.Blocks(); b++ {
		require.NoError(t, d.ReadBlock(b, block))
		out = append(out, block...)
	}
	return out
}

func TestRoundTripDiskCompression(t *testing.T) {
	homogenous := bytes.Repeat([]byte{100}, 3*disk.BlockSize)

	heterogenous := make([]byte, 3*disk.BlockSize)
	rand.Read(heterogenous)

	empty := make([]byte, disk.BlockSize)

	cases := map[string][]byte{
		"homogenous":   homogenous,
		"heterogenous": heterogenous,
		"empty":        empty,
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			source := newMemDisk(t, contents)

			var archive bytes.Buffer
			n, err := c.CompressDisk(source, &archive)
			require.NoError(t, err)
			t.Logf("image size after compression: %d -> %d", len(contents), n)

			dest := newMemDisk(t, make([]byte, len(contents)))
			require.NoError(t, c.DecompressToDisk(bytes.NewReader(archive.Bytes()), dest))

			assert.Equal(t, contents, readAllBlocks(t, dest))
		})
	}
}

func TestDecompressToDiskRejectsWrongSizedImage(t *testing.T) {
	source := newMemDisk(t, bytes.Repeat([]byte{1}, 2*disk.BlockSize))

	var archive bytes.Buffer
	_, err := c.CompressDisk(source, &archive)
	require.NoError(t, err)

	tooSmall := newMemDisk(t, make([]byte, disk.BlockSize))
	err = c.DecompressToDisk(bytes.NewReader(archive.Bytes()), tooSmall)
	assert.Error(t, err)
}
