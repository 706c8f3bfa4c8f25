package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/simplefs/disk"
)

func newTestShell(t *testing.T, script string) (*shell, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.sfs")
	d, err := disk.Open(path, 20)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	var out bytes.Buffer
	return newShell(d, strings.NewReader(script), &out), &out
}

func TestShellFormatMountCreateStat(t *testing.T) {
	s, out := newTestShell(t, "format\nmount\ncreate\nstat 0\nexit\n")
	s.run()

	output := out.String()
	assert.Contains(t, output, "disk formatted.")
	assert.Contains(t, output, "disk mounted.")
	assert.Contains(t, output, "created inode 0.")
	assert.Contains(t, output, "inode 0 has size 0 bytes.")
}

func TestShellUnknownCommandReportsHelp(t *testing.T) {
	s, out := newTestShell(t, "bogus\nexit\n")
	s.run()

	output := out.String()
	assert.Contains(t, output, "Unknown command: bogus")
	assert.Contains(t, output, "Type 'help' for a list of commands.")
}

func TestShellCopyinCopyoutRoundTrips(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("hello from the shell\n"), 0o600))
	dstPath := filepath.Join(t.TempDir(), "dst.txt")

	script := "format\nmount\ncreate\ncopyin " + srcPath + " 0\ncopyout 0 " + dstPath + "\nexit\n"
	s, out := newTestShell(t, script)
	s.run()

	assert.Contains(t, out.String(), "bytes copied")

	contents, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, "hello from the shell\n", string(contents))
}

func TestShellExportImportRoundTrips(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "image.sfsz")

	s, out := newTestShell(t, "format\nmount\ncreate\nexport "+archivePath+"\nexit\n")
	s.run()
	assert.Contains(t, out.String(), "exported image to")

	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	s2, out2 := newTestShell(t, "format\nmount\nimport "+archivePath+"\ncat 0\nexit\n")
	s2.run()
	assert.Contains(t, out2.String(), "imported image from")
}
