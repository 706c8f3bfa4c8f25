package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dargueta/simplefs/compression"
	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/simplefs"
)

// copyChunkSize is the buffer size used when streaming a file into or out
// of an inode, matching the shell's original 4*BUFSIZ-ish batching.
const copyChunkSize = 4096

// shell runs the interactive sfs> command loop: format, mount, debug, and
// the per-inode create/remove/stat/cat/copyin/copyout commands.
type shell struct {
	disk *disk.Disk
	fs   simplefs.FileSystem
	in   *bufio.Scanner
	out  io.Writer
}

func newShell(d *disk.Disk, in io.Reader, out io.Writer) *shell {
	return &shell{disk: d, in: bufio.NewScanner(in), out: out}
}

func (s *shell) run() {
	for {
		fmt.Fprint(os.Stderr, "sfs> ")
		if !s.in.Scan() {
			break
		}

		fields := strings.Fields(s.in.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		slog.Info("dispatching shell command", slog.Group("disk", attrsToAny(s.disk.LogFields())...), "command", cmd, "args", args)
		switch cmd {
		case "debug":
			s.doDebug(args)
		case "format":
			s.doFormat(args)
		case "mount":
			s.doMount(args)
		case "create":
			s.doCreate(args)
		case "remove":
			s.doRemove(args)
		case "stat":
			s.doStat(args)
		case "copyout":
			s.doCopyout(args)
		case "cat":
			s.doCat(args)
		case "copyin":
			s.doCopyin(args)
		case "export":
			s.doExport(args)
		case "import":
			s.doImport(args)
		case "help":
			s.doHelp()
		case "exit", "quit":
			s.fs.Unmount()
			return
		default:
			fmt.Fprintf(s.out, "Unknown command: %s\n", cmd)
			fmt.Fprintln(s.out, "Type 'help' for a list of commands.")
		}
	}

	s.fs.Unmount()
}

func (s *shell) doDebug(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(s.out, "Usage: debug")
		return
	}
	if err := simplefs.Debug(s.disk, s.out); err != nil {
		fmt.Fprintf(s.out, "debug failed: %s\n", err)
	}
}

func (s *shell) doFormat(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(s.out, "Usage: format")
		return
	}
	if err := simplefs.Format(&s.fs, s.disk); err != nil {
		fmt.Fprintf(s.out, "format failed: %s\n", err)
		return
	}
	fmt.Fprintln(s.out, "disk formatted.")
}

func (s *shell) doMount(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(s.out, "Usage: mount")
		return
	}
	if err := simplefs.Mount(&s.fs, s.disk); err != nil {
		fmt.Fprintf(s.out, "mount failed: %s\n", err)
		return
	}
	fmt.Fprintln(s.out, "disk mounted.")
}

func (s *shell) doCreate(args []string) {
	if len(args) != 0 {
		fmt.Fprintln(s.out, "Usage: create")
		return
	}
	inumber, err := s.fs.Create()
	if err != nil {
		fmt.Fprintf(s.out, "create failed: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "created inode %d.\n", inumber)
}

func (s *shell) doRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: remove <inode>")
		return
	}
	inumber, ok := parseInode(s.out, args[0])
	if !ok {
		return
	}
	if err := s.fs.Remove(inumber); err != nil {
		fmt.Fprintf(s.out, "remove failed: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "removed inode %d.\n", inumber)
}

func (s *shell) doStat(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: stat <inode>")
		return
	}
	inumber, ok := parseInode(s.out, args[0])
	if !ok {
		return
	}
	size, err := s.fs.Stat(inumber)
	if err != nil {
		fmt.Fprintf(s.out, "stat failed: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "inode %d has size %d bytes.\n", inumber, size)
}

func (s *shell) doCopyout(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: copyout <inode> <file>")
		return
	}
	inumber, ok := parseInode(s.out, args[0])
	if !ok {
		return
	}
	if err := s.copyOut(inumber, args[1]); err != nil {
		fmt.Fprintf(s.out, "copyout failed: %s\n", err)
	}
}

func (s *shell) doCat(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: cat <inode>")
		return
	}
	inumber, ok := parseInode(s.out, args[0])
	if !ok {
		return
	}
	if err := s.copyOutTo(inumber, s.out); err != nil {
		fmt.Fprintf(s.out, "cat failed: %s\n", err)
	}
}

func (s *shell) doCopyin(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: copyin <file> <inode>")
		return
	}
	inumber, ok := parseInode(s.out, args[1])
	if !ok {
		return
	}
	if err := s.copyIn(args[0], inumber); err != nil {
		fmt.Fprintf(s.out, "copyin failed: %s\n", err)
	}
}

func (s *shell) doExport(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: export <file>")
		return
	}
	if err := s.exportImage(args[0]); err != nil {
		fmt.Fprintf(s.out, "export failed: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "exported image to %s.\n", args[0])
}

func (s *shell) doImport(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: import <file>")
		return
	}
	if err := s.importImage(args[0]); err != nil {
		fmt.Fprintf(s.out, "import failed: %s\n", err)
		return
	}
	fmt.Fprintf(s.out, "imported image from %s.\n", args[0])
}

func (s *shell) doHelp() {
	fmt.Fprintln(s.out, "Commands are:")
	fmt.Fprintln(s.out, "    format")
	fmt.Fprintln(s.out, "    mount")
	fmt.Fprintln(s.out, "    debug")
	fmt.Fprintln(s.out, "    create")
	fmt.Fprintln(s.out, "    remove  <inode>")
	fmt.Fprintln(s.out, "    cat     <inode>")
	fmt.Fprintln(s.out, "    stat    <inode>")
	fmt.Fprintln(s.out, "    copyin  <file> <inode>")
	fmt.Fprintln(s.out, "    copyout <inode> <file>")
	fmt.Fprintln(s.out, "    export  <file>")
	fmt.Fprintln(s.out, "    import  <file>")
	fmt.Fprintln(s.out, "    help")
	fmt.Fprintln(s.out, "    quit")
	fmt.Fprintln(s.out, "    exit")
}

// exportImage writes an RLE8+gzip compressed copy of the mounted device to
// path, the same pipeline the disko project used to keep its own test
// fixture images small, applied here directly against the live device.
func (s *shell) exportImage(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = compression.CompressDisk(s.disk, f)
	return err
}

// importImage decompresses a file produced by exportImage and overwrites
// every block of the mounted device with its contents. The decompressed
// image must be exactly as large as the current device.
func (s *shell) importImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return compression.DecompressToDisk(f, s.disk)
}

func (s *shell) copyIn(path string, inumber uint32) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buffer := make([]byte, copyChunkSize)
	offset := uint32(0)
	for {
		n, readErr := f.Read(buffer)
		if n > 0 {
			written, writeErr := s.fs.Write(inumber, buffer[:n], offset)
			offset += uint32(written)
			if writeErr != nil {
				fmt.Fprintf(s.out, "%d bytes copied\n", offset)
				return writeErr
			}
			if written != n {
				fmt.Fprintf(s.out, "%d bytes copied\n", offset)
				return nil
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fmt.Fprintf(s.out, "%d bytes copied\n", offset)
			return readErr
		}
	}

	fmt.Fprintf(s.out, "%d bytes copied\n", offset)
	return nil
}

func (s *shell) copyOut(inumber uint32, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.copyOutTo(inumber, f)
}

func (s *shell) copyOutTo(inumber uint32, dst io.Writer) error {
	buffer := make([]byte, copyChunkSize)
	offset := uint32(0)
	for {
		n, err := s.fs.Read(inumber, buffer, offset)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := dst.Write(buffer[:n]); err != nil {
			return err
		}
		offset += uint32(n)
	}
}

// attrsToAny adapts a []slog.Attr to the ...any slog.Group expects.
func attrsToAny(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

func parseInode(out io.Writer, s string) (uint32, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		fmt.Fprintf(out, "invalid inode number: %s\n", s)
		return 0, false
	}
	return uint32(n), true
}
