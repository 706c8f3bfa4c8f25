package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/dargueta/simplefs/disk"
	"github.com/dargueta/simplefs/geometry"
)

func main() {
	app := cli.App{
		Name:      "sfssh",
		Usage:     "Interactive shell for SimpleFS disk images",
		ArgsUsage: "DISKFILE NBLOCKS-OR-PRESET",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("Usage: sfssh <diskfile> <nblocks-or-preset>\n"+presetUsageLines(), 1)
	}

	path := c.Args().Get(0)
	blocks, err := resolveBlockCount(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	d, err := disk.Open(path, blocks)
	if err != nil {
		return cli.Exit("cannot open "+path+": "+err.Error(), 1)
	}
	defer d.Close()

	shell := newShell(d, os.Stdin, os.Stdout)
	shell.run()
	return nil
}

// resolveBlockCount accepts either a raw decimal block count or the slug of
// a named preset from the geometry package, so an operator can write
// "sfssh image.bin floppy" instead of computing a raw block count by hand.
func resolveBlockCount(arg string) (uint32, error) {
	if n, err := strconv.ParseUint(arg, 10, 32); err == nil && n > 0 {
		return uint32(n), nil
	}

	preset, err := geometry.Get(arg)
	if err != nil {
		return 0, errors.New("nblocks must be a positive integer or a known geometry preset slug")
	}
	return preset.Blocks, nil
}

// presetUsageLines lists every known geometry preset, shown alongside the
// usage error so an operator who mistypes a slug can see what's available.
func presetUsageLines() string {
	lines := "Known presets:"
	for _, preset := range geometry.All() {
		lines += fmt.Sprintf("\n  %-12s %-20s %d blocks", preset.Slug, preset.Name, preset.Blocks)
	}
	return lines
}
