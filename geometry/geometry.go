// Package geometry holds a small table of named disk-size presets so
// callers of cmd/sfssh don't have to remember block counts by hand. It's a
// direct, working descendant of the disko project's disk-geometry lookup
// table: same embed-a-CSV-and-look-up-by-slug shape, narrowed down to just
// the one field SimpleFS images actually need, a block count.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

// Preset is one named disk-size entry from presets.csv.
type Preset struct {
	Slug   string `csv:"slug"`
	Name   string `csv:"name"`
	Blocks uint32 `csv:"blocks"`
	Notes  string `csv:"notes"`
}

//go:embed presets.csv
var rawCSV string

var presets map[string]Preset

func init() {
	presets = make(map[string]Preset)

	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Preset) error {
		if _, exists := presets[row.Slug]; exists {
			return fmt.Errorf("duplicate disk preset slug %q", row.Slug)
		}
		presets[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Get looks up a preset by slug.
func Get(slug string) (Preset, error) {
	preset, ok := presets[slug]
	if !ok {
		return Preset{}, fmt.Errorf("no disk preset named %q", slug)
	}
	return preset, nil
}

// All returns every known preset, sorted by slug.
func All() []Preset {
	result := make([]Preset, 0, len(presets))
	for _, preset := range presets {
		result = append(result, preset)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result
}
