// Package disks holds a registry of predefined file-system geometries. The
// presets live in an embedded CSV table so adding one is a data change, not
// a code change.
package disks

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/picofs/picofs"
)

//go:embed geometries.csv
var geometryPresetsRawCSV string

type GeometryPreset struct {
	Name             string `csv:"name"`
	Slug             string `csv:"slug"`
	MaxOpenFiles     uint   `csv:"max_open_files"`
	BlockSize        uint   `csv:"block_size"`
	TotalBlocks      uint   `csv:"total_blocks"`
	MaxFileBlocks    uint   `csv:"max_file_blocks"`
	MaxFilesStored   uint   `csv:"max_files_stored"`
	MaxFilenameBytes uint   `csv:"max_filename_bytes"`
	Notes            string `csv:"notes"`
}

// Geometry converts the preset row into the file system's configuration.
func (p GeometryPreset) Geometry() picofs.Geometry {
	return picofs.Geometry{
		MaxOpenFiles:     p.MaxOpenFiles,
		BlockSize:        p.BlockSize,
		TotalBlocks:      p.TotalBlocks,
		MaxFileBlocks:    p.MaxFileBlocks,
		MaxFilesStored:   p.MaxFilesStored,
		MaxFilenameBytes: p.MaxFilenameBytes,
	}
}

// ImageSizeBytes gives the size of a raw image file for this preset.
func (p GeometryPreset) ImageSizeBytes() int64 {
	return int64(p.BlockSize) * int64(p.TotalBlocks)
}

var geometryPresets = map[string]GeometryPreset{}

// GetPredefinedGeometry resolves a preset slug into a validated geometry.
func GetPredefinedGeometry(slug string) (picofs.Geometry, error) {
	preset, ok := geometryPresets[slug]
	if !ok {
		return picofs.Geometry{}, fmt.Errorf(
			"no predefined disk geometry exists with slug %q (have: %s)",
			slug, strings.Join(PresetSlugs(), ", "))
	}
	return preset.Geometry(), nil
}

// PresetSlugs lists every known preset slug, sorted.
func PresetSlugs() []string {
	slugs := make([]string, 0, len(geometryPresets))
	for slug := range geometryPresets {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func init() {
	reader := strings.NewReader(geometryPresetsRawCSV)
	err := gocsv.UnmarshalToCallback(
		reader,
		func(row GeometryPreset) error {
			if _, exists := geometryPresets[row.Slug]; exists {
				return fmt.Errorf(
					"duplicate definition for disk geometry %q", row.Slug)
			}
			if err := row.Geometry().Validate(); err != nil {
				return fmt.Errorf("preset %q: %w", row.Slug, err)
			}
			geometryPresets[row.Slug] = row
			return nil
		},
	)
	if err != nil && err != io.EOF {
		panic(err)
	}
}
