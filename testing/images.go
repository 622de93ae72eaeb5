// Package testing provides helpers for building populated file-system
// images in tests.
package testing

import (
	"io"
	"sort"
	"testing"

	"github.com/picofs/picofs"
	"github.com/picofs/picofs/fs"
	"github.com/picofs/picofs/ramdisk"
	"github.com/stretchr/testify/require"
)

// NewFileSystem builds a file system over a fresh zero-filled disk.
func NewFileSystem(t *testing.T, geo picofs.Geometry) (*fs.FileSystem, *ramdisk.Disk) {
	t.Helper()
	disk := ramdisk.New(geo.BlockSize, geo.TotalBlocks)
	fsys, err := fs.New(disk, geo)
	require.NoError(t, err)
	return fsys, disk
}

// BuildImage builds a file system holding the given files, written in name
// order so the resulting image is deterministic.
func BuildImage(
	t *testing.T, geo picofs.Geometry, files map[string]string,
) (*fs.FileSystem, *ramdisk.Disk) {
	t.Helper()
	fsys, disk := NewFileSystem(t, geo)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fd, err := fsys.OpenCreate(name)
		require.NoError(t, err, "creating %q", name)
		require.NoError(t, fsys.Write(fd, []byte(files[name])), "writing %q", name)
		require.NoError(t, fsys.Close(fd), "closing %q", name)
	}
	return fsys, disk
}

// LoadImage builds a file system over an image read from a stream.
func LoadImage(
	t *testing.T, r io.Reader, geo picofs.Geometry,
) (*fs.FileSystem, *ramdisk.Disk) {
	t.Helper()
	disk, err := ramdisk.FromReader(r, geo.BlockSize, geo.TotalBlocks)
	require.NoError(t, err)
	fsys, err := fs.New(disk, geo)
	require.NoError(t, err)
	return fsys, disk
}

// ReadWholeFile drains one file through small reads and returns its
// contents.
func ReadWholeFile(t *testing.T, fsys *fs.FileSystem, name string) string {
	t.Helper()
	fd, err := fsys.OpenRead(name)
	require.NoError(t, err)

	var contents []byte
	buffer := make([]byte, 10)
	for {
		n, err := fsys.Read(fd, buffer)
		require.NoError(t, err)
		contents = append(contents, buffer[:n]...)
		if n < len(buffer) {
			require.NoError(t, fsys.Close(fd))
			return string(contents)
		}
	}
}
