package fs_test

import (
	"testing"

	"github.com/picofs/picofs/fs"
	"github.com/picofs/picofs/ramdisk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConsistencyOnFreshDisk(t *testing.T) {
	fsys := newTestFS(t)
	assert.NoError(t, fsys.CheckConsistency(), "an unformatted disk is consistent")

	writeFile(t, fsys, "one.txt", "hello")
	assert.NoError(t, fsys.CheckConsistency())
}

func TestCheckConsistencyCatchesStrayDataBit(t *testing.T) {
	geo := classroom()
	disk := ramdisk.New(geo.BlockSize, geo.TotalBlocks)
	fsys, err := fs.New(disk, geo)
	require.NoError(t, err)

	writeFile(t, fsys, "one.txt", "hello")

	// Mark a block nothing points at as used: bit 200 lives in byte 25.
	bitmapBlock := make([]byte, geo.BlockSize)
	require.NoError(t, disk.ReadBlock(1, bitmapBlock))
	bitmapBlock[25] |= 1
	require.NoError(t, disk.WriteBlock(1, bitmapBlock))

	err = fsys.CheckConsistency()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data bitmap")
}

func TestCheckConsistencyCatchesMissingDataBit(t *testing.T) {
	geo := classroom()
	disk := ramdisk.New(geo.BlockSize, geo.TotalBlocks)
	fsys, err := fs.New(disk, geo)
	require.NoError(t, err)

	writeFile(t, fsys, "one.txt", "hello")

	// Clear the whole byte that covers the file's data blocks: blocks 8..15
	// live in byte 1 of the bitmap. The directory's block and the file's
	// block both vanish from the bitmap while their inodes still claim
	// them.
	bitmapBlock := make([]byte, geo.BlockSize)
	require.NoError(t, disk.ReadBlock(1, bitmapBlock))
	bitmapBlock[1] = 0
	require.NoError(t, disk.WriteBlock(1, bitmapBlock))

	err = fsys.CheckConsistency()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free")
}
