package fs

import (
	"testing"

	"github.com/picofs/picofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeometry() picofs.Geometry {
	return picofs.Geometry{
		MaxOpenFiles:     16,
		BlockSize:        64,
		TotalBlocks:      255,
		MaxFileBlocks:    8,
		MaxFilesStored:   32,
		MaxFilenameBytes: 8,
	}
}

func TestInodeEncodeDecodeRoundTrip(t *testing.T) {
	geo := testGeometry()
	image := make([]byte, geo.InodeTableBlocks()*geo.BlockSize)

	ino := newInode(geo, 9)
	ino.bytesStored = 0x0102
	require.True(t, ino.appendBlock(10))
	require.True(t, ino.appendBlock(11))

	encodeInode(image, 3, geo, ino)

	// The record sits at slot 3 and is big-endian: high length byte first.
	offset := 3 * geo.InodeRecordSize()
	assert.Equal(t, byte(0x01), image[offset])
	assert.Equal(t, byte(0x02), image[offset+1])
	assert.Equal(t, byte(9), image[offset+2])

	decoded := decodeInode(image, 3, geo)
	assert.Equal(t, ino.bytesStored, decoded.bytesStored)
	assert.Equal(t, ino.blocks, decoded.blocks)
	assert.Equal(t, []uint8{9, 10, 11}, decoded.distinctBlocks())
}

func TestFreshInodeReplicatesItsBlock(t *testing.T) {
	geo := testGeometry()
	ino := newInode(geo, 12)

	assert.Equal(t, []uint8{12, 12, 12, 12, 12, 12, 12, 12}, ino.blocks)
	assert.Equal(t, []uint8{12}, ino.distinctBlocks())
	assert.EqualValues(t, 12, ino.lastBlock())
}

func TestAppendBlockGrowsUntilFull(t *testing.T) {
	geo := testGeometry()
	ino := newInode(geo, 20)

	for next := uint8(21); next < 28; next++ {
		require.True(t, ino.appendBlock(next))
		assert.EqualValues(t, next, ino.lastBlock())
	}
	assert.Equal(
		t, []uint8{20, 21, 22, 23, 24, 25, 26, 27}, ino.distinctBlocks())

	assert.False(t, ino.appendBlock(99),
		"a full block list has no slot left to overwrite")
}

func TestAppendBlockLeavesStaleTailOutOfTheList(t *testing.T) {
	geo := testGeometry()
	ino := newInode(geo, 5)

	// After one append the tail slots still hold the old value; the list
	// must end at the first value already seen.
	require.True(t, ino.appendBlock(6))
	assert.Equal(t, []uint8{5, 6, 5, 5, 5, 5, 5, 5}, ino.blocks)
	assert.Equal(t, []uint8{5, 6}, ino.distinctBlocks())

	require.True(t, ino.appendBlock(7))
	assert.Equal(t, []uint8{5, 6, 7}, ino.distinctBlocks())
}
