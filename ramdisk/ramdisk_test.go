package ramdisk_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/picofs/picofs/ramdisk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	disk := ramdisk.New(64, 4)

	block := bytes.Repeat([]byte{0xa5}, 64)
	require.NoError(t, disk.WriteBlock(2, block))

	out := make([]byte, 64)
	require.NoError(t, disk.ReadBlock(2, out))
	assert.Equal(t, block, out)

	// Neighboring blocks stay untouched.
	require.NoError(t, disk.ReadBlock(1, out))
	assert.Equal(t, make([]byte, 64), out)
	require.NoError(t, disk.ReadBlock(3, out))
	assert.Equal(t, make([]byte, 64), out)
}

func TestBoundsChecks(t *testing.T) {
	disk := ramdisk.New(64, 4)
	buf := make([]byte, 64)

	assert.Error(t, disk.ReadBlock(4, buf), "index past end must be rejected")
	assert.Error(t, disk.WriteBlock(17, buf), "index past end must be rejected")
	assert.Error(t, disk.ReadBlock(0, make([]byte, 63)), "short buffer must be rejected")
	assert.Error(t, disk.WriteBlock(0, make([]byte, 65)), "long buffer must be rejected")
}

func TestStreamAndImageRoundTrip(t *testing.T) {
	disk := ramdisk.New(16, 4)
	require.NoError(t, disk.WriteBlock(0, []byte("0123456789abcdef")))

	// The stream view reads the same bytes the block API wrote.
	stream := disk.Stream()
	header := make([]byte, 16)
	_, err := io.ReadFull(stream, header)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), header)

	// Persist the image and load it back.
	var image bytes.Buffer
	_, err = disk.WriteTo(&image)
	require.NoError(t, err)

	reloaded, err := ramdisk.FromReader(bytes.NewReader(image.Bytes()), 16, 4)
	require.NoError(t, err)
	assert.Equal(t, disk.Snapshot(), reloaded.Snapshot())
}

func TestFromReaderSizeMismatch(t *testing.T) {
	short := bytes.NewReader(make([]byte, 63))
	_, err := ramdisk.FromReader(short, 16, 4)
	assert.Error(t, err, "truncated image must be rejected")

	long := bytes.NewReader(make([]byte, 65))
	_, err = ramdisk.FromReader(long, 16, 4)
	assert.Error(t, err, "oversized image must be rejected")
}
