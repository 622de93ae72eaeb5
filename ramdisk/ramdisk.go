// Package ramdisk provides the memory-resident block device the file system
// runs on. The entire image is one fixed []byte allocated at construction;
// block reads and writes are bounds-checked copies into and out of it.
package ramdisk

import (
	"fmt"
	"io"

	"github.com/xaionaro-go/bytesextra"
)

type Disk struct {
	blockSize   uint
	totalBlocks uint
	data        []byte
}

// New creates a zero-filled disk of totalBlocks blocks of blockSize bytes.
func New(blockSize, totalBlocks uint) *Disk {
	return &Disk{
		blockSize:   blockSize,
		totalBlocks: totalBlocks,
		data:        make([]byte, blockSize*totalBlocks),
	}
}

// FromReader creates a disk and fills it from an image stream. The stream
// must hold exactly blockSize*totalBlocks bytes.
func FromReader(r io.Reader, blockSize, totalBlocks uint) (*Disk, error) {
	disk := New(blockSize, totalBlocks)
	if _, err := io.ReadFull(r, disk.data); err != nil {
		return nil, fmt.Errorf("reading %d-byte disk image: %w", len(disk.data), err)
	}

	// The image must not have trailing data past the declared geometry.
	var scratch [1]byte
	if n, _ := r.Read(scratch[:]); n != 0 {
		return nil, fmt.Errorf(
			"disk image is larger than %d blocks of %d bytes",
			totalBlocks, blockSize)
	}
	return disk, nil
}

func (disk *Disk) BlockSize() uint {
	return disk.blockSize
}

func (disk *Disk) TotalBlocks() uint {
	return disk.totalBlocks
}

func (disk *Disk) checkAccess(index uint, bufLen int) error {
	if index >= disk.totalBlocks {
		return fmt.Errorf(
			"invalid block index %d: not in range [0, %d)", index, disk.totalBlocks)
	}
	if uint(bufLen) != disk.blockSize {
		return fmt.Errorf(
			"buffer must be exactly one block (%d bytes), got %d",
			disk.blockSize, bufLen)
	}
	return nil
}

// ReadBlock copies the block at `index` into `buf`.
func (disk *Disk) ReadBlock(index uint, buf []byte) error {
	if err := disk.checkAccess(index, len(buf)); err != nil {
		return err
	}
	start := index * disk.blockSize
	copy(buf, disk.data[start:start+disk.blockSize])
	return nil
}

// WriteBlock overwrites the block at `index` with `data`.
func (disk *Disk) WriteBlock(index uint, data []byte) error {
	if err := disk.checkAccess(index, len(data)); err != nil {
		return err
	}
	start := index * disk.blockSize
	copy(disk.data[start:start+disk.blockSize], data)
	return nil
}

// Stream exposes the raw image as a fixed-size io.ReadWriteSeeker. Writing
// through the stream modifies the disk in place; the size never changes.
func (disk *Disk) Stream() io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(disk.data)
}

// WriteTo dumps the raw image to `w`, e.g. to persist it as an image file.
func (disk *Disk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(disk.data)
	return int64(n), err
}

// Snapshot returns an independent copy of the raw image.
func (disk *Disk) Snapshot() []byte {
	out := make([]byte, len(disk.data))
	copy(out, disk.data)
	return out
}
