package picofs

import "fmt"

// BlockDevice is the storage contract the file system is built on: a fixed
// number of fixed-size blocks addressed by index. Implementations only fail
// on out-of-range indices or wrongly sized buffers.
type BlockDevice interface {
	// BlockSize gives the size of a single block, in bytes.
	BlockSize() uint
	// TotalBlocks gives the number of blocks on the device.
	TotalBlocks() uint
	// ReadBlock copies the contents of the block at `index` into `buf`.
	// `buf` must be exactly one block long.
	ReadBlock(index uint, buf []byte) error
	// WriteBlock overwrites the block at `index` with `data`. `data` must be
	// exactly one block long.
	WriteBlock(index uint, data []byte) error
}

// Geometry holds the seven sizes that fix every buffer in the file system.
// All on-disk and in-memory layout arithmetic derives from these; nothing is
// ever resized after construction.
type Geometry struct {
	// MaxOpenFiles is the number of slots in the open-file table.
	MaxOpenFiles uint
	// BlockSize is the size of a device block, in bytes.
	BlockSize uint
	// TotalBlocks is the number of blocks on the device.
	TotalBlocks uint
	// MaxFileBlocks is the maximum number of data blocks a single file may
	// occupy.
	MaxFileBlocks uint
	// MaxFilesStored is the number of inodes, and therefore the maximum
	// number of distinct files (the root directory occupies inode 0).
	MaxFilesStored uint
	// MaxFilenameBytes is the fixed width of a directory filename slot.
	MaxFilenameBytes uint
}

// MaxFileBytes gives the maximum size of a single file, in bytes.
func (g Geometry) MaxFileBytes() uint {
	return g.MaxFileBlocks * g.BlockSize
}

// InodeRecordSize gives the on-disk size of one inode: a 16-bit length
// followed by one byte per block slot.
func (g Geometry) InodeRecordSize() uint {
	return 2 + g.MaxFileBlocks
}

// InodesPerBlock gives how many inode records fit in one block.
func (g Geometry) InodesPerBlock() uint {
	return g.BlockSize / g.InodeRecordSize()
}

// InodeTableBlocks gives the number of blocks the inode table occupies,
// rounded up so every inode has a slot.
func (g Geometry) InodeTableBlocks() uint {
	perBlock := g.InodesPerBlock()
	return (g.MaxFilesStored + perBlock - 1) / perBlock
}

// FirstDataBlock gives the index of the first block in the data region: the
// two bitmap blocks plus the inode table.
func (g Geometry) FirstDataBlock() uint {
	return 2 + g.InodeTableBlocks()
}

// DataBlocks gives the number of blocks in the data region.
func (g Geometry) DataBlocks() uint {
	return g.TotalBlocks - g.InodeTableBlocks() - 2
}

// Validate checks every constraint the layout arithmetic depends on. A
// Geometry that passes can be handed to fs.New without any operation ever
// indexing out of range.
func (g Geometry) Validate() error {
	if g.MaxOpenFiles == 0 {
		return ErrInvalidGeometry.WithMessage("must allow at least one open file")
	}
	if g.BlockSize == 0 || g.MaxFileBlocks == 0 || g.MaxFilesStored == 0 ||
		g.MaxFilenameBytes == 0 {
		return ErrInvalidGeometry.WithMessage("sizes must all be nonzero")
	}
	if g.TotalBlocks > 255 {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"block indices are stored in one byte; %d blocks can't be addressed",
			g.TotalBlocks))
	}
	if g.MaxFileBytes() > 65535 {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"file sizes are stored in 16 bits; max file size %d is too large",
			g.MaxFileBytes()))
	}
	blockBits := g.BlockSize * 8
	if g.MaxFilesStored > blockBits {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"inode bitmap must fit in one block: %d inodes > %d bits",
			g.MaxFilesStored, blockBits))
	}
	if g.InodesPerBlock() == 0 {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"inode record (%d bytes) doesn't fit in a block (%d bytes)",
			g.InodeRecordSize(), g.BlockSize))
	}
	if g.InodeTableBlocks()*2 >= g.TotalBlocks {
		return ErrInvalidGeometry.WithMessage(
			"inode table leaves no room for the data region")
	}
	if g.DataBlocks() > blockBits {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"data bitmap must fit in one block: %d data blocks > %d bits",
			g.DataBlocks(), blockBits))
	}
	if g.InodeTableBlocks() > g.MaxFileBlocks {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"the inode table image must fit in a file-sized buffer:"+
				" %d table blocks > %d blocks per file",
			g.InodeTableBlocks(), g.MaxFileBlocks))
	}
	if g.MaxFilesStored*g.MaxFilenameBytes > g.MaxFileBytes() {
		return ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"the directory (%d bytes of filename slots) exceeds the maximum"+
				" file size %d",
			g.MaxFilesStored*g.MaxFilenameBytes, g.MaxFileBytes()))
	}
	return nil
}
