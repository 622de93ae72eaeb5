package fs

import (
	"github.com/boljen/go-bitmap"
	"github.com/picofs/picofs"
)

// Block 0 tracks inode allocation, block 1 data-block allocation. Bit i of
// block 0 means inode i is in use; bit k of block 1 means (absolute) block k
// is in use.
const inodeBitmapBlock = 0
const dataBitmapBlock = 1

// findFreeBit scans a bitmap block for the lowest clear bit among the first
// `limit` bits. The bitmap block is left in fsys.blockBuf so the caller can
// commit the allocation without a second read.
func (fsys *FileSystem) findFreeBit(blockIndex, limit uint) (uint, bool, error) {
	if err := fsys.dev.ReadBlock(blockIndex, fsys.blockBuf); err != nil {
		return 0, false, err
	}

	bits := bitmap.Bitmap(fsys.blockBuf)
	for i := uint(0); i < limit; i++ {
		if !bits.Get(int(i)) {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// setBitmapBit reads a bitmap block, sets one bit to `value`, and writes it
// back.
func (fsys *FileSystem) setBitmapBit(blockIndex, bit uint, value bool) error {
	if err := fsys.dev.ReadBlock(blockIndex, fsys.blockBuf); err != nil {
		return err
	}
	bitmap.Bitmap(fsys.blockBuf).Set(int(bit), value)
	return fsys.dev.WriteBlock(blockIndex, fsys.blockBuf)
}

// allocDataBlock finds the first free data block, marks it used, and returns
// its absolute index.
func (fsys *FileSystem) allocDataBlock() (uint8, error) {
	index, ok, err := fsys.findFreeBit(dataBitmapBlock, fsys.geo.TotalBlocks)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, picofs.ErrDiskFull
	}

	bitmap.Bitmap(fsys.blockBuf).Set(int(index), true)
	if err := fsys.dev.WriteBlock(dataBitmapBlock, fsys.blockBuf); err != nil {
		return 0, err
	}
	return uint8(index), nil
}

// allocInode finds the first free inode, marks it used, and returns its
// index.
func (fsys *FileSystem) allocInode() (uint, error) {
	index, ok, err := fsys.findFreeBit(inodeBitmapBlock, fsys.geo.MaxFilesStored)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, picofs.ErrTooManyFiles
	}

	bitmap.Bitmap(fsys.blockBuf).Set(int(index), true)
	if err := fsys.dev.WriteBlock(inodeBitmapBlock, fsys.blockBuf); err != nil {
		return 0, err
	}
	return index, nil
}

// freeDataBlocks clears the data-bitmap bits for every block in `blocks`.
func (fsys *FileSystem) freeDataBlocks(blocks []uint8) error {
	if err := fsys.dev.ReadBlock(dataBitmapBlock, fsys.blockBuf); err != nil {
		return err
	}
	bits := bitmap.Bitmap(fsys.blockBuf)
	for _, b := range blocks {
		bits.Set(int(b), false)
	}
	return fsys.dev.WriteBlock(dataBitmapBlock, fsys.blockBuf)
}

// formatted reports whether any create has ever succeeded: bit 0 of the
// inode bitmap is set when the directory inode exists.
func (fsys *FileSystem) formatted() (bool, error) {
	if err := fsys.dev.ReadBlock(inodeBitmapBlock, fsys.blockBuf); err != nil {
		return false, err
	}
	return bitmap.Bitmap(fsys.blockBuf).Get(0), nil
}
