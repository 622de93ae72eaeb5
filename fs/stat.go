package fs

import "github.com/boljen/go-bitmap"

// Stat summarizes the state of the file system.
type Stat struct {
	// BlockSize is the size of a device block, in bytes.
	BlockSize uint
	// TotalBlocks is the number of blocks on the device.
	TotalBlocks uint
	// BlocksFree is the number of unallocated blocks in the data region.
	BlocksFree uint
	// Files is the number of stored files, not counting the directory.
	Files uint
	// FilesFree is the number of files that can still be created.
	FilesFree uint
	// MaxNameLength is the fixed width of a filename slot.
	MaxNameLength uint
}

// Stat reports usage counts read from the allocation bitmaps. An
// unformatted disk reports the counts of a freshly formatted disk holding no
// files: the directory's inode and first data block are counted as used.
func (fsys *FileSystem) Stat() (Stat, error) {
	stat := Stat{
		BlockSize:     fsys.geo.BlockSize,
		TotalBlocks:   fsys.geo.TotalBlocks,
		MaxNameLength: fsys.geo.MaxFilenameBytes,
	}

	formatted, err := fsys.formatted()
	if err != nil {
		return Stat{}, err
	}
	if !formatted {
		stat.BlocksFree = fsys.geo.DataBlocks() - 1
		stat.FilesFree = fsys.geo.MaxFilesStored - 1
		return stat, nil
	}

	if err := fsys.dev.ReadBlock(dataBitmapBlock, fsys.blockBuf); err != nil {
		return Stat{}, err
	}
	dataBits := bitmap.Bitmap(fsys.blockBuf)
	for i := fsys.geo.FirstDataBlock(); i < fsys.geo.TotalBlocks; i++ {
		if !dataBits.Get(int(i)) {
			stat.BlocksFree++
		}
	}

	if err := fsys.dev.ReadBlock(inodeBitmapBlock, fsys.blockBuf); err != nil {
		return Stat{}, err
	}
	allocated := popCount(fsys.blockBuf, fsys.geo.MaxFilesStored)
	stat.Files = allocated - 1
	stat.FilesFree = fsys.geo.MaxFilesStored - allocated
	return stat, nil
}
