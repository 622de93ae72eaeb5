package fs

// Inode-table I/O. The table occupies the blocks immediately after the two
// bitmap blocks and is staged block-major in fsys.tableBuf while any
// directory or inode mutation is in flight.

const inodeTableStart = 2

func (fsys *FileSystem) loadInodeTable() error {
	blockSize := fsys.geo.BlockSize
	for i := uint(0); i < fsys.geo.InodeTableBlocks(); i++ {
		if err := fsys.dev.ReadBlock(inodeTableStart+i, fsys.blockBuf); err != nil {
			return err
		}
		copy(fsys.tableBuf[i*blockSize:(i+1)*blockSize], fsys.blockBuf)
	}
	return nil
}

func (fsys *FileSystem) storeInodeTable() error {
	blockSize := fsys.geo.BlockSize
	for i := uint(0); i < fsys.geo.InodeTableBlocks(); i++ {
		copy(fsys.blockBuf, fsys.tableBuf[i*blockSize:(i+1)*blockSize])
		if err := fsys.dev.WriteBlock(inodeTableStart+i, fsys.blockBuf); err != nil {
			return err
		}
	}
	return nil
}
