package fs

import (
	"bytes"
	"fmt"
)

// The root directory is the file stored under inode 0. Its contents are
// fixed-width filename slots, one per inode index: slot i at byte offset
// i*MaxFilenameBytes holds the name of the file using inode i, left
// justified and NUL padded. Slot 0 (the directory itself) stays blank.

// padName converts a filename into its fixed-width slot form. Returns false
// when the name is empty or doesn't fit.
func (fsys *FileSystem) padName(name string) ([]byte, bool) {
	if len(name) == 0 || uint(len(name)) > fsys.geo.MaxFilenameBytes {
		return nil, false
	}
	padded := make([]byte, fsys.geo.MaxFilenameBytes)
	copy(padded, name)
	return padded, true
}

// loadDirectory stages the directory image in fsys.dirBuf. The inode table
// is loaded first since the directory's block list lives in inode 0.
func (fsys *FileSystem) loadDirectory() error {
	if err := fsys.loadInodeTable(); err != nil {
		return err
	}

	blockSize := fsys.geo.BlockSize
	dirInode := decodeInode(fsys.tableBuf, 0, fsys.geo)
	for i, block := range dirInode.distinctBlocks() {
		if err := fsys.dev.ReadBlock(uint(block), fsys.blockBuf); err != nil {
			return err
		}
		copy(fsys.dirBuf[uint(i)*blockSize:(uint(i)+1)*blockSize], fsys.blockBuf)
	}
	return nil
}

// storeDirectory writes the staged directory image back to inode 0's blocks.
func (fsys *FileSystem) storeDirectory() error {
	blockSize := fsys.geo.BlockSize
	dirInode := decodeInode(fsys.tableBuf, 0, fsys.geo)
	for i, block := range dirInode.distinctBlocks() {
		copy(fsys.blockBuf, fsys.dirBuf[uint(i)*blockSize:(uint(i)+1)*blockSize])
		if err := fsys.dev.WriteBlock(uint(block), fsys.blockBuf); err != nil {
			return err
		}
	}
	return nil
}

// slotName returns the trimmed filename in a directory slot, or "" when the
// slot is empty. The directory must be staged.
func (fsys *FileSystem) slotName(slot uint) string {
	width := fsys.geo.MaxFilenameBytes
	raw := fsys.dirBuf[slot*width : (slot+1)*width]
	if raw[0] == 0 {
		return ""
	}
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}

// findEntry scans the staged directory for an exact slot match and returns
// the matching inode index.
func (fsys *FileSystem) findEntry(padded []byte) (uint, bool) {
	width := fsys.geo.MaxFilenameBytes
	for slot := uint(1); slot < fsys.geo.MaxFilesStored; slot++ {
		offset := slot * width
		if bytes.Equal(fsys.dirBuf[offset:offset+width], padded) {
			return slot, true
		}
	}
	return 0, false
}

// insertEntry writes a filename into slot `slot` and persists the directory.
// When the slot lies past the bytes covered by the directory's current
// blocks, a fresh data block is allocated and appended to inode 0 first.
func (fsys *FileSystem) insertEntry(slot uint, padded []byte) error {
	width := fsys.geo.MaxFilenameBytes
	offset := slot * width

	dirInode := decodeInode(fsys.tableBuf, 0, fsys.geo)
	covered := uint(len(dirInode.distinctBlocks())) * fsys.geo.BlockSize
	if offset+width > covered {
		newBlock, err := fsys.allocDataBlock()
		if err != nil {
			return err
		}
		if !dirInode.appendBlock(newBlock) {
			// Unreachable for any validated geometry; the directory fits in
			// MaxFileBlocks blocks.
			return fmt.Errorf("directory block list is full")
		}
		encodeInode(fsys.tableBuf, 0, fsys.geo, dirInode)
		if err := fsys.storeInodeTable(); err != nil {
			return err
		}
	}

	copy(fsys.dirBuf[offset:offset+width], padded)
	return fsys.storeDirectory()
}
