package fs

// openFile is one slot of the fixed-size open-file table. The file
// descriptor handed to callers is the slot index.
type openFile struct {
	// inode is a snapshot of the file's inode taken at open time, kept in
	// step with the on-disk inode as the write path appends blocks.
	inode    inode
	inodeNum uint
	// currentBlock is the absolute index of the block held in buffer.
	currentBlock uint8
	// offset is the position within buffer of the next byte to read or
	// write. offset == BlockSize means the buffered block is spent.
	offset uint
	// reading and writing are mutually exclusive. A create-opened file has
	// neither set until its first write.
	reading bool
	writing bool
	buffer  []byte
}

// freeSlot returns the lowest unoccupied open-table index.
func (fsys *FileSystem) freeSlot() (int, bool) {
	for fd, entry := range fsys.open {
		if entry == nil {
			return fd, true
		}
	}
	return 0, false
}

// openEntry returns the open-file entry for a descriptor, or nil when the
// descriptor is out of range or the slot is empty.
func (fsys *FileSystem) openEntry(fd int) *openFile {
	if fd < 0 || fd >= len(fsys.open) {
		return nil
	}
	return fsys.open[fd]
}

// placeEntry installs an entry in slot fd and marks its inode open.
func (fsys *FileSystem) placeEntry(fd int, entry *openFile) {
	fsys.open[fd] = entry
	fsys.openInodes.Set(int(entry.inodeNum), true)
}
