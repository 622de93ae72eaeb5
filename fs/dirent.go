package fs

// DirEntry describes one stored file. The csv tags match the output of the
// command-line tool's listing.
type DirEntry struct {
	Name string `csv:"name"`
	// Size is the byte count recorded in the inode. It is only current for
	// closed files; the length of an open file stabilizes at close.
	Size uint `csv:"size_bytes"`
	// Blocks is the number of data blocks the file occupies.
	Blocks uint `csv:"blocks"`
}

// ListEntries returns a DirEntry for every stored file, in inode order.
func (fsys *FileSystem) ListEntries() ([]DirEntry, error) {
	formatted, err := fsys.formatted()
	if err != nil {
		return nil, err
	}
	if !formatted {
		return nil, nil
	}

	if err := fsys.loadDirectory(); err != nil {
		return nil, err
	}

	var entries []DirEntry
	for slot := uint(1); slot < fsys.geo.MaxFilesStored; slot++ {
		name := fsys.slotName(slot)
		if name == "" {
			continue
		}
		ino := decodeInode(fsys.tableBuf, slot, fsys.geo)
		entries = append(entries, DirEntry{
			Name:   name,
			Size:   uint(ino.bytesStored),
			Blocks: uint(len(ino.distinctBlocks())),
		})
	}
	return entries, nil
}
