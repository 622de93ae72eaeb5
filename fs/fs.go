// Package fs implements a statically-sized file system over a raw block
// device. The on-disk layout is: block 0 the inode-allocation bitmap, block
// 1 the data-block-allocation bitmap, then the inode table, then the data
// region. The root directory is an ordinary file stored under inode 0 and
// grows through the same block-allocation path as user files.
//
// The block, inode-table and directory scratch buffers are allocated once in
// New, sized by the Geometry. Each successful open allocates one block-sized
// buffer for its open-table entry; no operation allocates storage
// proportional to file contents. The file system owns its device exclusively
// and is not safe for concurrent use.
package fs

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/picofs/picofs"
)

type FileSystem struct {
	dev picofs.BlockDevice
	geo picofs.Geometry

	open       []*openFile
	openInodes bitmap.Bitmap

	// Scratch buffers reused by every operation. Callers never see them.
	blockBuf []byte
	tableBuf []byte
	dirBuf   []byte
}

// New builds a file system over `dev`. The geometry must validate and match
// the device's dimensions. A fresh (all-zero) device is lazily formatted by
// the first successful OpenCreate.
func New(dev picofs.BlockDevice, geo picofs.Geometry) (*FileSystem, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if dev.BlockSize() != geo.BlockSize || dev.TotalBlocks() != geo.TotalBlocks {
		return nil, picofs.ErrInvalidGeometry.WithMessage(fmt.Sprintf(
			"device has %d blocks of %d bytes, geometry wants %d of %d",
			dev.TotalBlocks(), dev.BlockSize(), geo.TotalBlocks, geo.BlockSize))
	}

	return &FileSystem{
		dev:        dev,
		geo:        geo,
		open:       make([]*openFile, geo.MaxOpenFiles),
		openInodes: bitmap.New(int(geo.MaxFilesStored)),
		blockBuf:   make([]byte, geo.BlockSize),
		tableBuf:   make([]byte, geo.InodeTableBlocks()*geo.BlockSize),
		dirBuf:     make([]byte, geo.MaxFileBytes()),
	}, nil
}

// Geometry returns the sizes the file system was built with.
func (fsys *FileSystem) Geometry() picofs.Geometry {
	return fsys.geo
}

// MaxFileSize returns the largest file the geometry can represent, in bytes.
func (fsys *FileSystem) MaxFileSize() uint {
	return fsys.geo.MaxFileBytes()
}

// bootstrap formats a fresh disk: the reserved region (bitmaps plus inode
// table) and the directory's first data block are marked used in the data
// bitmap, inode 0 is marked used in the inode bitmap, and the directory
// inode is written with every block slot pointing at its single data block.
func (fsys *FileSystem) bootstrap() error {
	firstData := fsys.geo.FirstDataBlock()

	if err := fsys.dev.ReadBlock(dataBitmapBlock, fsys.blockBuf); err != nil {
		return err
	}
	dataBits := bitmap.Bitmap(fsys.blockBuf)
	for i := uint(0); i <= firstData; i++ {
		dataBits.Set(int(i), true)
	}
	if err := fsys.dev.WriteBlock(dataBitmapBlock, fsys.blockBuf); err != nil {
		return err
	}

	if err := fsys.setBitmapBit(inodeBitmapBlock, 0, true); err != nil {
		return err
	}

	if err := fsys.loadInodeTable(); err != nil {
		return err
	}
	encodeInode(fsys.tableBuf, 0, fsys.geo, newInode(fsys.geo, uint8(firstData)))
	return fsys.storeInodeTable()
}

// OpenCreate creates `name` and opens it for writing, returning a file
// descriptor. Creating a name that already exists zeroes the existing file
// and reuses its inode. The first successful create on a fresh disk formats
// it.
func (fsys *FileSystem) OpenCreate(name string) (int, error) {
	padded, ok := fsys.padName(name)
	if !ok {
		return 0, picofs.ErrFilenameTooLong
	}
	fd, ok := fsys.freeSlot()
	if !ok {
		return 0, picofs.ErrTooManyOpen
	}

	formatted, err := fsys.formatted()
	if err != nil {
		return 0, err
	}
	if !formatted {
		if err := fsys.bootstrap(); err != nil {
			return 0, err
		}
	}

	if err := fsys.loadDirectory(); err != nil {
		return 0, err
	}

	var entry *openFile
	if slot, found := fsys.findEntry(padded); found {
		if fsys.openInodes.Get(int(slot)) {
			return 0, picofs.ErrAlreadyOpen
		}
		entry, err = fsys.truncateInode(slot)
	} else {
		entry, err = fsys.createInode(padded)
	}
	if err != nil {
		return 0, err
	}

	fsys.placeEntry(fd, entry)
	return fd, nil
}

// truncateInode implements re-create: the file keeps its inode and its
// first data block, every other data block is freed, and the surviving
// block is zeroed so stale contents can never be read back.
func (fsys *FileSystem) truncateInode(slot uint) (*openFile, error) {
	oldBlocks := decodeInode(fsys.tableBuf, slot, fsys.geo).distinctBlocks()
	first := oldBlocks[0]
	if err := fsys.freeDataBlocks(oldBlocks[1:]); err != nil {
		return nil, err
	}

	reset := newInode(fsys.geo, first)
	encodeInode(fsys.tableBuf, slot, fsys.geo, reset)
	if err := fsys.storeInodeTable(); err != nil {
		return nil, err
	}

	for i := range fsys.blockBuf {
		fsys.blockBuf[i] = 0
	}
	if err := fsys.dev.WriteBlock(uint(first), fsys.blockBuf); err != nil {
		return nil, err
	}

	return &openFile{
		inode:        reset,
		inodeNum:     slot,
		currentBlock: first,
		buffer:       make([]byte, fsys.geo.BlockSize),
	}, nil
}

// createInode allocates an inode and a first data block for a new file and
// enters it in the directory.
func (fsys *FileSystem) createInode(padded []byte) (*openFile, error) {
	slot, err := fsys.allocInode()
	if err != nil {
		return nil, err
	}
	first, err := fsys.allocDataBlock()
	if err != nil {
		return nil, err
	}

	// The block may have belonged to a since-recreated file; scrub it.
	for i := range fsys.blockBuf {
		fsys.blockBuf[i] = 0
	}
	if err := fsys.dev.WriteBlock(uint(first), fsys.blockBuf); err != nil {
		return nil, err
	}

	ino := newInode(fsys.geo, first)
	encodeInode(fsys.tableBuf, slot, fsys.geo, ino)
	if err := fsys.storeInodeTable(); err != nil {
		return nil, err
	}

	if err := fsys.insertEntry(slot, padded); err != nil {
		return nil, err
	}

	return &openFile{
		inode:        ino,
		inodeNum:     slot,
		currentBlock: first,
		buffer:       make([]byte, fsys.geo.BlockSize),
	}, nil
}

// OpenRead opens an existing file for reading. The first block is buffered
// immediately.
func (fsys *FileSystem) OpenRead(name string) (int, error) {
	entry, fd, err := fsys.openExisting(name)
	if err != nil {
		return 0, err
	}

	entry.reading = true
	entry.currentBlock = entry.inode.blocks[0]
	if err := fsys.dev.ReadBlock(uint(entry.currentBlock), entry.buffer); err != nil {
		return 0, err
	}

	fsys.placeEntry(fd, entry)
	return fd, nil
}

// OpenAppend opens an existing file for appending. The file's last block is
// buffered and the write position is the first zero byte within it.
func (fsys *FileSystem) OpenAppend(name string) (int, error) {
	entry, fd, err := fsys.openExisting(name)
	if err != nil {
		return 0, err
	}

	entry.writing = true
	entry.currentBlock = entry.inode.lastBlock()
	if err := fsys.dev.ReadBlock(uint(entry.currentBlock), entry.buffer); err != nil {
		return 0, err
	}
	entry.offset = fsys.geo.BlockSize
	for i, b := range entry.buffer {
		if b == 0 {
			entry.offset = uint(i)
			break
		}
	}

	fsys.placeEntry(fd, entry)
	return fd, nil
}

// openExisting performs the shared half of OpenRead and OpenAppend: the
// directory lookup, the double-open check, and the slot reservation.
func (fsys *FileSystem) openExisting(name string) (*openFile, int, error) {
	padded, ok := fsys.padName(name)
	if !ok {
		// A name that can't fit in a directory slot can't exist.
		return nil, 0, picofs.ErrFileNotFound
	}

	if err := fsys.loadDirectory(); err != nil {
		return nil, 0, err
	}
	slot, found := fsys.findEntry(padded)
	if !found {
		return nil, 0, picofs.ErrFileNotFound
	}
	if fsys.openInodes.Get(int(slot)) {
		return nil, 0, picofs.ErrAlreadyOpen
	}
	fd, ok := fsys.freeSlot()
	if !ok {
		return nil, 0, picofs.ErrTooManyOpen
	}

	entry := &openFile{
		inode:    decodeInode(fsys.tableBuf, slot, fsys.geo),
		inodeNum: slot,
		buffer:   make([]byte, fsys.geo.BlockSize),
	}
	return entry, fd, nil
}

// Read copies bytes from the file into `buf`, stopping at the end of the
// file or when `buf` is full, and returns the number of bytes copied. A
// zero byte within a block marks the end of the file.
func (fsys *FileSystem) Read(fd int, buf []byte) (int, error) {
	entry := fsys.openEntry(fd)
	if entry == nil {
		return 0, picofs.ErrFileNotOpen
	}
	if !entry.reading {
		return 0, picofs.ErrNotOpenForRead
	}

	blockSize := fsys.geo.BlockSize
	blocks := entry.inode.distinctBlocks()
	position := 0
	for i, b := range blocks {
		if b == entry.currentBlock {
			position = i
			break
		}
	}

	n := 0
	for n < len(buf) {
		if entry.offset == blockSize {
			// The final block was consumed by an earlier call.
			break
		}
		c := entry.buffer[entry.offset]
		if c == 0 {
			break
		}
		buf[n] = c
		n++
		entry.offset++

		if entry.offset == blockSize {
			position++
			if position >= len(blocks) {
				break
			}
			entry.currentBlock = blocks[position]
			if err := fsys.dev.ReadBlock(uint(entry.currentBlock), entry.buffer); err != nil {
				return n, err
			}
			entry.offset = 0
		}
	}
	return n, nil
}

// Write appends the bytes of `data` to the file. Full blocks are flushed as
// they fill, allocating fresh data blocks on demand; the partially filled
// block is flushed before returning. The file's recorded length is only
// stabilized at Close.
func (fsys *FileSystem) Write(fd int, data []byte) error {
	entry := fsys.openEntry(fd)
	if entry == nil {
		return picofs.ErrFileNotOpen
	}
	if entry.reading {
		return picofs.ErrNotOpenForWrite
	}
	entry.writing = true

	blockSize := fsys.geo.BlockSize
	tableLoaded := false
	for _, c := range data {
		if entry.offset == blockSize {
			// The buffered block is full: flush it and move to a fresh
			// block before committing the next byte.
			if err := fsys.dev.WriteBlock(uint(entry.currentBlock), entry.buffer); err != nil {
				return err
			}
			if uint(len(entry.inode.distinctBlocks())) == fsys.geo.MaxFileBlocks {
				return picofs.ErrFileTooBig
			}

			newBlock, err := fsys.allocDataBlock()
			if err != nil {
				return err
			}
			if !tableLoaded {
				if err := fsys.loadInodeTable(); err != nil {
					return err
				}
				tableLoaded = true
			}
			entry.inode.appendBlock(newBlock)
			encodeInode(fsys.tableBuf, entry.inodeNum, fsys.geo, entry.inode)
			if err := fsys.storeInodeTable(); err != nil {
				return err
			}

			entry.currentBlock = newBlock
			entry.offset = 0
			for i := range entry.buffer {
				entry.buffer[i] = 0
			}
		}

		entry.buffer[entry.offset] = c
		entry.offset++
	}

	return fsys.dev.WriteBlock(uint(entry.currentBlock), entry.buffer)
}

// Close recomputes the file's byte length from its blocks, persists it in
// the inode, and releases the open slot.
func (fsys *FileSystem) Close(fd int) error {
	entry := fsys.openEntry(fd)
	if entry == nil {
		return picofs.ErrFileNotFound
	}

	if err := fsys.loadInodeTable(); err != nil {
		return err
	}
	ino := decodeInode(fsys.tableBuf, entry.inodeNum, fsys.geo)

	total := uint(0)
	for _, block := range ino.distinctBlocks() {
		if err := fsys.dev.ReadBlock(uint(block), fsys.blockBuf); err != nil {
			return err
		}
		for _, c := range fsys.blockBuf {
			if c == 0 {
				break
			}
			total++
		}
	}

	ino.bytesStored = uint16(total)
	encodeInode(fsys.tableBuf, entry.inodeNum, fsys.geo, ino)
	if err := fsys.storeInodeTable(); err != nil {
		return err
	}

	fsys.openInodes.Set(int(entry.inodeNum), false)
	fsys.open[fd] = nil
	return nil
}

// ListDirectory returns the names of every stored file, in inode order.
func (fsys *FileSystem) ListDirectory() ([]string, error) {
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

	var names []string
	for slot := uint(1); slot < fsys.geo.MaxFilesStored; slot++ {
		if name := fsys.slotName(slot); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
