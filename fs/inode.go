package fs

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"
	"github.com/picofs/picofs"
)

// inode mirrors one on-disk inode record: a big-endian 16-bit count of live
// bytes followed by one byte per block slot. A file's block list is the
// prefix of mutually distinct values; the first slot holding a value that
// already appeared marks the end of the list. A fresh inode repeats its
// single data block across every slot.
type inode struct {
	bytesStored uint16
	blocks      []uint8
}

// newInode builds an empty inode whose every block slot points at
// firstBlock.
func newInode(geo picofs.Geometry, firstBlock uint8) inode {
	blocks := make([]uint8, geo.MaxFileBlocks)
	for i := range blocks {
		blocks[i] = firstBlock
	}
	return inode{blocks: blocks}
}

// decodeInode reads inode `index` out of an inode-table image.
func decodeInode(image []byte, index uint, geo picofs.Geometry) inode {
	offset := index * geo.InodeRecordSize()
	record := image[offset : offset+geo.InodeRecordSize()]

	blocks := make([]uint8, geo.MaxFileBlocks)
	copy(blocks, record[2:])
	return inode{
		bytesStored: binary.BigEndian.Uint16(record[:2]),
		blocks:      blocks,
	}
}

// encodeInode writes `ino` into slot `index` of an inode-table image.
func encodeInode(image []byte, index uint, geo picofs.Geometry, ino inode) {
	offset := index * geo.InodeRecordSize()
	writer := bytewriter.New(image[offset : offset+geo.InodeRecordSize()])
	binary.Write(writer, binary.BigEndian, ino.bytesStored)
	writer.Write(ino.blocks)
}

func blockListContains(list []uint8, block uint8) bool {
	for _, b := range list {
		if b == block {
			return true
		}
	}
	return false
}

// distinctBlocks returns the file's block list in order: slots left to
// right, stopping at the first value that already appeared.
func (ino inode) distinctBlocks() []uint8 {
	distinct := make([]uint8, 0, len(ino.blocks))
	for _, b := range ino.blocks {
		if blockListContains(distinct, b) {
			break
		}
		distinct = append(distinct, b)
	}
	return distinct
}

// lastBlock returns the final block of the file's block list.
func (ino inode) lastBlock() uint8 {
	distinct := ino.distinctBlocks()
	return distinct[len(distinct)-1]
}

// appendBlock overwrites the slot that terminates the block list with
// newBlock, growing the file by one block. Returns false when every slot is
// already part of the list.
func (ino *inode) appendBlock(newBlock uint8) bool {
	distinct := make([]uint8, 0, len(ino.blocks))
	for i, b := range ino.blocks {
		if blockListContains(distinct, b) {
			ino.blocks[i] = newBlock
			return true
		}
		distinct = append(distinct, b)
	}
	return false
}
