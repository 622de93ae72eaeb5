package fs

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/hashicorp/go-multierror"
)

// CheckConsistency walks the cross-structure invariants that every
// operation is supposed to preserve and reports every violation it finds,
// aggregated into one error. A nil return means the image is consistent.
//
// The invariants checked:
//   - the inode bitmap population equals the directory entry count plus one
//     (inode 0, the directory itself);
//   - every allocated inode's block list consists of mutually distinct
//     blocks inside the data region, each marked used in the data bitmap
//     and claimed by no other inode;
//   - the data bitmap population equals the reserved region plus the blocks
//     claimed by allocated inodes.
func (fsys *FileSystem) CheckConsistency() error {
	formatted, err := fsys.formatted()
	if err != nil {
		return err
	}
	if !formatted {
		// Nothing has ever been written; there is nothing to contradict.
		return nil
	}

	inodeBits := make([]byte, fsys.geo.BlockSize)
	if err := fsys.dev.ReadBlock(inodeBitmapBlock, inodeBits); err != nil {
		return err
	}
	dataBits := make([]byte, fsys.geo.BlockSize)
	if err := fsys.dev.ReadBlock(dataBitmapBlock, dataBits); err != nil {
		return err
	}

	if err := fsys.loadDirectory(); err != nil {
		return err
	}

	var result *multierror.Error

	names, err := fsys.ListDirectory()
	if err != nil {
		return err
	}
	allocatedInodes := popCount(inodeBits, fsys.geo.MaxFilesStored)
	if allocatedInodes != uint(len(names))+1 {
		result = multierror.Append(result, fmt.Errorf(
			"inode bitmap has %d bits set but the directory holds %d names",
			allocatedInodes, len(names)))
	}

	firstData := fsys.geo.FirstDataBlock()
	claimed := bitmap.New(int(fsys.geo.TotalBlocks))
	claimedTotal := uint(0)
	for slot := uint(0); slot < fsys.geo.MaxFilesStored; slot++ {
		if !bitmap.Bitmap(inodeBits).Get(int(slot)) {
			continue
		}
		blocks := decodeInode(fsys.tableBuf, slot, fsys.geo).distinctBlocks()
		claimedTotal += uint(len(blocks))
		for _, b := range blocks {
			if uint(b) < firstData || uint(b) >= fsys.geo.TotalBlocks {
				result = multierror.Append(result, fmt.Errorf(
					"inode %d points at block %d, outside the data region [%d, %d)",
					slot, b, firstData, fsys.geo.TotalBlocks))
				continue
			}
			if !bitmap.Bitmap(dataBits).Get(int(b)) {
				result = multierror.Append(result, fmt.Errorf(
					"inode %d uses block %d, which the data bitmap says is free",
					slot, b))
			}
			if claimed.Get(int(b)) {
				result = multierror.Append(result, fmt.Errorf(
					"block %d is claimed by more than one inode", b))
			}
			claimed.Set(int(b), true)
		}
	}

	usedBlocks := popCount(dataBits, fsys.geo.TotalBlocks)
	if usedBlocks != firstData+claimedTotal {
		result = multierror.Append(result, fmt.Errorf(
			"data bitmap has %d bits set; the reserved region and inodes"+
				" account for %d",
			usedBlocks, firstData+claimedTotal))
	}

	return result.ErrorOrNil()
}

func popCount(bits []byte, limit uint) uint {
	count := uint(0)
	for i := uint(0); i < limit; i++ {
		if bitmap.Bitmap(bits).Get(int(i)) {
			count++
		}
	}
	return count
}
