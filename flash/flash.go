// Package flash provides the offset-addressed, block-erasable storage medium
// the emulation engine is built on top of. It generalizes the teacher's
// mem.Bus (a fixed 64KiB byte array addressed by a single uint16) to a
// geometry-parameterized device with ranged reads/writes and whole-block
// erase, matching the flash_read/flash_write/flash_block_erase contract.
package flash

import "github.com/pkg/errors"

// Erased is the canonical post-erase byte value.
const Erased byte = 0xFF

// Geometry describes the compile-time-constant shape of the underlying
// medium: page size, block size, and total flash size, all in bytes, plus
// BlockTotal, the number of blocks the emulation engine actually rotates
// across (spec.md §3's "block_total", canonical 2). BlockTotal is a
// separate configuration parameter from FlashSize/BlockSize: a chip can
// have far more physical blocks than the emulation engine uses -- see
// original_source/inc/flash_config.h (16 physical blocks in a 64KiB chip)
// versus emueeprom.c's blocks_t enum (block_1, block_2, block_total=2).
type Geometry struct {
	PageSize   int
	BlockSize  int
	FlashSize  int
	BlockTotal int
}

// DefaultGeometry is the canonical geometry from the spec: 32-byte pages,
// 4096-byte blocks (128 pages/block), 64KiB of flash, with the emulation
// engine rotating across the canonical 2 blocks.
var DefaultGeometry = Geometry{
	PageSize:   32,
	BlockSize:  4096,
	FlashSize:  65536,
	BlockTotal: 2,
}

// Validate reports whether the geometry is internally consistent.
func (g Geometry) Validate() error {
	if g.PageSize <= 0 || g.BlockSize <= 0 || g.FlashSize <= 0 || g.BlockTotal <= 0 {
		return errors.New("flash: geometry sizes must be positive")
	}
	if g.BlockSize%g.PageSize != 0 {
		return errors.Errorf("flash: block size %d is not a multiple of page size %d", g.BlockSize, g.PageSize)
	}
	if g.FlashSize%g.BlockSize != 0 {
		return errors.Errorf("flash: flash size %d is not a multiple of block size %d", g.FlashSize, g.BlockSize)
	}
	if g.BlockTotal > g.TotalBlocks() {
		return errors.Errorf("flash: block total %d exceeds %d physical blocks", g.BlockTotal, g.TotalBlocks())
	}
	return nil
}

// PagesPerBlock returns the number of pages in a block, header page included.
func (g Geometry) PagesPerBlock() int { return g.BlockSize / g.PageSize }

// TotalBlocks returns the number of physical blocks the whole medium is
// divided into. This is the chip's capacity, not the number of blocks the
// emulation engine rotates across -- for that, use BlockTotal.
func (g Geometry) TotalBlocks() int { return g.FlashSize / g.BlockSize }

// Device is the flash interface consumed by the emulation engine: random
// offset-addressed read/write, and block-granular erase. Implementations are
// not required to be safe for concurrent use.
type Device interface {
	// ReadAt reads len(p) bytes starting at offset. It returns the number of
	// bytes read and an error if fewer than len(p) bytes could be read.
	ReadAt(offset int64, p []byte) (int, error)

	// WriteAt writes len(p) bytes to offset. The caller must ensure the
	// target region is in the erased state; the Memory and File
	// implementations store p as given and do not themselves restrict a
	// write to clearing bits.
	WriteAt(offset int64, p []byte) (int, error)

	// EraseBlocks resets blockCount blocks starting at blockNum to the
	// erased pattern.
	EraseBlocks(blockNum, blockCount int) error

	// Geometry returns the device's fixed geometry.
	Geometry() Geometry
}
