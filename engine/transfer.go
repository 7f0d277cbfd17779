package engine

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/chanceme/emueeprom/bitmap"
	"github.com/chanceme/emueeprom/crc"
	"github.com/chanceme/emueeprom/eepromerr"
	"github.com/chanceme/emueeprom/layout"
)

// blockTransfer migrates the live contents of the active block to the next
// block and erases the old one (spec.md §4.4). It is invoked from Flush
// once the active block's data-page area is exhausted.
func (e *Engine) blockTransfer() error {
	oldBlock := e.currBlock

	headerBuf := make([]byte, layout.HeaderSize)
	if _, err := e.dev.ReadAt(e.blockOffset(oldBlock), headerBuf); err != nil {
		return eepromerr.WrapFlashIO(err, "engine: transfer: read header of block %d", oldBlock)
	}
	header := layout.DecodeHeader(headerBuf)

	nextBlock := (oldBlock + 1) % e.geom.BlockTotal
	header.TransferCount = layout.NextTransferCount(header.TransferCount)
	header.BlockNum = uint16(nextBlock)
	header.CRC = crc.Checksum16(header.Encode()[:8])

	if err := e.formatBlock(nextBlock, header); err != nil {
		return eepromerr.WrapFlashIO(err, "engine: transfer: format block %d", nextBlock)
	}

	e.currBlock = nextBlock
	e.currPage = 1
	e.bufferPos = 0
	e.pageBuffer = newErasedPage(e.geom.PageSize)

	if err := e.migrateLiveData(oldBlock); err != nil {
		return err
	}

	if err := e.dev.EraseBlocks(oldBlock, 1); err != nil {
		return eepromerr.WrapFlashIO(err, "engine: transfer: erase block %d", oldBlock)
	}

	e.log.WithFields(logrus.Fields{
		"old_block":      oldBlock,
		"new_block":      nextBlock,
		"transfer_count": header.TransferCount,
	}).Info("block transfer complete")

	return nil
}

// migrateLiveData walks oldBlock's data pages newest-first, migrating only
// the latest value of each still-live virtual address into the (already
// rotated-to) new active block.
func (e *Engine) migrateLiveData(oldBlock int) error {
	migrated := bitmap.New(e.MaxVirtualAddr())
	page := make([]byte, e.geom.PageSize)

	for p := e.geom.PagesPerBlock() - 1; p >= 1; p-- {
		if _, err := e.dev.ReadAt(e.pageOffset(oldBlock, p), page); err != nil {
			continue
		}

		stored := binary.LittleEndian.Uint16(page[e.pageCRCOffset():])
		if crc.Checksum16(page[:e.pageCRCOffset()]) != stored {
			// PageCrcMismatch: skip this page, transfer continues.
			e.log.WithFields(logrus.Fields{
				"block": oldBlock,
				"page":  p,
			}).Warn("page CRC mismatch during transfer, skipping")
			continue
		}

		if err := e.migratePage(page, migrated); err != nil {
			return err
		}
	}

	return nil
}

// migratePage enumerates page's entries forward, then walks them
// latest-first, building the longest contiguous streak of still-unmigrated
// bytes per entry and flushing each streak as a single new entry in the new
// block once it ends (spec.md §4.4 step 6d). Tombstones mark their address
// as migrated (the erased state) without writing anything, which is safe
// here because pages are visited newest-first (spec.md §4.4 step 6e).
func (e *Engine) migratePage(page []byte, migrated *bitmap.Bitmap) error {
	offsets := layout.ScanOffsets(page, e.pageCRCOffset(), uint16(e.MaxVirtualAddr()))

	for i := len(offsets) - 1; i >= 0; i-- {
		off := offsets[i]
		eVAddr, eSize := layout.DecodeEntryHeader(page[off:])

		if eSize == 0 {
			if a := int(eVAddr); a < migrated.Len() && !migrated.IsSet(a) {
				migrated.Set(a)
			}
			continue
		}

		data := page[off+layout.EntryHeaderSize : off+layout.EntryHeaderSize+int(eSize)]

		streakStart := -1
		flush := func(end int) error {
			if streakStart < 0 {
				return nil
			}
			payload := data[streakStart-int(eVAddr) : end-int(eVAddr)]
			if _, err := e.appendWrite(uint16(streakStart), payload); err != nil {
				return err
			}
			for a := streakStart; a < end; a++ {
				migrated.Set(a)
			}
			streakStart = -1
			return nil
		}

		for a := int(eVAddr); a < int(eVAddr)+int(eSize); a++ {
			if migrated.IsSet(a) {
				if err := flush(a); err != nil {
					return err
				}
				continue
			}
			if streakStart < 0 {
				streakStart = a
			}
		}
		if err := flush(int(eVAddr) + int(eSize)); err != nil {
			return err
		}
	}

	return nil
}
