package engine

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/chanceme/emueeprom/crc"
	"github.com/chanceme/emueeprom/eepromerr"
	"github.com/chanceme/emueeprom/layout"
)

// Init populates RAM state from flash, recovering the active block and the
// next free page, or formats a fresh block if none is found (spec.md §4.1).
// Precondition: the engine must not already be initialized.
func (e *Engine) Init() error {
	if e.initialized {
		eepromerr.Raise(eepromerr.ErrAlreadyInitialized)
	}

	block, header := e.findActiveBlock()

	if block < 0 {
		header = layout.Header{
			UniqueID:      layout.UniqueID,
			BlockNum:      0,
			BlockTotal:    uint16(e.geom.BlockTotal),
			TransferCount: layout.TransferStart,
		}
		header.CRC = crc.Checksum16(header.Encode()[:8])
		if err := e.formatBlock(0, header); err != nil {
			return eepromerr.WrapFlashIO(err, "engine: init: format block 0")
		}
		e.currBlock = 0
		e.currPage = 1
		e.bufferPos = 0
		e.log.Info("emulated EEPROM created")
	} else {
		e.currBlock = block
		page, err := e.findAvailablePage(block)
		if err != nil {
			return eepromerr.WrapFlashIO(err, "engine: init: locate current page")
		}
		e.currPage = page
		e.bufferPos = 0
		e.log.WithFields(logrus.Fields{
			"block": block,
			"of":    header.BlockTotal,
			"page":  page,
		}).Info("emulated EEPROM found")
	}

	e.pageBuffer = newErasedPage(e.geom.PageSize)
	e.initialized = true
	return nil
}

// Destroy erases all engine-owned blocks and clears the initialized flag
// (spec.md §4.1, §4.5).
func (e *Engine) Destroy() error {
	if !e.initialized {
		eepromerr.Raise(eepromerr.ErrNotInitialized)
	}
	if err := e.dev.EraseBlocks(0, e.geom.BlockTotal); err != nil {
		return eepromerr.WrapFlashIO(err, "engine: destroy")
	}
	e.initialized = false
	e.log.Info("emulated EEPROM destroyed")
	return nil
}

// findActiveBlock scans every candidate block's header and returns the
// index of the active one -- the owned block with the highest
// transfer_count, applying the TransferWrap/TransferStart tie-break -- or
// -1 if no engine-owned block is found. A header read failure for a given
// block is treated the same as "not owned": per spec.md §4.1 "Failure: if
// header reads fail, init formats a fresh block", so a failing block is
// simply excluded from consideration rather than aborting the scan.
func (e *Engine) findActiveBlock() (int, layout.Header) {
	found := -1
	var foundHeader layout.Header

	for b := 0; b < e.geom.BlockTotal; b++ {
		buf := make([]byte, layout.HeaderSize)
		if _, err := e.dev.ReadAt(e.blockOffset(b), buf); err != nil {
			continue
		}
		h := layout.DecodeHeader(buf)
		if !h.Owned() {
			continue
		}
		if found == -1 {
			found, foundHeader = b, h
			continue
		}
		if layout.NewerTransferCount(foundHeader.TransferCount, h.TransferCount) {
			found, foundHeader = b, h
		}
	}

	return found, foundHeader
}

func (e *Engine) formatBlock(block int, header layout.Header) error {
	_, err := e.dev.WriteAt(e.blockOffset(block), header.Encode())
	return err
}

// findAvailablePage locates the first erased data page of block via a
// bounded binary-search probe (spec.md §4.1, §9): starting near the
// block's midpoint, it reads the candidate page's leading v_addr field to
// decide used-vs-erased, halving the probe step each round until a used
// page is found immediately followed by an erased one (or vice versa).
func (e *Engine) findAvailablePage(block int) (int, error) {
	pagesPerBlock := e.geom.PagesPerBlock()
	if pagesPerBlock <= 1 {
		return 1, nil
	}

	step := pagesPerBlock / 2
	probe := step
	if probe < 1 {
		probe = 1
	}
	if probe >= pagesPerBlock {
		probe = pagesPerBlock - 1
	}

	for step > 0 {
		used, err := e.pageUsed(block, probe)
		if err != nil {
			return 1, err
		}

		if used {
			if probe+1 >= pagesPerBlock {
				return pagesPerBlock, nil
			}
			nextUsed, err := e.pageUsed(block, probe+1)
			if err != nil {
				return 1, err
			}
			if !nextUsed {
				return probe + 1, nil
			}
			probe += (step + 1) / 2
		} else {
			if probe <= 1 {
				return 1, nil
			}
			prevUsed, err := e.pageUsed(block, probe-1)
			if err != nil {
				return 1, err
			}
			if prevUsed {
				return probe, nil
			}
			probe -= (step + 1) / 2
		}

		step /= 2
		if probe < 1 {
			probe = 1
		}
		if probe >= pagesPerBlock {
			probe = pagesPerBlock - 1
		}
	}

	used, err := e.pageUsed(block, probe)
	if err != nil {
		return 1, err
	}
	if !used {
		return probe, nil
	}
	return probe + 1, nil
}

// pageUsed reports whether the data page at (block, page) has been
// written: its leading v_addr field is <= MaxVirtualAddr. An erased page
// reads back 0xFFFF, which is > MaxVirtualAddr for any valid geometry.
func (e *Engine) pageUsed(block, page int) (bool, error) {
	buf := make([]byte, 2)
	if _, err := e.dev.ReadAt(e.pageOffset(block, page), buf); err != nil {
		return false, err
	}
	vAddr := binary.LittleEndian.Uint16(buf)
	return int(vAddr) <= e.MaxVirtualAddr(), nil
}
