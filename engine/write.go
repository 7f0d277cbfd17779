package engine

import (
	"encoding/binary"

	"github.com/chanceme/emueeprom/crc"
	"github.com/chanceme/emueeprom/eepromerr"
	"github.com/chanceme/emueeprom/layout"
)

// Write appends one or more entries covering [vAddr, vAddr+len(data)) to
// the current page buffer, splitting across page boundaries as needed
// (spec.md §4.2). Preconditions: len(data) > 0 and vAddr+len(data) <=
// MaxVirtualAddr; violations panic with a ProgrammingError.
func (e *Engine) Write(vAddr uint16, data []byte) (int, error) {
	if !e.initialized {
		eepromerr.Raise(eepromerr.ErrNotInitialized)
	}
	if len(data) == 0 {
		eepromerr.Raise(eepromerr.ErrInvalidLength)
	}
	if int(vAddr)+len(data) > e.MaxVirtualAddr() {
		eepromerr.Raise(eepromerr.ErrAddressOutOfRange)
	}
	return e.appendWrite(vAddr, data)
}

// Erase appends a zero-length tombstone entry for each address in
// [vAddr, vAddr+dataLen) (spec.md §4.2). It returns the status of the last
// tombstone append, per spec.md §7/§9.
func (e *Engine) Erase(vAddr uint16, dataLen uint16) (int, error) {
	if !e.initialized {
		eepromerr.Raise(eepromerr.ErrNotInitialized)
	}
	if dataLen == 0 {
		eepromerr.Raise(eepromerr.ErrInvalidLength)
	}

	status := 0
	for i := uint16(0); i < dataLen; i++ {
		n, err := e.appendTombstone(vAddr + i)
		if err != nil {
			return n, err
		}
		status = n
	}
	return status, nil
}

// Flush writes the current page buffer to flash and, if the active block's
// data-page area is now full, triggers a block transfer (spec.md §4.2,
// §4.4). A no-op buffer returns (0, nil).
func (e *Engine) Flush() (int, error) {
	if !e.initialized {
		eepromerr.Raise(eepromerr.ErrNotInitialized)
	}
	if e.bufferPos == 0 {
		return 0, nil
	}

	sum := crc.Checksum16(e.pageBuffer[:e.pageCRCOffset()])
	binary.LittleEndian.PutUint16(e.pageBuffer[e.pageCRCOffset():], sum)

	offset := e.pageOffset(e.currBlock, e.currPage)
	if _, err := e.dev.WriteAt(offset, e.pageBuffer); err != nil {
		return 0, eepromerr.WrapFlashIO(err, "engine: flush page %d of block %d", e.currPage, e.currBlock)
	}

	e.bufferPos = 0
	e.currPage++
	e.pageBuffer = newErasedPage(e.geom.PageSize)

	if e.currPage >= e.geom.PagesPerBlock() {
		if err := e.blockTransfer(); err != nil {
			return e.geom.PageSize, err
		}
	}

	return e.geom.PageSize, nil
}

// appendWrite implements the entry-splitting append path described in
// spec.md §4.2: an entry that fits in the remaining page capacity is
// appended whole; otherwise the payload is split across consecutive
// pages, flushing after each fill, until the whole payload is placed.
func (e *Engine) appendWrite(vAddr uint16, data []byte) (int, error) {
	written := 0

	remaining := e.pageCRCOffset() - e.bufferPos
	if remaining >= layout.EntryHeaderSize+len(data) {
		e.appendEntry(vAddr, data)
		written = len(data)
	} else {
		for len(data) > 0 {
			remaining = e.pageCRCOffset() - e.bufferPos
			chunk := remaining - layout.EntryHeaderSize
			if chunk > e.MaxDataPerPage() {
				chunk = e.MaxDataPerPage()
			}
			if chunk > len(data) {
				chunk = len(data)
			}

			e.appendEntry(vAddr, data[:chunk])
			written += chunk
			vAddr += uint16(chunk)
			data = data[chunk:]

			if _, err := e.Flush(); err != nil {
				return written, err
			}
		}
	}

	// No room left for another minimum-size entry: flush immediately.
	if e.bufferPos+layout.EntryHeaderSize >= e.pageCRCOffset() {
		if _, err := e.Flush(); err != nil {
			return written, err
		}
	}

	return written, nil
}

// appendTombstone appends a single zero-length tombstone entry, flushing
// first if there isn't room for even a minimal entry.
func (e *Engine) appendTombstone(vAddr uint16) (int, error) {
	if e.pageCRCOffset()-e.bufferPos < layout.EntryHeaderSize {
		if _, err := e.Flush(); err != nil {
			return 0, err
		}
	}

	e.appendEntry(vAddr, nil)

	if e.bufferPos+layout.EntryHeaderSize >= e.pageCRCOffset() {
		if _, err := e.Flush(); err != nil {
			return 0, err
		}
	}

	return 0, nil
}

func (e *Engine) appendEntry(vAddr uint16, data []byte) {
	entry := layout.Entry{VAddr: vAddr, Size: uint16(len(data)), Data: data}
	copy(e.pageBuffer[e.bufferPos:], entry.Encode())
	e.bufferPos += entry.Len()
}
