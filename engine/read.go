package engine

import (
	"github.com/chanceme/emueeprom/bitmap"
	"github.com/chanceme/emueeprom/eepromerr"
	"github.com/chanceme/emueeprom/layout"
)

// Read resolves len(out) bytes beginning at vAddr by merging newest-first
// across the current page buffer and the active block's flushed pages, in
// reverse page order (spec.md §4.3). It returns the number of distinct
// bytes filled, which may be less than len(out) for never-written or
// wholly-tombstoned addresses.
func (e *Engine) Read(vAddr uint16, out []byte) (int, error) {
	if !e.initialized {
		eepromerr.Raise(eepromerr.ErrNotInitialized)
	}
	if len(out) == 0 {
		eepromerr.Raise(eepromerr.ErrInvalidLength)
	}
	if int(vAddr)+len(out) > e.MaxVirtualAddr() {
		eepromerr.Raise(eepromerr.ErrAddressOutOfRange)
	}

	bm := bitmap.New(len(out))
	found := e.pageSearch(e.pageBuffer, bm, vAddr, out)

	if found < len(out) && e.currPage > 1 {
		page := make([]byte, e.geom.PageSize)
		for p := e.currPage - 1; p >= 1; p-- {
			if _, err := e.dev.ReadAt(e.pageOffset(e.currBlock, p), page); err != nil {
				if found == 0 {
					return 0, eepromerr.WrapFlashIO(err, "engine: read: page %d of block %d", p, e.currBlock)
				}
				break
			}
			found += e.pageSearch(page, bm, vAddr, out)
			if bm.All() {
				break
			}
		}
	}

	return found, nil
}

// pageSearch enumerates page's entries forward to find their start offsets
// (spec.md §4.3 step a), then resolves the requested range by walking
// those entries in reverse -- latest-first within the page -- filling any
// bitmap-unset byte an entry's payload covers.
//
// Tombstones mark their address as resolved (so no older entry can
// overwrite it) without contributing to the found count: spec.md §4.3 says
// a single-byte read that resolves entirely to a tombstone returns 0, which
// only holds if a tombstone hole never adds to the tally.
func (e *Engine) pageSearch(page []byte, bm *bitmap.Bitmap, vAddr uint16, out []byte) int {
	offsets := layout.ScanOffsets(page, e.pageCRCOffset(), uint16(e.MaxVirtualAddr()))
	rangeStart := int(vAddr)
	rangeEnd := rangeStart + len(out)
	found := 0

	for i := len(offsets) - 1; i >= 0; i-- {
		off := offsets[i]
		eVAddr, eSize := layout.DecodeEntryHeader(page[off:])

		if eSize == 0 {
			if a := int(eVAddr); a >= rangeStart && a < rangeEnd {
				bit := a - rangeStart
				if !bm.IsSet(bit) {
					bm.Set(bit)
				}
			}
		} else {
			entryStart, entryEnd := int(eVAddr), int(eVAddr)+int(eSize)
			lo, hi := max(entryStart, rangeStart), min(entryEnd, rangeEnd)
			if lo < hi {
				data := page[off+layout.EntryHeaderSize : off+layout.EntryHeaderSize+int(eSize)]
				for a := lo; a < hi; a++ {
					bit := a - rangeStart
					if !bm.IsSet(bit) {
						out[bit] = data[a-entryStart]
						bm.Set(bit)
						found++
					}
				}
			}
		}

		if bm.All() {
			break
		}
	}

	return found
}
