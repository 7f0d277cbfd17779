package layout

import "encoding/binary"

// EntryHeaderSize is the packed size, in bytes, of an entry's v_addr+size
// fields (the 4-byte header preceding the payload).
const EntryHeaderSize = 4

// ErasedField is the sentinel value found in the v_addr field of an erased
// (never-written) slot; it is how the forward entry scan recognizes the end
// of the written region of a page.
const ErasedField uint16 = 0xFFFF

// Entry is one (v_addr, size, payload) record appended into a data page.
// A zero Size denotes a tombstone for the single address VAddr.
type Entry struct {
	VAddr uint16
	Size  uint16
	Data  []byte
}

// Tombstone reports whether e marks its address as erased.
func (e Entry) Tombstone() bool { return e.Size == 0 }

// Len returns the total packed length of e: EntryHeaderSize + len(Data).
func (e Entry) Len() int { return EntryHeaderSize + len(e.Data) }

// Encode packs e into its little-endian on-flash representation.
func (e Entry) Encode() []byte {
	buf := make([]byte, e.Len())
	binary.LittleEndian.PutUint16(buf[0:2], e.VAddr)
	binary.LittleEndian.PutUint16(buf[2:4], e.Size)
	copy(buf[4:], e.Data)
	return buf
}

// DecodeEntryHeader reads only the 4-byte v_addr/size header at the start
// of buf, without copying a payload. Used by the forward scan (ScanOffsets)
// which only needs offsets, and by the reverse page search which re-reads
// the full entry once it knows where it starts.
func DecodeEntryHeader(buf []byte) (vAddr, size uint16) {
	return binary.LittleEndian.Uint16(buf[0:2]), binary.LittleEndian.Uint16(buf[2:4])
}

// DecodeEntry reads a full entry (header + payload) starting at offset 0 of
// buf, given the already-known payload size.
func DecodeEntry(buf []byte, size uint16) Entry {
	vAddr, _ := DecodeEntryHeader(buf)
	data := make([]byte, size)
	copy(data, buf[EntryHeaderSize:EntryHeaderSize+int(size)])
	return Entry{VAddr: vAddr, Size: size, Data: data}
}

// ScanOffsets enumerates the start offsets of every entry packed into page,
// forward from offset 0, per spec.md §4.3 step a: an entry is recognized
// while its v_addr field is not the erased sentinel and its size field is
// less than maxVirtualAddr. The scan stops at the first offset that fails
// this test, or at limit (the offset where the trailing page CRC begins).
func ScanOffsets(page []byte, limit int, maxVirtualAddr uint16) []int {
	var offsets []int
	for i := 0; i < limit; {
		if i+EntryHeaderSize > limit {
			break
		}
		vAddr, size := DecodeEntryHeader(page[i:])
		if vAddr == ErasedField || size >= maxVirtualAddr {
			break
		}
		offsets = append(offsets, i)
		i += EntryHeaderSize + int(size)
	}
	return offsets
}
