// Package layout implements the packed little-endian on-flash formats:
// the block header (spec.md §3 "Block header") and the entry format
// (spec.md §3 "Entry"), plus the forward entry scan shared by the read
// resolver and block transfer (spec.md §4.3 step a). Encoding is explicit
// byte-level packing via encoding/binary, per spec.md §9's directive to
// avoid relying on struct-layout coincidence.
package layout

import "encoding/binary"

const (
	// UniqueID is the fixed sentinel identifying emulation-owned blocks.
	UniqueID uint16 = 0xBEEF

	// TransferWrap is the reserved transfer_count sentinel marking wrap.
	TransferWrap uint16 = 0xEEEE

	// TransferStart is the transfer_count value used for a freshly
	// formatted block and for "fresh after wrap".
	TransferStart uint16 = 0x0000

	// HeaderSize is the packed size, in bytes, of a Header.
	HeaderSize = 10
)

// Header is the packed block header stored at the start of a block's
// header page (page 0).
type Header struct {
	UniqueID      uint16
	BlockNum      uint16
	BlockTotal    uint16
	TransferCount uint16
	CRC           uint16
}

// Owned reports whether this header identifies an emulation-owned block.
func (h Header) Owned() bool { return h.UniqueID == UniqueID }

// Encode packs h into its little-endian on-flash representation.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.UniqueID)
	binary.LittleEndian.PutUint16(buf[2:4], h.BlockNum)
	binary.LittleEndian.PutUint16(buf[4:6], h.BlockTotal)
	binary.LittleEndian.PutUint16(buf[6:8], h.TransferCount)
	binary.LittleEndian.PutUint16(buf[8:10], h.CRC)
	return buf
}

// DecodeHeader unpacks a Header from its little-endian on-flash
// representation. buf must be at least HeaderSize bytes.
func DecodeHeader(buf []byte) Header {
	return Header{
		UniqueID:      binary.LittleEndian.Uint16(buf[0:2]),
		BlockNum:      binary.LittleEndian.Uint16(buf[2:4]),
		BlockTotal:    binary.LittleEndian.Uint16(buf[4:6]),
		TransferCount: binary.LittleEndian.Uint16(buf[6:8]),
		CRC:           binary.LittleEndian.Uint16(buf[8:10]),
	}
}

// NextTransferCount advances a transfer_count per spec.md §4.4 step 2:
// wrapping from the TransferWrap sentinel back to TransferStart, otherwise
// incrementing by one.
func NextTransferCount(current uint16) uint16 {
	if current == TransferWrap {
		return TransferStart
	}
	return current + 1
}

// NewerTransferCount reports whether candidate should replace current as
// the "most recently rotated to" block, applying the wrap tie-break rule
// from spec.md §4.1: a candidate at TransferStart is newer than one at
// TransferWrap (post-wrap), and TransferWrap itself is never treated as
// newer than anything (it is a "still wrapping" marker, not a valid active
// count on its own).
func NewerTransferCount(current, candidate uint16) bool {
	if current == TransferWrap {
		return candidate == TransferStart
	}
	return candidate > current && candidate != TransferWrap
}
