package flash

import "github.com/pkg/errors"

// Memory is an in-process, byte-slice-backed Device. It is the default
// medium for tests and for the CLI's in-memory mode. Grounded on the
// teacher's mem.Bus: a single fixed byte array addressed by offset, here
// generalized from a hardcoded 64KiB array and single-byte Read/Write to a
// geometry-sized buffer with ranged access and block erase.
type Memory struct {
	geom Geometry
	buf  []byte
}

// NewMemory allocates a Memory device of the given geometry, fully erased.
func NewMemory(geom Geometry) (*Memory, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, geom.FlashSize)
	for i := range buf {
		buf[i] = Erased
	}
	return &Memory{geom: geom, buf: buf}, nil
}

func (m *Memory) Geometry() Geometry { return m.geom }

func (m *Memory) ReadAt(offset int64, p []byte) (int, error) {
	if offset < 0 || int(offset)+len(p) > len(m.buf) {
		return 0, errors.Errorf("flash: read [%d,%d) out of range (size %d)", offset, int(offset)+len(p), len(m.buf))
	}
	n := copy(p, m.buf[offset:])
	return n, nil
}

func (m *Memory) WriteAt(offset int64, p []byte) (int, error) {
	if offset < 0 || int(offset)+len(p) > len(m.buf) {
		return 0, errors.Errorf("flash: write [%d,%d) out of range (size %d)", offset, int(offset)+len(p), len(m.buf))
	}
	n := copy(m.buf[offset:], p)
	return n, nil
}

func (m *Memory) EraseBlocks(blockNum, blockCount int) error {
	start := blockNum * m.geom.BlockSize
	end := start + blockCount*m.geom.BlockSize
	if start < 0 || end > len(m.buf) {
		return errors.Errorf("flash: erase [%d,%d) out of range (size %d)", start, end, len(m.buf))
	}
	for i := start; i < end; i++ {
		m.buf[i] = Erased
	}
	return nil
}
