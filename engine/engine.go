// Package engine implements the emulation core: the in-RAM page buffer, the
// append path, the reverse-scan read resolver, and the block-transfer
// (compaction + rotation) procedure described in spec.md §3-§4. It is
// grounded on the teacher's cpu.Cpu (a per-instance struct wired to a
// mem.Bus, generalized here to a flash.Device) and cpu/instructions.go (one
// function per CPU opcode, generalized here to one function per engine
// operation).
package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/chanceme/emueeprom/flash"
)

// pageCRCSize is the width, in bytes, of the trailing per-page CRC field.
const pageCRCSize = 2

// Engine is the emulation core's RAM state (spec.md §3 "RAM state
// (singleton)"), generalized from a process-wide global (as in the
// distillation source and the teacher's debugger-driven Cpu) into a value
// owned by the caller, per spec.md §9's "avoid implicit globals" guidance.
type Engine struct {
	dev  flash.Device
	geom flash.Geometry

	pageBuffer []byte
	bufferPos  int
	currPage   int
	currBlock  int

	initialized bool

	log *logrus.Entry
}

// Info is a read-only snapshot of the engine's RAM state, for tests and
// diagnostics (spec.md §6 "info").
type Info struct {
	PageBuffer []byte
	BufferPos  int
	CurrPage   int
	CurrBlock  int
}

// New constructs an Engine over dev. The engine is not yet initialized;
// call Init before any other operation.
func New(dev flash.Device) *Engine {
	geom := dev.Geometry()
	return &Engine{
		dev:        dev,
		geom:       geom,
		pageBuffer: newErasedPage(geom.PageSize),
		log:        logrus.WithField("component", "engine"),
	}
}

func newErasedPage(pageSize int) []byte {
	p := make([]byte, pageSize)
	for i := range p {
		p[i] = flash.Erased
	}
	return p
}

// MaxVirtualAddr returns the exclusive upper bound of the virtual address
// space: BlockSize / 2 (spec.md §3).
func (e *Engine) MaxVirtualAddr() int { return e.geom.BlockSize / 2 }

// MaxDataPerPage returns the largest payload a single entry may carry
// without straddling a page boundary: PageSize - EntryHeaderSize - CRCSize.
func (e *Engine) MaxDataPerPage() int {
	return e.geom.PageSize - 4 - pageCRCSize
}

// pageCRCOffset returns the offset within a page where the trailing CRC
// field begins.
func (e *Engine) pageCRCOffset() int { return e.geom.PageSize - pageCRCSize }

// Initialized reports whether Init has been called without a matching
// Destroy.
func (e *Engine) Initialized() bool { return e.initialized }

// Info returns a snapshot of the current RAM state.
func (e *Engine) Info() Info {
	buf := make([]byte, len(e.pageBuffer))
	copy(buf, e.pageBuffer)
	return Info{
		PageBuffer: buf,
		BufferPos:  e.bufferPos,
		CurrPage:   e.currPage,
		CurrBlock:  e.currBlock,
	}
}

func (e *Engine) blockOffset(block int) int64 {
	return int64(block) * int64(e.geom.BlockSize)
}

func (e *Engine) pageOffset(block, page int) int64 {
	return e.blockOffset(block) + int64(page)*int64(e.geom.PageSize)
}
