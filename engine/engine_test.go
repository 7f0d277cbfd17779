package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanceme/emueeprom/flash"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dev, err := flash.NewMemory(flash.DefaultGeometry)
	require.NoError(t, err)
	e := New(dev)
	require.NoError(t, e.Init())
	return e
}

// S1: single-byte write/read.
func TestSingleByteWriteRead(t *testing.T) {
	e := newTestEngine(t)

	n, err := e.Write(1, []byte{0x01})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	out := make([]byte, 1)
	n, err = e.Read(1, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x01), out[0])
}

// S2: multi-page payload. At PAGE_SIZE=32, MaxDataPerPage=26, so a 32-byte
// payload straddles two pages.
func TestMultiPagePayload(t *testing.T) {
	e := newTestEngine(t)
	require.Equal(t, 26, e.MaxDataPerPage())

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = 0x01
	}

	_, err := e.Write(50, payload)
	require.NoError(t, err)

	out := make([]byte, 32)
	n, err := e.Read(50, out)
	require.NoError(t, err)
	assert.Equal(t, 32, n)
	assert.Equal(t, payload, out)
}

// S3: block transfer preserves data.
func TestBlockTransferPreservesData(t *testing.T) {
	e := newTestEngine(t)
	initialBlock := e.currBlock

	counter := 0
	addrs := []uint16{0, 32, 64, 96}
	i := 0
	for e.currBlock == initialBlock {
		v := addrs[i%len(addrs)]
		payload := make([]byte, 32)
		for j := range payload {
			payload[j] = byte(counter % 128)
			counter++
		}
		_, err := e.Write(v, payload)
		require.NoError(t, err)
		i++
	}

	for a := 0; a < 128; a++ {
		out := make([]byte, 1)
		n, err := e.Read(uint16(a), out)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, byte(a), out[0])
	}
}

// S4: erase removes data.
func TestEraseRemovesData(t *testing.T) {
	e := newTestEngine(t)

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = 0x01
	}
	_, err := e.Write(50, payload)
	require.NoError(t, err)

	_, err = e.Erase(50, 1)
	require.NoError(t, err)
	_, err = e.Flush()
	require.NoError(t, err)

	out := make([]byte, 1)
	n, err := e.Read(50, out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// S5: overwrite — latest write wins.
func TestOverwrite(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Write(10, []byte{0xAA})
	require.NoError(t, err)
	_, err = e.Write(10, []byte{0xBB})
	require.NoError(t, err)
	_, err = e.Flush()
	require.NoError(t, err)

	out := make([]byte, 1)
	n, err := e.Read(10, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0xBB), out[0])
}

// S6: partial coverage — only the overlapping indices are filled, others
// left untouched.
func TestPartialCoverage(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Write(5, []byte{0xAA, 0xAA, 0xAA})
	require.NoError(t, err)

	out := make([]byte, 7)
	for i := range out {
		out[i] = 0x42
	}
	n, err := e.Read(3, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x42, 0x42, 0xAA, 0xAA, 0xAA, 0x42, 0x42}, out)
}

// Invariant 1: round trip for a payload spanning multiple pages within one
// block.
func TestInvariantRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	payload := make([]byte, e.MaxDataPerPage()*3)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	n, err := e.Write(0, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	_, err = e.Flush()
	require.NoError(t, err)

	out := make([]byte, len(payload))
	n, err = e.Read(0, out)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, out)
}

// Invariant 2: latest-wins across overlapping ranges.
func TestInvariantLatestWins(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Write(0, []byte{1, 1, 1, 1})
	require.NoError(t, err)
	_, err = e.Write(2, []byte{2, 2})
	require.NoError(t, err)
	_, err = e.Flush()
	require.NoError(t, err)

	out := make([]byte, 4)
	n, err := e.Read(0, out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 1, 2, 2}, out)
}

// Invariant 5: block rotation bound — curr_block advances by one (mod
// block_total) per transfer.
func TestInvariantBlockRotationBound(t *testing.T) {
	e := newTestEngine(t)
	blockTotal := e.geom.BlockTotal

	seen := []int{e.currBlock}
	for k := 0; k < 3; k++ {
		before := e.currBlock
		counter := 0
		addrs := []uint16{0, 32, 64, 96}
		i := 0
		for e.currBlock == before {
			v := addrs[i%len(addrs)]
			payload := make([]byte, 32)
			for j := range payload {
				payload[j] = byte(counter % 128)
				counter++
			}
			_, err := e.Write(v, payload)
			require.NoError(t, err)
			i++
		}
		seen = append(seen, e.currBlock)
	}

	for k := 1; k < len(seen); k++ {
		assert.Equal(t, (seen[0]+k)%blockTotal, seen[k])
	}
}

// Invariant 6: init recovery — a fresh Engine over the same device recovers
// the same curr_block/curr_page.
func TestInvariantInitRecovery(t *testing.T) {
	dev, err := flash.NewMemory(flash.DefaultGeometry)
	require.NoError(t, err)

	e1 := New(dev)
	require.NoError(t, e1.Init())
	_, err = e1.Write(10, []byte{0xAA})
	require.NoError(t, err)
	_, err = e1.Flush()
	require.NoError(t, err)

	wantBlock, wantPage := e1.currBlock, e1.currPage

	e2 := New(dev)
	require.NoError(t, e2.Init())
	assert.Equal(t, wantBlock, e2.currBlock)
	assert.Equal(t, wantPage, e2.currPage)
}

func TestDoubleInitPanics(t *testing.T) {
	e := newTestEngine(t)
	assert.Panics(t, func() { _ = e.Init() })
}

func TestWriteBeforeInitPanics(t *testing.T) {
	dev, err := flash.NewMemory(flash.DefaultGeometry)
	require.NoError(t, err)
	e := New(dev)
	assert.Panics(t, func() { _, _ = e.Write(0, []byte{1}) })
}

func TestDestroyAllowsReInit(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Write(0, []byte{1})
	require.NoError(t, err)
	require.NoError(t, e.Destroy())
	require.NoError(t, e.Init())
	assert.Equal(t, 0, e.currBlock)
}
