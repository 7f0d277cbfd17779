package flash

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStartsErased(t *testing.T) {
	m, err := NewMemory(DefaultGeometry)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := m.ReadAt(0, buf)
	require.NoError(t, err)
	assert.Equal(t, 64, n)
	for _, b := range buf {
		assert.Equal(t, Erased, b)
	}
}

func TestMemoryWriteReadRoundTrip(t *testing.T) {
	m, err := NewMemory(DefaultGeometry)
	require.NoError(t, err)

	data := []byte{0x01, 0x02, 0x03, 0x04}
	_, err = m.WriteAt(100, data)
	require.NoError(t, err)

	out := make([]byte, len(data))
	_, err = m.ReadAt(100, out)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestMemoryEraseBlockResetsToErased(t *testing.T) {
	m, err := NewMemory(DefaultGeometry)
	require.NoError(t, err)

	_, err = m.WriteAt(0, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	require.NoError(t, m.EraseBlocks(0, 1))

	out := make([]byte, 3)
	_, err = m.ReadAt(0, out)
	require.NoError(t, err)
	assert.Equal(t, []byte{Erased, Erased, Erased}, out)
}

func TestMemoryOutOfRange(t *testing.T) {
	m, err := NewMemory(DefaultGeometry)
	require.NoError(t, err)

	_, err = m.ReadAt(int64(DefaultGeometry.FlashSize), []byte{0})
	assert.Error(t, err)

	_, err = m.WriteAt(-1, []byte{0})
	assert.Error(t, err)
}

func TestGeometryValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		geom Geometry
		ok   bool
	}{
		{"canonical", DefaultGeometry, true},
		{"block not multiple of page", Geometry{PageSize: 32, BlockSize: 100, FlashSize: 65536, BlockTotal: 2}, false},
		{"flash not multiple of block", Geometry{PageSize: 32, BlockSize: 4096, FlashSize: 65535, BlockTotal: 2}, false},
		{"zero page", Geometry{PageSize: 0, BlockSize: 4096, FlashSize: 65536, BlockTotal: 2}, false},
		{"zero block total", Geometry{PageSize: 32, BlockSize: 4096, FlashSize: 65536, BlockTotal: 0}, false},
		{"block total exceeds physical blocks", Geometry{PageSize: 32, BlockSize: 4096, FlashSize: 65536, BlockTotal: 17}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.geom.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFilePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	f, err := OpenFile(path, DefaultGeometry)
	require.NoError(t, err)

	_, err = f.WriteAt(10, []byte{0xAA, 0xBB})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := OpenFile(path, DefaultGeometry)
	require.NoError(t, err)
	defer f2.Close()

	out := make([]byte, 2)
	_, err = f2.ReadAt(10, out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, out)
}

func TestFileFormatsFreshFileErased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	f, err := OpenFile(path, DefaultGeometry)
	require.NoError(t, err)
	defer f.Close()

	out := make([]byte, 32)
	_, err = f.ReadAt(0, out)
	require.NoError(t, err)
	for _, b := range out {
		assert.Equal(t, Erased, b)
	}
}
