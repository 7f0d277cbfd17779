package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndIsSet(t *testing.T) {
	bm := New(10)
	assert.False(t, bm.IsSet(0))
	assert.False(t, bm.IsSet(9))

	bm.Set(0)
	bm.Set(9)

	assert.True(t, bm.IsSet(0))
	assert.True(t, bm.IsSet(9))
	assert.False(t, bm.IsSet(1))
}

func TestAll(t *testing.T) {
	bm := New(3)
	assert.False(t, bm.All())
	bm.Set(0)
	bm.Set(1)
	assert.False(t, bm.All())
	bm.Set(2)
	assert.True(t, bm.All())
}

func TestCount(t *testing.T) {
	bm := New(17)
	assert.Equal(t, 0, bm.Count())
	bm.Set(0)
	bm.Set(16)
	assert.Equal(t, 2, bm.Count())
}

func TestSizingMatchesCeilDiv8(t *testing.T) {
	for _, tc := range []struct {
		n             int
		expectedBytes int
	}{
		{1, 1},
		{7, 1},
		{8, 1},
		{9, 2},
		{128, 16},
		{129, 17},
	} {
		bm := New(tc.n)
		assert.Len(t, bm.bits, tc.expectedBytes)
	}
}

func TestIndexOutOfRangePanics(t *testing.T) {
	bm := New(4)
	assert.Panics(t, func() { bm.Set(4) })
	assert.Panics(t, func() { bm.IsSet(-1) })
}
