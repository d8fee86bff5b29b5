package dyncrc16

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumEmptyIsZero(t *testing.T) {
	assert.Equal(t, uint16(0), Checksum(nil))
}

func TestChecksumMatchesIncrementalWrites(t *testing.T) {
	data := []byte(".FIT\x10\x00\x00\x00\x00\x00\x00\x00")

	whole := Checksum(data)

	h := New()
	for _, b := range data {
		h.Write([]byte{b})
	}
	assert.Equal(t, whole, h.Sum16())
}

func TestResetZeroesState(t *testing.T) {
	h := New()
	h.Write([]byte("some bytes"))
	assert.NotZero(t, h.Sum16())

	h.Reset()
	assert.Zero(t, h.Sum16())
}

func TestSumAppendsLittleEndianBytes(t *testing.T) {
	h := New()
	h.Write([]byte{1, 2, 3})
	sum := h.Sum16()

	got := h.Sum(nil)
	want := []byte{byte(sum), byte(sum >> 8)}
	assert.Equal(t, want, got)
}

func TestSizeAndBlockSize(t *testing.T) {
	h := New()
	assert.Equal(t, 2, h.Size())
	assert.Equal(t, 1, h.BlockSize())
}
