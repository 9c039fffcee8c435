package spartn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRCSize(t *testing.T) {
	assert.Equal(t, 1, CRC8.Size())
	assert.Equal(t, 2, CRC16.Size())
	assert.Equal(t, 3, CRC24Q.Size())
	assert.Equal(t, 4, CRC32.Size())
}

func TestCRC8KnownVector(t *testing.T) {
	// CRC-8 (poly 0x07) of an empty message is 0.
	assert.Equal(t, uint8(0), CRC8Of(nil))
}

func TestCRCDeterministic(t *testing.T) {
	data := []byte("spartn-frame-core-bytes")
	assert.Equal(t, CRC16Of(data), CRC16Of(data))
	assert.Equal(t, CRC24QOf(data), CRC24QOf(data))
	assert.Equal(t, CRC32Of(data), CRC32Of(data))
}

func TestCRCChangesWithData(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03}
	b := []byte{0x01, 0x02, 0x04}
	assert.NotEqual(t, CRC24QOf(a), CRC24QOf(b))
}

func TestValidRoundTrip(t *testing.T) {
	core := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	v, err := Compute(CRC24Q, core)
	if err != nil {
		t.Fatal(err)
	}
	trailer := []byte{byte(v >> 16), byte(v >> 8), byte(v)}
	assert.True(t, Valid(CRC24Q, core, trailer))

	trailer[2] ^= 0xFF
	assert.False(t, Valid(CRC24Q, core, trailer))
}
