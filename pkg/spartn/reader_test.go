package spartn

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGADPayload returns a minimal GAD payload: one area block.
func buildGADPayload() []byte {
	buf := make([]byte, 10)
	pos := 0
	put := func(width int, v uint32) {
		setBitsU(buf, pos, width, v)
		pos += width
	}
	put(5, 3)
	put(1, 0)
	put(1, 1)
	put(5, 1)
	put(8, 7)
	put(15, 12345)
	put(16, uint32(uint16(int16(-5000))))
	put(5, 4)
	put(5, 5)
	put(7, 10)
	put(7, 20)
	return buf
}

// buildGADFrame assembles a complete, self-consistent SPARTN frame
// (preamble through CRC trailer) carrying a GAD payload, using crcType
// (0=CRC8) and corrupting the CRC trailer when badCRC is true.
func buildGADFrame(crcType CRCType, badCRC bool) []byte {
	payload := buildGADPayload()
	nData := len(payload)

	fsBuf := make([]byte, 3)
	setBitsU(fsBuf, 0, 7, uint32(msgGAD))
	setBitsU(fsBuf, 7, 10, uint32(nData))
	setBitsU(fsBuf, 17, 1, 0)
	setBitsU(fsBuf, 18, 2, uint32(crcType))
	setBitsU(fsBuf, 20, 4, 0)

	pdBuf := make([]byte, 4)
	setBitsU(pdBuf, 0, 4, 0)   // msgSubtype
	setBitsU(pdBuf, 4, 1, 0)   // timeTagType
	setBitsU(pdBuf, 5, 16, 100) // gnssTimeTag
	setBitsU(pdBuf, 21, 7, 1)  // solutionId
	setBitsU(pdBuf, 28, 4, 2)  // solutionProcId

	core := append(append(append([]byte{}, fsBuf...), pdBuf...), payload...)
	crcVal, err := Compute(crcType, core)
	if err != nil {
		panic(err)
	}
	trailer := make([]byte, crcType.Size())
	for i := 0; i < len(trailer); i++ {
		shift := uint((len(trailer) - 1 - i) * 8)
		trailer[i] = byte(crcVal >> shift)
	}
	if badCRC {
		trailer[len(trailer)-1] ^= 0xFF
	}

	out := append([]byte{Preamble}, core...)
	out = append(out, trailer...)
	return out
}

func TestReaderDecodesMinimalFrame(t *testing.T) {
	frame := buildGADFrame(CRC8, false)
	r, err := NewReader(bytes.NewReader(frame))
	require.NoError(t, err)

	raw, rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, frame, raw)
	assert.Equal(t, "SPARTN-1X-GAD", rec.Schema)

	_, _, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderResyncsAfterGarbage(t *testing.T) {
	frame := buildGADFrame(CRC8, false)
	stream := append([]byte{0x00, 0xFF, 0x12}, frame...)
	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	_, rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "SPARTN-1X-GAD", rec.Schema)
}

func TestReaderTruncatedFrameYieldsEOF(t *testing.T) {
	frame := buildGADFrame(CRC8, false)
	truncated := frame[:len(frame)-3]
	r, err := NewReader(bytes.NewReader(truncated))
	require.NoError(t, err)

	_, _, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderTruncatedFrameYieldsEOFUnderQuitRaise(t *testing.T) {
	// Per spec.md §7, a truncated frame is unconditional: it must emit
	// (nil, nil, io.EOF) even under QuitRaise, unlike InvalidCRC and
	// SchemaMismatch, which QuitRaise does turn into a returned error.
	frame := buildGADFrame(CRC8, false)
	truncated := frame[:len(frame)-3]
	r, err := NewReader(bytes.NewReader(truncated), WithQuitOnError(QuitRaise))
	require.NoError(t, err)

	raw, rec, err := r.Read()
	assert.ErrorIs(t, err, io.EOF)
	assert.Nil(t, raw)
	assert.Nil(t, rec)
}

func TestReaderInvalidCRCRaises(t *testing.T) {
	frame := buildGADFrame(CRC8, true)
	r, err := NewReader(bytes.NewReader(frame), WithQuitOnError(QuitRaise))
	require.NoError(t, err)

	_, _, err = r.Read()
	require.Error(t, err)
	var crcErr *InvalidCRCError
	assert.ErrorAs(t, err, &crcErr)
}

func TestReaderIterate(t *testing.T) {
	frame := buildGADFrame(CRC16, false)
	r, err := NewReader(bytes.NewReader(frame))
	require.NoError(t, err)

	next := r.Iterate()
	_, rec, ok := next()
	require.True(t, ok)
	assert.Equal(t, "SPARTN-1X-GAD", rec.Schema)

	_, _, ok = next()
	assert.False(t, ok)
}

// buildHPACGALPayload returns a minimal HPAC-GAL payload: one area,
// with both the tropo and iono blocks suppressed (SF040T=SF040I=0).
func buildHPACGALPayload() []byte {
	buf := make([]byte, 5)
	pos := 0
	put := func(width int, v uint32) {
		setBitsU(buf, pos, width, v)
		pos += width
	}
	put(5, 7) // SF005
	put(4, 2) // SF068
	put(1, 0) // SF069
	put(1, 1) // SF010
	put(5, 1) // SF030: one area

	put(8, 9) // SF031
	put(6, 0) // SF039
	put(2, 0) // SF040T: no tropo block
	put(2, 0) // SF040I: no iono block
	return buf
}

// TestReaderDecryptsHPACGAL builds a complete encrypted SPARTN frame
// (eaf=1) carrying an HPAC-GAL payload, encrypting it the same way
// decryptPayload decrypts it (AES-128-CTR is its own inverse under a
// shared counter), then reads it back through a Reader configured with
// WithDecrypt(true) and the same key, exercising decrypt.go end to end
// for the scenario spec.md §8(2) names.
func TestReaderDecryptsHPACGAL(t *testing.T) {
	plaintext := buildHPACGALPayload()
	nData := len(plaintext)
	const key = "000102030405060708090a0b0c0d0e0f"

	fsBuf := make([]byte, 3)
	setBitsU(fsBuf, 0, 7, uint32(msgHPAC))
	setBitsU(fsBuf, 7, 10, uint32(nData))
	setBitsU(fsBuf, 17, 1, 1) // eaf
	setBitsU(fsBuf, 18, 2, uint32(CRC16))
	setBitsU(fsBuf, 20, 4, 0)

	pdBuf := make([]byte, 6)
	setBitsU(pdBuf, 0, 4, uint32(subGAL)) // msgSubtype
	setBitsU(pdBuf, 4, 1, 0)              // timeTagType
	setBitsU(pdBuf, 5, 16, 500)           // gnssTimeTag
	setBitsU(pdBuf, 21, 7, 1)             // solutionId
	setBitsU(pdBuf, 28, 4, 2)             // solutionProcId
	setBitsU(pdBuf, 32, 4, 3)             // encryptionId
	setBitsU(pdBuf, 36, 6, 9)             // encryptionSeq
	setBitsU(pdBuf, 42, 3, 0)             // authInd: no embedded auth data
	setBitsU(pdBuf, 45, 3, 0)             // embAuthLen

	frame := Frame{
		MsgType:       msgHPAC,
		NData:         nData,
		MsgSubtype:    subGAL,
		TimeTagType:   false,
		GNSSTimeTag:   500,
		EncryptionID:  3,
		EncryptionSeq: 9,
	}
	ciphertext, err := decryptPayload(&frame, key, plaintext)
	require.NoError(t, err)

	core := append(append(append([]byte{}, fsBuf...), pdBuf...), ciphertext...)
	crcVal, err := Compute(CRC16, core)
	require.NoError(t, err)
	trailer := []byte{byte(crcVal >> 8), byte(crcVal)}

	raw := append([]byte{Preamble}, core...)
	raw = append(raw, trailer...)

	r, err := NewReader(bytes.NewReader(raw), WithDecrypt(true), WithKey(key))
	require.NoError(t, err)

	_, rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "SPARTN-1X-HPAC-GAL", rec.Schema)

	areaID, ok := rec.Get("SF031_01")
	require.True(t, ok)
	assert.Equal(t, int64(9), areaID.Value)
}

func TestReaderWithoutScaling(t *testing.T) {
	frame := buildGADFrame(CRC24Q, false)
	r, err := NewReader(bytes.NewReader(frame), WithScaling(false))
	require.NoError(t, err)

	_, rec, err := r.Read()
	require.NoError(t, err)
	f, ok := rec.Get("SF032_01")
	require.True(t, ok)
	_, isRational := f.Value.(Rational)
	assert.False(t, isRational, "scaling disabled: value should be the bare raw integer")
}
