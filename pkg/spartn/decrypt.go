package spartn

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
)

// decryptPayload decrypts payload++embAuth as a single contiguous
// block under AES-128 in counter mode, per spec.md §4.4. The initial
// counter is assembled from the transport header: msgType, nData,
// msgSubtype, timeTagType, gnssTimeTag (16-bit values are sign-extended
// to the 32-bit path when timeTagType is 0, matching the SPARTN ICD),
// encryptionId and encryptionSeq, zero-padded to 128 bits.
func decryptPayload(f *Frame, keyHex string, payload []byte) ([]byte, error) {
	if keyHex == "" {
		return nil, &DecryptionFailureError{Reason: "no key provided"}
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, &DecryptionFailureError{Reason: "key is not valid hex: " + err.Error()}
	}
	if len(key) != 16 {
		return nil, &DecryptionFailureError{Reason: "key must decode to 128 bits"}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &DecryptionFailureError{Reason: err.Error()}
	}

	iv := counterBlock(f)

	out := make([]byte, len(payload))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(out, payload)
	return out, nil
}

// counterBlock assembles the 128-bit initial AES-CTR counter from the
// header fields that identify this message, per spec.md §4.4.
func counterBlock(f *Frame) []byte {
	buf := make([]byte, 16)
	pos := 0

	setBitsU(buf, pos, 7, uint32(f.MsgType))
	pos += 7
	setBitsU(buf, pos, 10, uint32(f.NData))
	pos += 10
	setBitsU(buf, pos, 4, uint32(f.MsgSubtype))
	pos += 4

	var ttype uint32
	if f.TimeTagType {
		ttype = 1
	}
	setBitsU(buf, pos, 1, ttype)
	pos++

	gnssTimeTag := f.GNSSTimeTag
	if !f.TimeTagType {
		// 16-bit value sign-extended to the 32-bit path, per the ICD.
		if gnssTimeTag&0x8000 != 0 {
			gnssTimeTag |= 0xFFFF0000
		}
	}
	setBitsU(buf, pos, 32, gnssTimeTag)
	pos += 32

	setBitsU(buf, pos, 4, uint32(f.EncryptionID))
	pos += 4
	setBitsU(buf, pos, 6, uint32(f.EncryptionSeq))
	pos += 6

	// Remaining bits (pos..127) stay zero: the zero-padding to 128 bits.
	return buf
}
