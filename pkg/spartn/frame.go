package spartn

// Preamble is the fixed first byte of every SPARTN transport frame.
const Preamble byte = 0x73

// Frame is the decoded transport-layer header of one SPARTN message,
// covering spec.md §3.1's framestart and payDesc fields.
type Frame struct {
	MsgType    int
	NData      int // payload length in bytes
	EAF        bool
	CRCType    CRCType
	FrameCRC   int // header checksum, carried but not validated
	MsgSubtype int

	TimeTagType bool
	GNSSTimeTag uint32

	SolutionID     int
	SolutionProcID int

	// Present only when EAF is set.
	EncryptionID  int
	EncryptionSeq int
	AuthInd       int
	EmbAuthLen    int
}

// payDescLen returns the length in bytes of the payload descriptor
// block, resolved from eaf and timeTagType per spec.md §3.1: baseline
// 4 bytes, +2 if timeTagType, +2 more if eaf (the later, clarified
// shape referenced in spec.md §9(1)).
func payDescLen(eaf, timeTagType bool) int {
	n := 4
	if timeTagType {
		n += 2
	}
	if eaf {
		n += 2
	}
	return n
}

// embAuthByteLen resolves the embedded authentication data length in bytes
// from the embAuthLen header field, per spec.md §4.3 step 5. Only
// meaningful when authInd > 1.
func embAuthByteLen(embAuthLenField int) int {
	switch embAuthLenField {
	case 0:
		return 8
	case 1:
		return 12
	case 2:
		return 16
	case 3:
		return 32
	case 4:
		return 64
	default:
		return 0
	}
}

// decodeFrameStart parses the 3-byte framestart block.
func decodeFrameStart(b []byte) (msgType, nData, eaf, crcType, frameCRC int, err error) {
	mt, err := BitsU(b, 0, 7)
	if err != nil {
		return
	}
	nd, err := BitsU(b, 7, 10)
	if err != nil {
		return
	}
	ea, err := BitsU(b, 17, 1)
	if err != nil {
		return
	}
	ct, err := BitsU(b, 18, 2)
	if err != nil {
		return
	}
	fc, err := BitsU(b, 20, 4)
	if err != nil {
		return
	}
	return int(mt), int(nd), int(ea), int(ct), int(fc), nil
}

// decodePayDesc parses the payload descriptor block, whose length has
// already been resolved via payDescLen.
func decodePayDesc(b []byte, eaf bool) (f Frame, err error) {
	msgSubtype, err := BitsU(b, 0, 4)
	if err != nil {
		return f, err
	}
	f.MsgSubtype = int(msgSubtype)

	ttype, err := BitsU(b, 4, 1)
	if err != nil {
		return f, err
	}
	f.TimeTagType = ttype != 0

	gtlen := 16
	if f.TimeTagType {
		gtlen = 32
	}
	gtt, err := BitsU(b, 5, gtlen)
	if err != nil {
		return f, err
	}
	f.GNSSTimeTag = gtt

	sol, err := BitsU(b, 5+gtlen, 7)
	if err != nil {
		return f, err
	}
	f.SolutionID = int(sol)

	solProc, err := BitsU(b, 5+gtlen+7, 4)
	if err != nil {
		return f, err
	}
	f.SolutionProcID = int(solProc)

	if eaf {
		base := 5 + gtlen + 11
		encID, err := BitsU(b, base, 4)
		if err != nil {
			return f, err
		}
		f.EncryptionID = int(encID)

		encSeq, err := BitsU(b, base+4, 6)
		if err != nil {
			return f, err
		}
		f.EncryptionSeq = int(encSeq)

		authInd, err := BitsU(b, base+10, 3)
		if err != nil {
			return f, err
		}
		f.AuthInd = int(authInd)

		embLen, err := BitsU(b, base+13, 3)
		if err != nil {
			return f, err
		}
		f.EmbAuthLen = int(embLen)
	}

	return f, nil
}
