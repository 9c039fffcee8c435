package spartn

import (
	"bufio"
	"errors"
	"io"
)

// QuitOnError selects how a Reader reacts to a recoverable per-frame
// error (a bad CRC, an unparseable schema, a decryption failure):
// ignore it and resynchronize on the next frame, report it to the
// configured error handler and resynchronize, or return it to the
// caller and stop.
type QuitOnError int

const (
	QuitIgnore QuitOnError = iota
	QuitLog
	QuitRaise
)

// Option configures a Reader. Options follow the functional-options
// shape rather than a config struct, so New call sites only name the
// fields they actually override.
type Option func(*Reader)

func WithBufSize(n int) Option {
	return func(r *Reader) { r.bufSize = n }
}

// WithValidate enables or disables CRC verification. It is on by
// default; turn it off only to recover fields from a stream with a
// known-bad CRC implementation upstream.
func WithValidate(v bool) Option {
	return func(r *Reader) { r.validate = v }
}

// WithDecrypt enables AES-128-CTR decryption of frames with the
// encryption-and-authentication flag set, using key for every such
// frame regardless of its EncryptionID (the key is out of band).
func WithDecrypt(enabled bool) Option {
	return func(r *Reader) { r.decrypt = enabled }
}

func WithKey(hexKey string) Option {
	return func(r *Reader) { r.key = hexKey }
}

func WithQuitOnError(q QuitOnError) Option {
	return func(r *Reader) { r.quitOnError = q }
}

// WithErrorHandler registers the callback invoked for every recoverable
// error when WithQuitOnError(QuitLog) is set. The default handler
// discards the error.
func WithErrorHandler(h func(error)) Option {
	return func(r *Reader) { r.errHandler = h }
}

// WithScaling controls whether scaled fields (spec.md §3.3) decode to
// a Rational (the default) or to the bare raw integer, for callers
// that want to apply their own fixed-point arithmetic.
func WithScaling(enabled bool) Option {
	return func(r *Reader) { r.scaling = enabled }
}

// Reader parses SPARTN frames one at a time from a byte stream. It is
// not safe for concurrent use by multiple goroutines: it holds no
// internal concurrency of its own, by design (see DESIGN.md); callers
// that want to fan a single stream out to many consumers should each
// own a private Reader, or do so above this package in pkg/relay.
type Reader struct {
	ds io.Reader
	br *bufio.Reader

	bufSize     int
	validate    bool
	decrypt     bool
	key         string
	quitOnError QuitOnError
	errHandler  func(error)
	scaling     bool

	offset int64
}

// NewReader constructs a Reader over datastream. Validation is on,
// scaling is on and the error mode is QuitLog by default; decryption is
// off until WithDecrypt and WithKey are both supplied.
func NewReader(datastream io.Reader, opts ...Option) (*Reader, error) {
	if datastream == nil {
		return nil, &ParameterError{Reason: "datastream must not be nil"}
	}
	r := &Reader{
		ds:          datastream,
		bufSize:     defaultBufSize,
		validate:    true,
		scaling:     true,
		quitOnError: QuitLog,
		errHandler:  func(error) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.bufSize <= 0 {
		return nil, &ParameterError{Reason: "bufSize must be positive"}
	}
	if r.decrypt && r.key == "" {
		return nil, &ParameterError{Reason: "WithDecrypt requires WithKey"}
	}
	r.br = bufio.NewReaderSize(r.ds, r.bufSize)
	return r, nil
}

// DataStream returns the underlying byte stream.
func (r *Reader) DataStream() io.Reader { return r.ds }

// Read decodes and returns the next frame's raw bytes (preamble
// through CRC trailer) and its parsed Record. It returns io.EOF when
// the stream ends cleanly between frames.
//
// Per-frame errors are handled according to the Reader's QuitOnError
// setting: QuitRaise returns the error immediately, QuitLog reports it
// to the error handler and resynchronizes on the next preamble byte,
// QuitIgnore resynchronizes silently.
func (r *Reader) Read() ([]byte, *Record, error) {
	for {
		raw, rec, err := r.readOneFrame()
		if err == nil {
			return raw, rec, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		var truncated *TruncatedFrameError
		if errors.As(err, &truncated) {
			// Unconditional per spec.md §7: EOF mid-frame always emits
			// (nil, nil) and stops, regardless of quitOnError, unlike
			// InvalidCRC/SchemaMismatch, which are gated on it.
			return nil, nil, io.EOF
		}
		switch r.quitOnError {
		case QuitRaise:
			return nil, nil, err
		case QuitLog:
			r.errHandler(err)
		case QuitIgnore:
		}
		// Resynchronization happens naturally: readOneFrame always starts
		// its next call by scanning for the next preamble byte.
	}
}

// Iterate returns a closure-based puller: each call decodes the next
// frame and returns (raw, record, true), or (nil, nil, false) once the
// stream is exhausted. This mirrors Python's __next__/StopIteration
// shape without spawning a goroutine to drive a channel, preserving
// the single-threaded invariant documented in DESIGN.md.
func (r *Reader) Iterate() func() ([]byte, *Record, bool) {
	return func() ([]byte, *Record, bool) {
		raw, rec, err := r.Read()
		if err != nil {
			return nil, nil, false
		}
		return raw, rec, true
	}
}

// Parse decodes a single, already-delimited frame (preamble through
// CRC trailer) without needing a Reader or its buffering. It applies
// the same validation and decryption rules as a Reader constructed
// with the given options.
func Parse(frameBytes []byte, opts ...Option) (*Record, error) {
	r, err := NewReader(noopReader{}, opts...)
	if err != nil {
		return nil, err
	}
	r.br = bufio.NewReader(newSliceReader(frameBytes))
	_, rec, err := r.readOneFrame()
	return rec, err
}

type noopReader struct{}

func (noopReader) Read([]byte) (int, error) { return 0, io.EOF }

func newSliceReader(b []byte) io.Reader { return &sliceReader{b: b} }

type sliceReader struct {
	b   []byte
	pos int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += n
	return n, nil
}

// readOneFrame implements the AWAIT_PREAMBLE -> READ_FRAMESTART ->
// READ_PAYDESC -> READ_PAYLOAD -> READ_EMBAUTH? -> READ_CRC -> EMIT
// state machine of spec.md §4.3.
func (r *Reader) readOneFrame() ([]byte, *Record, error) {
	if err := r.awaitPreamble(); err != nil {
		return nil, nil, err
	}

	fsBuf := make([]byte, 3)
	if _, err := io.ReadFull(r.br, fsBuf); err != nil {
		return nil, nil, r.truncated("framestart", err)
	}
	r.offset += 3

	msgType, nData, eafBit, crcTypeVal, frameCRC, err := decodeFrameStart(fsBuf)
	if err != nil {
		return nil, nil, err
	}
	eaf := eafBit != 0
	crcType := CRCType(crcTypeVal)

	pdBuf := make([]byte, 4)
	if _, err := io.ReadFull(r.br, pdBuf); err != nil {
		return nil, nil, r.truncated("payDesc", err)
	}
	r.offset += 4

	ttypeBit, err := BitsU(pdBuf, 4, 1)
	if err != nil {
		return nil, nil, err
	}
	timeTagType := ttypeBit != 0
	if timeTagType {
		extra := make([]byte, 2)
		if _, err := io.ReadFull(r.br, extra); err != nil {
			return nil, nil, r.truncated("payDesc (time tag)", err)
		}
		r.offset += 2
		pdBuf = append(pdBuf, extra...)
	}
	if eaf {
		extra := make([]byte, 2)
		if _, err := io.ReadFull(r.br, extra); err != nil {
			return nil, nil, r.truncated("payDesc (encryption)", err)
		}
		r.offset += 2
		pdBuf = append(pdBuf, extra...)
	}

	frame, err := decodePayDesc(pdBuf, eaf)
	if err != nil {
		return nil, nil, err
	}
	frame.MsgType = msgType
	frame.NData = nData
	frame.EAF = eaf
	frame.CRCType = crcType
	frame.FrameCRC = frameCRC

	payload := getPayloadBuf(nData)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		putPayloadBuf(payload)
		return nil, nil, r.truncated("payload", err)
	}
	r.offset += int64(nData)

	var embAuth []byte
	if eaf && frame.AuthInd > 1 {
		n := embAuthByteLen(frame.EmbAuthLen)
		embAuth = make([]byte, n)
		if n > 0 {
			if _, err := io.ReadFull(r.br, embAuth); err != nil {
				putPayloadBuf(payload)
				return nil, nil, r.truncated("embAuth", err)
			}
			r.offset += int64(n)
		}
	}

	crcTrailer := make([]byte, crcType.Size())
	if _, err := io.ReadFull(r.br, crcTrailer); err != nil {
		putPayloadBuf(payload)
		return nil, nil, r.truncated("crc", err)
	}
	r.offset += int64(len(crcTrailer))

	raw := assembleRaw(fsBuf, pdBuf, payload, embAuth, crcTrailer)

	if r.validate {
		core := raw[:len(raw)-len(crcTrailer)]
		if !Valid(crcType, core, crcTrailer) {
			putPayloadBuf(payload)
			want, _ := Compute(crcType, core)
			got := beToU32(crcTrailer)
			return nil, nil, &InvalidCRCError{Want: want, Got: got}
		}
	}

	if eaf && r.decrypt {
		combined := append(append([]byte{}, payload...), embAuth...)
		plain, err := decryptPayload(&frame, r.key, combined)
		putPayloadBuf(payload)
		if err != nil {
			return nil, nil, err
		}
		payload = plain[:nData]
		if len(plain) > nData {
			embAuth = plain[nData:]
		}
	} else {
		defer putPayloadBuf(payload)
	}

	rec, err := decodePayload(frame.MsgType, frame.MsgSubtype, payload)
	if err != nil {
		return nil, nil, err
	}
	if !r.scaling {
		stripScaling(rec)
	}
	return raw, rec, nil
}

func (r *Reader) awaitPreamble() error {
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return err // io.EOF between frames is the clean-exit path
		}
		r.offset++
		if b == Preamble {
			return nil
		}
		// Not a frame start: treat as noise and keep scanning, per
		// spec.md's resynchronization requirement. Reported to the error
		// handler under QuitLog and QuitRaise; Read never receives it.
		if r.quitOnError != QuitIgnore {
			r.errHandler(&UnknownProtocolError{Byte: b, Offset: r.offset - 1})
		}
	}
}

func (r *Reader) truncated(stage string, cause error) error {
	if errors.Is(cause, io.EOF) || errors.Is(cause, io.ErrUnexpectedEOF) {
		return &TruncatedFrameError{Offset: r.offset, Stage: stage}
	}
	return cause
}

func assembleRaw(fsBuf, pdBuf, payload, embAuth, crcTrailer []byte) []byte {
	total := 1 + len(fsBuf) + len(pdBuf) + len(payload) + len(embAuth) + len(crcTrailer)
	out := make([]byte, 0, total)
	out = append(out, Preamble)
	out = append(out, fsBuf...)
	out = append(out, pdBuf...)
	out = append(out, payload...)
	out = append(out, embAuth...)
	out = append(out, crcTrailer...)
	return out
}

func beToU32(b []byte) uint32 {
	var v uint32
	for _, x := range b {
		v = (v << 8) | uint32(x)
	}
	return v
}

// stripScaling replaces every Rational field value with its bare raw
// integer, for WithScaling(false) callers.
func stripScaling(rec *Record) {
	for i, f := range rec.Fields {
		if rat, ok := f.Value.(Rational); ok {
			rec.Fields[i].Value = rat.Raw
		}
	}
}
