package spartn

import "fmt"

// UnknownProtocolError reports a byte that was expected to be a SPARTN
// preamble (0x73) but wasn't.
type UnknownProtocolError struct {
	Byte   byte
	Offset int64
}

func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("spartn: unknown protocol byte 0x%02x at offset %d", e.Byte, e.Offset)
}

// TruncatedFrameError reports end-of-stream reached in the middle of a
// frame.
type TruncatedFrameError struct {
	Offset int64
	Stage  string
}

func (e *TruncatedFrameError) Error() string {
	return fmt.Sprintf("spartn: truncated frame at offset %d (reading %s)", e.Offset, e.Stage)
}

// InvalidCRCError reports a CRC mismatch on a fully read frame.
type InvalidCRCError struct {
	Want uint32
	Got  uint32
}

func (e *InvalidCRCError) Error() string {
	return fmt.Sprintf("spartn: invalid crc: frame says 0x%x, computed 0x%x", e.Got, e.Want)
}

// SchemaMismatchError reports a failure reconciling the payload schema
// with the decoded payload bytes: residual bits, a missing predicate
// field, or an unknown message identity.
type SchemaMismatchError struct {
	MsgType    int
	MsgSubtype int
	Reason     string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("spartn: schema mismatch for message type %d/%d: %s", e.MsgType, e.MsgSubtype, e.Reason)
}

// DecryptionFailureError reports a missing key or inconsistent key
// length when the encryption-and-authentication flag is set.
type DecryptionFailureError struct {
	Reason string
}

func (e *DecryptionFailureError) Error() string {
	return fmt.Sprintf("spartn: decryption failure: %s", e.Reason)
}

// ParameterError reports invalid Reader construction arguments.
type ParameterError struct {
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("spartn: parameter error: %s", e.Reason)
}
