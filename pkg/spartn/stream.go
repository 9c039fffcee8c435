package spartn

import "sync"

// payloadBufPool recycles the byte slices used to hold one frame's
// payload bytes across Reader calls, the same pattern the RTCM parser
// this package's reader is grounded on uses for its message buffers:
// SPARTN streams commonly carry thousands of frames per minute, and
// reusing a handful of backing arrays avoids an allocation per frame.
var payloadBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 512)
		return &b
	},
}

func getPayloadBuf(n int) []byte {
	p := payloadBufPool.Get().(*[]byte)
	b := *p
	if cap(b) < n {
		b = make([]byte, n)
	} else {
		b = b[:n]
	}
	return b
}

func putPayloadBuf(b []byte) {
	b = b[:0]
	payloadBufPool.Put(&b)
}

const defaultBufSize = 4096
