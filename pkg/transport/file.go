package transport

import (
	"context"
	"io"
	"os"
)

// FileSource replays a previously captured SPARTN byte stream from
// disk, useful for tests and offline analysis of a recorded feed.
type FileSource struct {
	*pollSource
}

// NewFileSource returns a source that opens path when started and
// delivers its bytes as fast as they are read, without pacing. Unlike SerialSource and
// TCPSource it reaches end-of-file rather than blocking for more
// data; callers should expect Data() to close once the file is fully
// delivered.
func NewFileSource(path string, bufSize int) *FileSource {
	open := func(ctx context.Context) (io.ReadCloser, error) {
		return os.Open(path)
	}
	return &FileSource{pollSource: newPollSource(bufSize, open)}
}
