package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// TCPSource streams bytes from a TCP correction feed (an NTRIP caster
// mountpoint, or any raw SPARTN-over-TCP relay). A dropped connection
// is not re-dialled: Data closes when the connection ends.
type TCPSource struct {
	*pollSource
}

// NewTCPSource dials addr (host:port) when the source is started. If
// the first dial fails it waits backoff and dials once more; backoff
// defaults to 5 seconds.
func NewTCPSource(addr string, bufSize int, backoff time.Duration) *TCPSource {
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	open := func(ctx context.Context) (io.ReadCloser, error) {
		var d net.Dialer
		conn, err := dialWithRetry(ctx, d, addr, backoff)
		if err != nil {
			return nil, fmt.Errorf("transport: dialing %s: %w", addr, err)
		}
		return conn, nil
	}
	return &TCPSource{pollSource: newPollSource(bufSize, open)}
}

// dialWithRetry dials addr and, if that fails, waits backoff (or until
// ctx is done) and dials a second and last time. It is called once per
// Start; nothing re-dials after an established connection drops.
func dialWithRetry(ctx context.Context, d net.Dialer, addr string, backoff time.Duration) (net.Conn, error) {
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err == nil {
		return conn, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(backoff):
	}
	return d.DialContext(ctx, "tcp", addr)
}
