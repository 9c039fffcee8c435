package transport

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// SerialSource streams bytes from a local serial port carrying a
// SPARTN feed from a GNSS receiver's correction output.
type SerialSource struct {
	*pollSource
}

// NewSerialSource opens a serial port described by "path[:baud]",
// e.g. "/dev/ttyACM0:115200", mirroring the colon-separated
// configuration string idiom used elsewhere in this codebase's
// lineage. baud defaults to 9600 when omitted.
func NewSerialSource(config string, bufSize int) (*SerialSource, error) {
	path, baud, err := parseSerialConfig(config)
	if err != nil {
		return nil, err
	}
	mode := &serial.Mode{BaudRate: baud}

	open := func(ctx context.Context) (io.ReadCloser, error) {
		port, err := serial.Open(path, mode)
		if err != nil {
			return nil, fmt.Errorf("transport: opening serial port %s: %w", path, err)
		}
		return port, nil
	}
	return &SerialSource{pollSource: newPollSource(bufSize, open)}, nil
}

func parseSerialConfig(config string) (path string, baud int, err error) {
	parts := strings.SplitN(config, ":", 2)
	path = parts[0]
	if path == "" {
		return "", 0, fmt.Errorf("transport: empty serial port path")
	}
	baud = 9600
	if len(parts) == 2 && parts[1] != "" {
		baud, err = strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, fmt.Errorf("transport: invalid baud rate %q: %w", parts[1], err)
		}
	}
	return path, baud, nil
}
