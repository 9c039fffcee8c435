package transport

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

func TestFileSourceDeliversAllBytesThenCloses(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "spartn-transport-*.bin")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	want := bytes.Repeat([]byte{0x73, 0x01, 0x02, 0x03}, 50)
	if _, err := f.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	src := NewFileSource(f.Name(), 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer src.Stop()

	var got []byte
	timeout := time.After(2 * time.Second)
	for {
		select {
		case chunk, ok := <-src.Data():
			if !ok {
				if !bytes.Equal(got, want) {
					t.Fatalf("got %d bytes, want %d", len(got), len(want))
				}
				return
			}
			got = append(got, chunk...)
		case <-timeout:
			t.Fatal("timed out waiting for file source to close")
		}
	}
}

func TestFileSourceMissingFileErrors(t *testing.T) {
	src := NewFileSource("/nonexistent/path/for/spartn/test", 16)
	if err := src.Start(context.Background()); err == nil {
		t.Fatal("expected error opening a nonexistent file")
	}
}

func TestParseSerialConfig(t *testing.T) {
	cases := []struct {
		in       string
		wantPath string
		wantBaud int
		wantErr  bool
	}{
		{"/dev/ttyUSB0", "/dev/ttyUSB0", 9600, false},
		{"/dev/ttyUSB0:115200", "/dev/ttyUSB0", 115200, false},
		{":115200", "", 0, true},
		{"/dev/ttyUSB0:notanumber", "", 0, true},
	}
	for _, c := range cases {
		path, baud, err := parseSerialConfig(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseSerialConfig(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSerialConfig(%q): unexpected error %v", c.in, err)
			continue
		}
		if path != c.wantPath || baud != c.wantBaud {
			t.Errorf("parseSerialConfig(%q) = (%q, %d), want (%q, %d)", c.in, path, baud, c.wantPath, c.wantBaud)
		}
	}
}
