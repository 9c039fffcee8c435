// Command spartndump decodes a SPARTN byte stream from a file, serial
// port, or TCP connection and prints each decoded record.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-spartn/spartn/pkg/spartn"
	"github.com/go-spartn/spartn/pkg/transport"
	"github.com/sirupsen/logrus"
)

func main() {
	file := flag.String("file", "", "path to a recorded SPARTN byte stream")
	serialConfig := flag.String("serial", "", "serial source as path[:baud], e.g. /dev/ttyUSB0:115200")
	tcpAddr := flag.String("tcp", "", "TCP source address, e.g. 127.0.0.1:10015")
	key := flag.String("key", "", "hex decryption key (32 hex digits), if the feed is encrypted")
	quitMode := flag.String("on-error", "log", "error handling mode: ignore, log, raise")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	raw := flag.Bool("raw", false, "print raw JSON records instead of a human summary")
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	src, closer, err := openSource(*file, *serialConfig, *tcpAddr)
	if err != nil {
		logger.Fatalf("failed to open source: %v", err)
	}
	defer closer()

	opts := []spartn.Option{spartn.WithQuitOnError(parseQuitMode(*quitMode))}
	if *key != "" {
		opts = append(opts, spartn.WithDecrypt(true), spartn.WithKey(*key))
	}
	opts = append(opts, spartn.WithErrorHandler(func(err error) {
		logger.WithError(err).Warn("decode error")
	}))

	reader, err := spartn.NewReader(src, opts...)
	if err != nil {
		logger.Fatalf("failed to construct reader: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-sigCh
		logger.Info("interrupted, shutting down")
		close(done)
	}()

	next := reader.Iterate()
	count := 0
	for {
		select {
		case <-done:
			logger.WithField("records", count).Info("stopped")
			return
		default:
		}

		_, rec, ok := next()
		if !ok {
			logger.WithField("records", count).Info("end of stream")
			return
		}
		count++
		printRecord(rec, *raw)
	}
}

func printRecord(rec *spartn.Record, raw bool) {
	if raw {
		b, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
			return
		}
		fmt.Println(string(b))
		return
	}
	fmt.Printf("%s type=%d subtype=%d fields=%d\n", rec.Schema, rec.MsgType, rec.MsgSubtype, len(rec.Fields))
}

func parseQuitMode(s string) spartn.QuitOnError {
	switch s {
	case "ignore":
		return spartn.QuitIgnore
	case "raise":
		return spartn.QuitRaise
	default:
		return spartn.QuitLog
	}
}

// openSource picks the first set of the three input flags (file, then
// serial, then TCP), or stdin when none is set, and returns an
// io.Reader over it along with a cleanup func.
func openSource(file, serialConfig, tcpAddr string) (io.Reader, func(), error) {
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil

	case serialConfig != "":
		src, err := transport.NewSerialSource(serialConfig, 4096)
		if err != nil {
			return nil, nil, err
		}
		return openTransportSource(src)

	case tcpAddr != "":
		return openTransportSource(transport.NewTCPSource(tcpAddr, 4096, 5*time.Second))

	default:
		return os.Stdin, func() {}, nil
	}
}

func openTransportSource(src transport.Source) (io.Reader, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	if err := src.Start(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	return &channelReader{ch: src.Data()}, func() { cancel(); src.Stop() }, nil
}

// channelReader adapts a <-chan []byte, as produced by transport.Source,
// to an io.Reader for spartn.NewReader to consume.
type channelReader struct {
	ch   <-chan []byte
	left []byte
}

func (c *channelReader) Read(p []byte) (int, error) {
	if len(c.left) == 0 {
		chunk, ok := <-c.ch
		if !ok {
			return 0, io.EOF
		}
		c.left = chunk
	}
	n := copy(p, c.left)
	c.left = c.left[n:]
	return n, nil
}
