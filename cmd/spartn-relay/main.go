// Command spartn-relay reads a SPARTN byte stream from a serial port,
// TCP connection, or file, and republishes it over HTTP to any number
// of subscribers, the way an NTRIP caster republishes a base station's
// RTCM corrections to rovers.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-spartn/spartn/pkg/relay"
	"github.com/go-spartn/spartn/pkg/transport"
	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", ":2101", "address to serve the relay HTTP endpoint on")
	feed := flag.String("feed-name", "SPARTN1", "name this source is published under")
	description := flag.String("feed-description", "SPARTN correction stream", "feed description shown in the sourcetable listing")
	file := flag.String("file", "", "path to a recorded SPARTN byte stream")
	serialConfig := flag.String("serial", "", "serial source as path[:baud]")
	tcpAddr := flag.String("tcp", "", "TCP source address to read corrections from")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	src, err := buildSource(*file, *serialConfig, *tcpAddr)
	if err != nil {
		logger.Fatalf("failed to configure source: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := src.Start(ctx); err != nil {
		logger.Fatalf("failed to start source: %v", err)
	}
	defer src.Stop()

	hub := relay.NewHub()
	pub := hub.Publisher(*feed)
	go pumpSource(src.Data(), pub, logger)

	table := relay.FeedTable{Feeds: []relay.FeedEntry{
		{Name: *feed, Description: *description, Format: "SPARTN-2.0", CountryCode: "", Bitrate: 0},
	}}

	srv := relay.NewServer(*addr, hub, table, logger)

	go func() {
		logger.WithField("addr", *addr).Info("relay listening")
		if err := srv.ListenAndServe(); err != nil && err != io.EOF {
			logger.WithError(err).Warn("relay server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("error during shutdown")
	}
}

func buildSource(file, serialConfig, tcpAddr string) (transport.Source, error) {
	switch {
	case file != "":
		return transport.NewFileSource(file, 4096), nil
	case serialConfig != "":
		return transport.NewSerialSource(serialConfig, 4096)
	case tcpAddr != "":
		return transport.NewTCPSource(tcpAddr, 4096, 5*time.Second), nil
	default:
		return nil, errNoSource
	}
}

var errNoSource = flagError("one of -file, -serial, or -tcp is required")

type flagError string

func (e flagError) Error() string { return string(e) }

func pumpSource(data <-chan []byte, pub io.WriteCloser, logger logrus.FieldLogger) {
	defer pub.Close()
	for chunk := range data {
		if _, err := pub.Write(chunk); err != nil {
			logger.WithError(err).Warn("publish failed")
			return
		}
	}
}
