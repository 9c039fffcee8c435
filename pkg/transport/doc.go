// Package transport supplies byte-stream sources for SPARTN correction
// feeds: a serial GNSS receiver port, a TCP/NTRIP-style correction
// feed, or a replay file. Each adapter exposes the same small Source
// interface so cmd/spartndump and cmd/spartn-relay can swap one for another
// without caring where the bytes actually come from; pkg/spartn itself
// only ever sees an io.Reader and never imports this package.
package transport
