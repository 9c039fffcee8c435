package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// requestIDContextKey is the context key a request's generated ID is
// stored under, for handlers further down the chain that want it.
type requestIDContextKey struct{}

// Server wraps http.Server, exposing a Hub's feeds over plain HTTP:
// GET "/" lists known feeds, GET "/<feed>" subscribes and streams
// chunked bytes, POST "/<feed>" accepts a publisher's upload.
type Server struct {
	http.Server
}

// NewServer constructs a Server bound to addr, serving hub's feeds.
// Feed descriptions for the "/" listing come from table; entries with
// no matching hub feed are omitted from what's actually streamable,
// but still listed (a feed can be announced before its first
// publisher connects).
func NewServer(addr string, hub *Hub, table FeedTable, logger logrus.FieldLogger) *Server {
	return &Server{
		http.Server{
			Addr:        addr,
			Handler:     newHandler(hub, table, logger),
			IdleTimeout: 10 * time.Second,
		},
	}
}

func newHandler(hub *Hub, table FeedTable, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)

		username, _, _ := r.BasicAuth()
		l := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       r.URL.Path,
			"method":     r.Method,
			"source_ip":  r.RemoteAddr,
			"username":   username,
		})

		h := &handler{hub: hub, table: table, logger: l}
		h.handleRequest(w, r.WithContext(ctx))
	})
}

type handler struct {
	hub    *Hub
	table  FeedTable
	logger logrus.FieldLogger
}

func (h *handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	feed := strings.Trim(r.URL.Path, "/")

	if feed == "" {
		h.serveTable(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.serveSubscriber(w, r, feed)
	case http.MethodPost, http.MethodPut:
		h.servePublisher(w, r, feed)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) serveTable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, h.table.String())
}

func (h *handler) serveSubscriber(w http.ResponseWriter, r *http.Request, feed string) {
	ch, err := h.hub.Subscribe(r.Context(), feed)
	if err != nil {
		h.logger.WithError(err).Warn("subscribe failed")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		// Send the headers now so the client's request returns before the
		// first chunk is published.
		flusher.Flush()
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case chunk, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(chunk); err != nil {
				h.logger.WithError(err).Debug("subscriber write failed, closing")
				return
			}
			if canFlush {
				flusher.Flush()
			}
		}
	}
}

func (h *handler) servePublisher(w http.ResponseWriter, r *http.Request, feed string) {
	pub := h.hub.Publisher(feed)
	defer pub.Close()

	n, err := io.Copy(pub, r.Body)
	if err != nil {
		h.logger.WithError(err).Warn("publisher stream ended with error")
	}
	h.logger.WithField("bytes", n).Info("publisher stream ended")
	fmt.Fprintf(w, "ok\n")
}
