package relay

import (
	"context"
	"io"
	"sync"
)

// Error is a simple string error type for relay-level sentinels.
type Error string

func (e Error) Error() string { return string(e) }

// ErrFeedNotFound is returned by Subscribe when no publisher has ever
// registered the requested feed name.
const ErrFeedNotFound = Error("relay: feed not found")

// Hub distributes raw SPARTN bytes published under a feed name (e.g.
// "us-base-station-1" or "/pp/ip") to every subscriber currently
// listening on that feed. It keeps no history: a subscriber only sees
// bytes published after it subscribes.
type Hub struct {
	mutex sync.RWMutex
	feeds map[string]*feed
}

type feed struct {
	name        string
	mutex       sync.RWMutex
	subscribers []chan []byte
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{feeds: make(map[string]*feed)}
}

// Feeds lists every feed name a publisher has registered, regardless
// of whether it currently has subscribers.
func (h *Hub) Feeds() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	names := make([]string, 0, len(h.feeds))
	for name := range h.feeds {
		names = append(names, name)
	}
	return names
}

// Publisher returns an io.WriteCloser: every Write fans its bytes out
// to the feed's current subscribers, dropping it for any subscriber
// whose channel is full rather than blocking the publisher.
func (h *Hub) Publisher(name string) io.WriteCloser {
	h.mutex.Lock()
	f, ok := h.feeds[name]
	if !ok {
		f = &feed{name: name}
		h.feeds[name] = f
	}
	h.mutex.Unlock()
	return &publisher{feed: f}
}

// Subscribe registers a new subscriber on an existing feed, returning
// a channel of raw byte chunks. The subscription is torn down
// automatically when ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context, name string) (<-chan []byte, error) {
	h.mutex.RLock()
	f, ok := h.feeds[name]
	h.mutex.RUnlock()
	if !ok {
		return nil, ErrFeedNotFound
	}

	ch := make(chan []byte, 32)
	f.mutex.Lock()
	f.subscribers = append(f.subscribers, ch)
	f.mutex.Unlock()

	go func() {
		<-ctx.Done()
		f.mutex.Lock()
		for i, sub := range f.subscribers {
			if sub == ch {
				f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
				break
			}
		}
		f.mutex.Unlock()
		close(ch)
	}()

	return ch, nil
}

type publisher struct {
	feed   *feed
	mutex  sync.Mutex
	closed bool
}

func (p *publisher) Write(data []byte) (int, error) {
	p.mutex.Lock()
	closed := p.closed
	p.mutex.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}

	chunk := make([]byte, len(data))
	copy(chunk, data)

	p.feed.mutex.RLock()
	for _, sub := range p.feed.subscribers {
		select {
		case sub <- chunk:
		default:
			// Subscriber too slow to keep up; drop rather than block the
			// publisher, same trade-off the distribution layer this is
			// grounded on makes.
		}
	}
	p.feed.mutex.RUnlock()

	return len(data), nil
}

func (p *publisher) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.closed = true
	return nil
}
