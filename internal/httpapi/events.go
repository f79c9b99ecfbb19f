package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"viewerd/internal/viewer"
)

const (
	eventWriteTimeout = 10 * time.Second
	eventBufferSize   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream carries no client-specific state, so any origin may watch it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub fans coordinator events out to websocket subscribers. It
// implements viewer.EventPublisher; slow consumers are dropped rather
// than allowed to stall the coordinator.
type EventHub struct {
	mu      sync.Mutex
	clients map[*eventClient]struct{}
	closed  bool
}

type eventClient struct {
	ch   chan viewer.Event
	once sync.Once
}

func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*eventClient]struct{})}
}

// Publish implements viewer.EventPublisher. It never blocks: clients
// whose buffers are full miss the event.
func (h *EventHub) Publish(ev viewer.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.ch <- ev:
		default:
		}
	}
}

// Close disconnects all subscribers.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func (c *eventClient) close() { c.once.Do(func() { close(c.ch) }) }

func (h *EventHub) add(c *eventClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *EventHub) remove(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// ServeHTTP upgrades the connection and streams events as JSON frames.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	client := &eventClient{ch: make(chan viewer.Event, eventBufferSize)}
	if !h.add(client) {
		conn.Close()
		return
	}
	defer h.remove(client)
	defer conn.Close()

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	// Reader goroutine: we never expect client frames, but reading is
	// required to notice the peer closing the socket.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-client.ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				if zlog != nil {
					zlog.Debug().Err(err).Msg("events: drop subscriber")
				}
				return
			}
		}
	}
}
