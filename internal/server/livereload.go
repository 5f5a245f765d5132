package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/watzon/tessera/internal/metrics"
)

const (
	reloadWriteTimeout = 5 * time.Second
	reloadSendBuffer   = 8
)

// reloadMessage is what connected browsers receive on a theme change.
type reloadMessage struct {
	Event string `json:"event"`
	Path  string `json:"path,omitempty"`
}

type reloadClient struct {
	id     string
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

// ReloadHub fans theme-change notifications out to connected
// live-reload clients.
type ReloadHub struct {
	clients map[string]*reloadClient
	mu      sync.RWMutex
	closed  bool
}

// NewReloadHub creates an empty hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{
		clients: make(map[string]*reloadClient),
	}
}

// Handle upgrades the request to a websocket and keeps the client
// registered until it disconnects.
func (h *ReloadHub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Livereload upgrade failed")
		return
	}

	client := &reloadClient{
		id:     uuid.New().String(),
		conn:   conn,
		sendCh: make(chan []byte, reloadSendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	h.clients[client.id] = client
	h.mu.Unlock()

	metrics.LivereloadClientConnected()
	log.Debug().Str("client", client.id).Msg("Livereload client connected")

	defer func() {
		h.remove(client.id)
		metrics.LivereloadClientDisconnected()
		log.Debug().Str("client", client.id).Msg("Livereload client disconnected")
	}()

	go client.writePump(r.Context())

	// Reads are discarded; the socket exists only so the server can
	// push. Read failure is how we learn the browser went away.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			close(client.done)
			return
		}
	}
}

// Broadcast notifies every connected client that path changed. Slow
// clients are skipped rather than blocked on.
func (h *ReloadHub) Broadcast(path string) {
	payload, err := json.Marshal(reloadMessage{Event: "reload", Path: path})
	if err != nil {
		log.Error().Err(err).Msg("Marshaling reload message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.sendCh <- payload:
		default:
			log.Warn().Str("client", client.id).Msg("Livereload client send buffer full, dropping")
		}
	}
}

// Close disconnects all clients and rejects new ones.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, client := range h.clients {
		client.conn.Close(websocket.StatusGoingAway, "shutting down")
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected clients.
func (h *ReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *ReloadHub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

func (c *reloadClient) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case payload := <-c.sendCh:
			writeCtx, cancel := context.WithTimeout(ctx, reloadWriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				log.Debug().Err(err).Str("client", c.id).Msg("Livereload write failed")
				return
			}
		}
	}
}
