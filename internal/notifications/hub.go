package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"hotorflop/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

// Hub errors.
var (
	ErrHubClosed     = errors.New("live delivery is shutting down")
	ErrUserConnLimit = errors.New("user connection limit reached")
	ErrConnLimit     = errors.New("server connection limit reached")
)

// Frame is what a live client receives.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans frames out to every open connection of a user on this instance.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds conn for userID. conn may be nil in tests, in which case the
// pumps must not be started.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrConnLimit
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), UserID: userID}
	m[c] = struct{}{}
	h.total++
	observability.LiveConnections.Inc()
	return c, nil
}

// Unregister removes c and closes its send queue. It is safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := m[c]; !ok {
		return
	}
	delete(m, c)
	if len(m) == 0 {
		delete(h.conns, c.UserID)
	}
	h.total--
	observability.LiveConnections.Dec()
	close(c.send)
}

// Online reports whether userID has a connection on this instance.
func (h *Hub) Online(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// Deliver sends a frame to every connection of each listed user.
func (h *Hub) Deliver(frame Frame, userIDs ...uint) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range userIDs {
		for c := range h.conns[id] {
			c.trySend(data)
		}
	}
}

// Shutdown closes every connection and rejects new ones.
func (h *Hub) Shutdown(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, m := range h.conns {
		for c := range m {
			// WritePump sends the close frame once send is closed.
			close(c.send)
			observability.LiveConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.total = 0
	return nil
}
