package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchvol/internal/session"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type wsClient struct {
	id   string
	send chan []byte
}

// SnapshotHandler pushes every session change to connected WebSocket clients.
// A client that falls behind misses intermediate snapshots.
type SnapshotHandler struct {
	session *session.State
	clients map[*wsClient]struct{}
	mu      sync.RWMutex
}

// NewSnapshotHandler creates a SnapshotHandler subscribed to s.
func NewSnapshotHandler(s *session.State) *SnapshotHandler {
	h := &SnapshotHandler{
		session: s,
		clients: make(map[*wsClient]struct{}),
	}
	s.OnChange(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &wsClient{id: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	logger := log.WithField("client", c.id)

	initial, err := json.Marshal(h.session.Snapshot())
	if err == nil {
		c.send <- initial
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logger.Debug("websocket client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		logger.Debug("websocket client disconnected")
	}()

	// Reads only detect the close; clients never send anything meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *SnapshotHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast is the session listener; it never blocks the publisher.
func (h *SnapshotHandler) broadcast(snap session.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(snap)
	if err != nil {
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}
