package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ayusman/murmur/internal/formation"
	"github.com/ayusman/murmur/internal/track"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// AgentSnapshot is the wire form of one formation agent.
type AgentSnapshot struct {
	ID    int        `json:"id"`
	Pos   [3]float64 `json:"pos"`
	Dir   [3]float64 `json:"dir"`
	Color string     `json:"color"`
}

// Frame is one broadcast message: the tracking state and the agent
// snapshot taken on the same pipeline tick.
type Frame struct {
	State     track.State     `json:"state"`
	Agents    []AgentSnapshot `json:"agents"`
	Timestamp int64           `json:"timestamp"`
}

// SnapshotAgents converts engine agents to their wire form.
func SnapshotAgents(agents []formation.Agent) []AgentSnapshot {
	out := make([]AgentSnapshot, len(agents))
	for i, a := range agents {
		out[i] = AgentSnapshot{
			ID:    a.ID,
			Pos:   [3]float64{a.Pos.X, a.Pos.Y, a.Pos.Z},
			Dir:   [3]float64{a.Dir.X, a.Dir.Y, a.Dir.Z},
			Color: a.Color.Hex(),
		}
	}
	return out
}

// StateHandler broadcasts per-frame tracking state and agent snapshots
// via WebSocket. Frames are pushed by the pipeline through Publish; the
// handler has no clock of its own.
type StateHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// NewStateHandler creates a new StateHandler with no connected clients.
func NewStateHandler() *StateHandler {
	return &StateHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *StateHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends a frame to all connected clients. Clients whose writes
// fail are dropped.
func (h *StateHandler) Publish(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(frame)
	if err != nil {
		log.Printf("marshal frame: %v", err)
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
