// internal/realtime/hub.go
// WebSocket hub keyed by user id

package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is the wire format of every realtime message
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub tracks connected clients and routes events to them
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	shutdown   chan struct{}
	mu         sync.RWMutex

	// OnConnect/OnDisconnect run when a user's first connection opens or
	// last connection closes. Used for presence.
	OnConnect    func(userID string)
	OnDisconnect func(userID string)
}

// NewHub creates a hub. Call Run in a goroutine before registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
	}
}

// Run processes client lifecycle events until Shutdown
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.shutdown:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	first := len(h.clients[c.userID]) == 0
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]bool)
	}
	h.clients[c.userID][c] = true
	h.mu.Unlock()

	if first && h.OnConnect != nil {
		h.OnConnect(c.userID)
	}
	log.Printf("realtime: user %s connected", c.userID)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	last := false
	if conns, ok := h.clients[c.userID]; ok {
		if conns[c] {
			delete(conns, c)
			close(c.send)
		}
		if len(conns) == 0 {
			delete(h.clients, c.userID)
			last = true
		}
	}
	h.mu.Unlock()

	if last && h.OnDisconnect != nil {
		h.OnDisconnect(c.userID)
	}
	log.Printf("realtime: user %s disconnected", c.userID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

// Shutdown closes all connections and stops the run loop
func (h *Hub) Shutdown() {
	close(h.shutdown)
}

// EmitToUser delivers an event to every connection of a user. Events to
// offline users are dropped silently.
func (h *Hub) EmitToUser(userID, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		log.Printf("realtime: failed to marshal event %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// slow consumer, drop the event rather than block the emitter
		}
	}
}

// IsConnected reports whether the user has at least one open connection
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
