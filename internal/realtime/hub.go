package realtime

import (
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/projectdesk/projectdesk/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Message struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProjectID uint   `json:"project_id"`
	Entity    string `json:"entity,omitempty"`
}

// Default is the hub shared by the API and the web interface.
var Default = NewHub(CheckOrigin)

// CheckOrigin accepts same-origin pages and the configured allowed origins.
func CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if parsed, err := url.Parse(origin); err == nil && parsed.Host == r.Host {
		return true
	}

	return types.OriginAllowed(origin)
}

// Hub fans refresh notifications out to the websocket clients of a project.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*websocket.Conn]bool
	upgrader websocket.Upgrader

	// writeMu serializes broadcasts; a connection allows one writer at a time.
	writeMu sync.Mutex
}

func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients:  make(map[uint]map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

func (h *Hub) Subscribers(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[projectID])
}

func (h *Hub) register(projectID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*websocket.Conn]bool)
	}
	h.clients[projectID][conn] = true
}

func (h *Hub) unregister(projectID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[projectID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
}

// BroadcastRefresh tells every subscriber of the project to reload. Clients
// that cannot be written to are dropped.
func (h *Hub) BroadcastRefresh(projectID uint, entity string) {
	h.mu.RLock()
	clients, exists := h.clients[projectID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy so the lock is not held while writing.
	conns := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	message := Message{
		Type:      "refresh",
		Message:   "Project data updated",
		ProjectID: projectID,
		Entity:    entity,
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		if err := conn.WriteJSON(message); err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			h.unregister(projectID, conn)
			conn.Close()
		}
	}
}

func (h *Hub) welcome(conn *websocket.Conn, projectID uint) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(Message{
		Type:      "connected",
		Message:   "WebSocket connection established",
		ProjectID: projectID,
	})
}

// Serve upgrades the request and blocks until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, projectID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	h.register(projectID, conn)

	defer func() {
		h.unregister(projectID, conn)
		conn.Close()
		log.Printf("WebSocket connection closed for project %d", projectID)
	}()

	// The welcome goes out after registration, so a client that has read it
	// receives every later broadcast.
	if err := h.welcome(conn, projectID); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	done := make(chan struct{})
	defer func() {
		ticker.Stop()
		close(done)
	}()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					log.Printf("Ping failed for project %d: %v", projectID, err)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for project %d: %v", projectID, err)
			}
			return
		}

		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for project %d: %v", projectID, err)
			return
		}
	}
}
