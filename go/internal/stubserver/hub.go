package stubserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vitacoin/vitacoin-go/go/internal/events"
)

// HubConfig holds configuration for push connections.
type HubConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultHubConfig returns default push connection configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		MaxMessageSize: 1024,
		ReadBufferSize: 1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Hub manages push connections keyed by user id and fans events out to
// them. One user may hold several connections (multiple clients).
type Hub struct {
	userConnections map[string]map[*pushConn]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   HubConfig
}

type pushConn struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

func NewHub(config HubConfig) *Hub {
	return &Hub{
		userConnections: make(map[string]map[*pushConn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// Upgrade turns an HTTP request into a push connection for userID.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	pc := &pushConn{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
		hub:    h,
	}

	h.register(pc)
	go pc.writePump()
	go pc.readPump()

	log.Info().
		Str("connection_id", pc.id).
		Str("user_id", userID).
		Msg("push connection established")

	return nil
}

func (h *Hub) register(pc *pushConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.userConnections[pc.userID] == nil {
		h.userConnections[pc.userID] = make(map[*pushConn]bool)
	}
	h.userConnections[pc.userID][pc] = true
}

func (h *Hub) unregister(pc *pushConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.userConnections[pc.userID]; exists {
		if _, exists := conns[pc]; exists {
			delete(conns, pc)
			close(pc.send)
			if len(conns) == 0 {
				delete(h.userConnections, pc.userID)
			}
		}
	}
}

// SendToUser delivers an event to every connection of one user.
func (h *Hub) SendToUser(userID string, eventType events.EventType, payload interface{}) {
	event, err := events.NewPushEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to build push event")
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal push event")
		return
	}

	h.mu.RLock()
	var targets []*pushConn
	for pc := range h.userConnections[userID] {
		targets = append(targets, pc)
	}
	h.mu.RUnlock()

	for _, pc := range targets {
		pc.deliver(data)
	}
}

// Broadcast delivers an event to every connected user.
func (h *Hub) Broadcast(eventType events.EventType, payload interface{}) {
	event, err := events.NewPushEvent(eventType, payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to build push event")
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal push event")
		return
	}

	h.mu.RLock()
	var targets []*pushConn
	for _, conns := range h.userConnections {
		for pc := range conns {
			targets = append(targets, pc)
		}
	}
	h.mu.RUnlock()

	for _, pc := range targets {
		pc.deliver(data)
	}
}

// ConnectionCount reports the number of live connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConnections[userID])
}

func (pc *pushConn) deliver(data []byte) {
	select {
	case pc.send <- data:
	default:
		log.Warn().
			Str("connection_id", pc.id).
			Str("user_id", pc.userID).
			Msg("push buffer full, closing connection")
		pc.hub.unregister(pc)
		pc.conn.Close()
	}
}

func (pc *pushConn) writePump() {
	defer pc.conn.Close()

	for message := range pc.send {
		pc.conn.SetWriteDeadline(time.Now().Add(pc.hub.config.WriteTimeout))
		if err := pc.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Debug().
				Err(err).
				Str("connection_id", pc.id).
				Msg("failed to write push message")
			return
		}
	}
	pc.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (pc *pushConn) readPump() {
	defer func() {
		pc.hub.unregister(pc)
		pc.conn.Close()
	}()

	pc.conn.SetReadLimit(pc.hub.config.MaxMessageSize)
	for {
		// clients only ping; any read error means the connection is gone
		if _, _, err := pc.conn.ReadMessage(); err != nil {
			return
		}
	}
}
