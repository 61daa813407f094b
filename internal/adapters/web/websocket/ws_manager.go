package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
	"github.com/GSDV/solomo/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	},
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager pushes position updates, geofence events and tracker state
// to connected browser clients. It implements ports.EventNotifier.
type WSManager struct {
	Service ports.LocationService
	Clients map[*websocket.Conn]struct{}
	mu      sync.Mutex
}

func NewWSManager(service ports.LocationService) *WSManager {
	return &WSManager{
		Service: service,
		Clients: make(map[*websocket.Conn]struct{}),
	}
}

func (m *WSManager) Start(ctx context.Context) {
	go m.sweepAndBroadcast(ctx)
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = struct{}{}
	count := len(m.Clients)
	m.mu.Unlock()

	telemetry.WSClients.Set(float64(count))
	log.Printf("WebSocket connected: addr=%s", conn.RemoteAddr())

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.Clients, conn)
			count := len(m.Clients)
			m.mu.Unlock()
			telemetry.WSClients.Set(float64(count))
			log.Printf("WebSocket disconnected: addr=%s", conn.RemoteAddr())
		}()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

// sweepAndBroadcast pushes a full state snapshot on a fixed cadence so
// clients that miss an incremental message converge anyway.
func (m *WSManager) sweepAndBroadcast(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.broadcastSnapshot()
		}
	}
}

func (m *WSManager) broadcastSnapshot() {
	if m.Service == nil {
		return
	}
	m.broadcastMessage(WSMessage{
		Type:    "state",
		Payload: m.Service.Snapshot(),
	})
}

// NotifyPosition broadcasts a fresh position sample.
func (m *WSManager) NotifyPosition(pos domain.Position) {
	m.broadcastMessage(WSMessage{
		Type:    "position",
		Payload: pos,
	})
}

// NotifyEvent broadcasts a geofence transition.
func (m *WSManager) NotifyEvent(event domain.Event) {
	m.broadcastMessage(WSMessage{
		Type:    "geofence." + string(event.Kind),
		Payload: event,
	})
}

// NotifyState broadcasts a tracker state snapshot.
func (m *WSManager) NotifyState(snapshot domain.Snapshot) {
	m.broadcastMessage(WSMessage{
		Type:    "state",
		Payload: snapshot,
	})
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}
