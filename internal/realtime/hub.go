package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/helmdeck/helm/internal/events"
	"github.com/helmdeck/helm/internal/logging"
)

// Envelope is one frame pushed to browser observers.
type Envelope struct {
	Type    string `json:"type"` // stream, session_status, chat_title
	ChatId  string `json:"chatId,omitempty"`
	Payload any    `json:"payload"`
}

// Hub fans chat activity out to WebSocket observers. Observers see every
// stream event the mediator emits, plus session status and title
// changes, so a second window stays live without owning the SSE stream.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	upgrader websocket.Upgrader
}

// NewHub creates a hub. checkOrigin guards the WebSocket upgrade.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Run subscribes to the event bus and broadcasts until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	streamCh, cancelStream := events.Stream.Subscribe(256)
	statusCh, cancelStatus := events.SessionStatus.Subscribe(64)
	titleCh, cancelTitle := events.ChatTitle.Subscribe(16)
	defer cancelStream()
	defer cancelStatus()
	defer cancelTitle()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-streamCh:
			h.broadcast(Envelope{Type: "stream", ChatId: ev.ChatId, Payload: ev})
		case st := <-statusCh:
			h.broadcast(Envelope{Type: "session_status", ChatId: st.ChatID, Payload: st})
		case tc := <-titleCh:
			h.broadcast(Envelope{Type: "chat_title", ChatId: tc.ChatID, Payload: tc})
		}
	}
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("[Realtime] upgrade failed: %v", err)
		return
	}

	client := newClient(h, conn)
	if chatID := r.URL.Query().Get("chatId"); chatID != "" {
		client.Watch(chatID)
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logging.Infof("[Realtime] observer connected (%d total)", n)

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.Wants(env.ChatId) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Slow observer. Drop it rather than stall the broadcast.
			logging.Warnf("[Realtime] dropping slow observer")
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
}
