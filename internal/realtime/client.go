package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/helmdeck/helm/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

// Client is one connected WebSocket observer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	watched map[string]struct{} // empty means all chats
}

// clientCommand is the only inbound message shape observers send:
// watch or unwatch a chat to filter the broadcast.
type clientCommand struct {
	Type   string `json:"type"` // watch, unwatch
	ChatId string `json:"chatId"`
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		watched: make(map[string]struct{}),
	}
}

// Watch narrows the broadcast to the given chat (additive).
func (c *Client) Watch(chatID string) {
	c.mu.Lock()
	c.watched[chatID] = struct{}{}
	c.mu.Unlock()
}

// Unwatch removes a chat from the filter. An empty filter means all.
func (c *Client) Unwatch(chatID string) {
	c.mu.Lock()
	delete(c.watched, chatID)
	c.mu.Unlock()
}

// Wants reports whether this observer should receive events for chatID.
// Frames without a chat id (global notices) always pass.
func (c *Client) Wants(chatID string) bool {
	if chatID == "" {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.watched) == 0 {
		return true
	}
	_, ok := c.watched[chatID]
	return ok
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warnf("[Realtime] observer read error: %v", err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}
		switch cmd.Type {
		case "watch":
			if cmd.ChatId != "" {
				c.Watch(cmd.ChatId)
			}
		case "unwatch":
			c.Unwatch(cmd.ChatId)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
