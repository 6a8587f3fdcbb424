package backend

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/remote"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The reference backend serves trusted dev clients only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedClient is one realtime subscriber.
type feedClient struct {
	userID string
	conn   *websocket.Conn
	send   chan remote.ChangeMessage
	hub    *hub
}

// hub fans change events out to every realtime subscriber of a user.
type hub struct {
	log logger.Logger

	mu      sync.Mutex
	clients map[*feedClient]bool
}

func newHub(log logger.Logger) *hub {
	return &hub{
		log:     log,
		clients: make(map[*feedClient]bool),
	}
}

func (h *hub) register(c *feedClient) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("realtime client connected", logger.Int("total", total))
}

func (h *hub) unregister(c *feedClient) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// broadcast queues a change for every subscriber of the user. A subscriber
// whose buffer is full is dropped rather than blocking the writer.
func (h *hub) broadcast(userID string, msg remote.ChangeMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.userID != userID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; the feed is one-way. It exists to
// notice closed connections and unregister them.
func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
