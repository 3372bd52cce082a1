package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tetris-arena/backend/internal/models"
)

// Upgrader configures the WebSocket handshake. Origin checking is left
// to CORS/auth middleware upstream, matching GITRIS-backend's
// game_handler.go upgrader.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// wsConnection adapts a gorilla/websocket connection to the Connection
// interface. Its SafeSend/SafeClose/readPump/writePump shape is carried
// directly from session_manager.go's Client type (SPEC_FULL.md §4):
// a buffered outbound channel drained by one writer goroutine, a closed
// flag guarded by a small mutex so duplicate closes are harmless, and
// ping/pong keepalive with read-deadline refresh.
type wsConnection struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool

	onClose   func()
	onMessage func(connID string, raw []byte)
}

// NewWSConnection wraps conn as a Connection identified by id and
// starts its read/write pumps. onMessage is invoked, from the read
// pump's goroutine, for every inbound text frame; onClose is invoked
// exactly once, from whichever goroutine first detects the socket has
// gone away, so the caller can unregister it from the Hub/Registry.
func NewWSConnection(id string, conn *websocket.Conn, onMessage func(connID string, raw []byte), onClose func()) *wsConnection {
	c := &wsConnection{
		id:        id,
		conn:      conn,
		send:      make(chan []byte, 64),
		onClose:   onClose,
		onMessage: onMessage,
	}
	go c.writePump()
	go c.readPump()
	return c
}

func (c *wsConnection) ID() string { return c.id }

// Send marshals payload under the given event name and queues it for
// the write pump. It never blocks on a slow client: a full send buffer
// is treated as a dead connection and triggers a close.
func (c *wsConnection) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame := models.Frame{Event: event, Data: data}
	body, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	select {
	case c.send <- body:
		return nil
	default:
		log.Printf("[WSConnection] send buffer full for %s, closing", c.id)
		c.Close()
		return nil
	}
}

// Close shuts the connection down exactly once.
func (c *wsConnection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.send)
	err := c.conn.Close()
	if c.onClose != nil {
		c.onClose()
	}
	return err
}

func (c *wsConnection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// writePump drains the send channel onto the socket and emits periodic
// pings, exactly matching session_manager.go's writePump.
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// readPump owns the socket's inbound loop: it refreshes the read
// deadline on every pong, and hands each inbound text frame to
// onMessage, matching session_manager.go's readPump shape (ping/pong
// keepalive plus a dispatch callback) generalized from a hardcoded
// session lookup to a caller-supplied handler.
func (c *wsConnection) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WSConnection] unexpected close for %s: %v", c.id, err)
			}
			return
		}
		if c.onMessage != nil {
			c.onMessage(c.id, raw)
		}
	}
}
