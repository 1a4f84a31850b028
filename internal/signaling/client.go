package signaling

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
	sendBuffer     = 64
)

// Client is one signaling connection. The transport assigns the connection id
// at upgrade time; it never changes for the life of the socket.
type Client struct {
	id       string
	userID   string
	userName string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	log *zap.Logger
}

func newClient(conn *websocket.Conn, userID, userName string, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		userID:   userID,
		userName: userName,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		log:      logger.With(zap.String("connection_id", id)),
	}
}

func (c *Client) ConnectionID() string { return c.id }

// enqueue marshals a frame onto the outbound buffer. A full buffer marks the
// connection for teardown instead of blocking the sender.
func (c *Client) enqueue(frame serverFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		c.log.Error("marshal frame failed", zap.String("event", frame.Event), zap.Error(err))
		return
	}
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		c.log.Warn("send buffer full, dropping connection")
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) readPump(ctx context.Context, hub *Hub) {
	defer func() {
		hub.Disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read failed", zap.Error(err))
			}
			return
		}
		// Handlers for the same connection may run concurrently; the hub and
		// registry are written to be safe under that.
		go hub.Dispatch(ctx, c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
