// Package ws streams a player's projections over a WebSocket connection.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/battleship-go/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
)

// Message types
const (
	TypeSnapshot = "snapshot"
	TypeClosed   = "closed"
)

// Message is the envelope for everything sent to the client
type Message struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// NewUpgrader returns an upgrader that accepts any origin when allowedOrigin
// is empty, and only that origin otherwise
func NewUpgrader(allowedOrigin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
}

// Client is one viewer's WebSocket feed. Snapshots may be queued before the
// connection is attached; only the newest undelivered one is kept.
type Client struct {
	playerID model.PlayerID
	conn     *websocket.Conn
	logger   *slog.Logger

	snapshot chan []byte
	done     chan struct{}
	doneOnce sync.Once
	reason   string
}

// NewClient creates a client for the player
func NewClient(playerID model.PlayerID, logger *slog.Logger) *Client {
	return &Client{
		playerID: playerID,
		logger:   logger.With(slog.String("component", "ws"), slog.String("player_id", string(playerID))),
		snapshot: make(chan []byte, 1),
		done:     make(chan struct{}),
	}
}

// Snapshot queues an encoded projection
func (c *Client) Snapshot(data []byte) {
	msg, _ := json.Marshal(Message{Type: TypeSnapshot, Data: data})
	for {
		select {
		case c.snapshot <- msg:
			return
		default:
		}
		select {
		case <-c.snapshot:
		default:
		}
	}
}

// End closes the feed after any queued snapshot is written
func (c *Client) End(reason string) {
	c.doneOnce.Do(func() {
		c.reason = reason
		close(c.done)
	})
}

// Run attaches the connection and pumps messages until either side closes
func (c *Client) Run(conn *websocket.Conn) {
	c.conn = conn
	go c.writePump()
	c.readPump()
}

// readPump discards client messages and notices disconnects
func (c *Client) readPump() {
	defer func() {
		c.End("client disconnected")
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws read error", slog.String("error", err.Error()))
			}
			return
		}
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
		case msg := <-c.snapshot:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-c.done:
			select {
			case msg := <-c.snapshot:
				_ = c.write(websocket.TextMessage, msg)
			default:
			}
			closed, _ := json.Marshal(Message{Type: TypeClosed, Reason: c.reason})
			_ = c.write(websocket.TextMessage, closed)
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.reason))
			return

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
