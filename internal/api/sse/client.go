package sse

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/mcoot/battleship-go/internal/model"
)

const (
	// DefaultKeepalive is the time between keepalive comments
	DefaultKeepalive = 15 * time.Second

	// Buffer size for hub broadcasts
	sendBufferSize = 256
)

// Event names
const (
	EventConnected = "connected"
	EventSnapshot  = "snapshot"
	EventMove      = "move"
	EventClosed    = "closed"
)

// Client is one viewer's SSE connection. It carries two streams: game-wide
// broadcasts from the hub and the viewer's own projection snapshots.
type Client struct {
	playerID    model.PlayerID
	send        chan []byte
	snapshot    chan []byte
	done        chan struct{}
	doneOnce    sync.Once
	reason      string
	connectedAt time.Time
}

// NewClient creates a new SSE client. It joins a hub when served.
func NewClient(playerID model.PlayerID) *Client {
	return &Client{
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		snapshot:    make(chan []byte, 1),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// Snapshot queues a projection for the client. Only the newest undelivered
// snapshot is kept since each one is complete.
func (c *Client) Snapshot(data []byte) {
	msg := formatSSEMessage(EventSnapshot, string(data))
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

// End closes the stream after any queued snapshot is written
func (c *Client) End(reason string) {
	c.doneOnce.Do(func() {
		c.reason = reason
		close(c.done)
	})
}

// ServeSSE registers the client with the hub and streams events to it until
// the request ends, the hub closes or the client is ended
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, client *Client, keepalive time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	if !hub.Register(client) {
		_, _ = w.Write(closedMessage("game closed"))
		flusher.Flush()
		return
	}
	defer hub.Unregister(client)

	_, _ = w.Write(formatSSEMessage(EventConnected, `{"status":"connected"}`))
	flusher.Flush()

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	write := func(msg []byte) bool {
		if _, err := w.Write(msg); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	for {
		select {
		case msg := <-client.snapshot:
			if !write(msg) {
				return
			}

		case msg, ok := <-client.send:
			if !ok {
				// Hub closed
				return
			}
			if !write(msg) {
				return
			}

		case <-client.done:
			select {
			case msg := <-client.snapshot:
				write(msg)
			default:
			}
			write(closedMessage(client.reason))
			return

		case <-ticker.C:
			if !write([]byte(": keepalive\n\n")) {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

func closedMessage(reason string) []byte {
	data, _ := json.Marshal(map[string]string{"reason": reason})
	return formatSSEMessage(EventClosed, string(data))
}
