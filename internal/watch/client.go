// internal/watch/client.go
//
// One WebSocket watcher. The read pump only services control frames and
// connection teardown; the write pump delivers snapshot frames and pings.

package watch

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pairdown/go-server/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second // must be shorter than pongWait
	sendBuffer = 8
)

// Client is a single watcher connection bound to one game id.
type Client struct {
	hub    *Hub
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

// Subscribe registers conn as a watcher of gameID and starts its pumps.
// The connection is owned by the client from here on.
func (h *Hub) Subscribe(gameID string, conn *websocket.Conn) *Client {
	c := &Client{hub: h, gameID: gameID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(c)
	go c.writePump()
	go c.readPump()
	return c
}

// Send queues one snapshot for this watcher alone. Used for the initial
// frame on connect; broadcasts go through Hub.Publish.
// The membership check under the hub lock keeps the send racing-safe
// against a concurrent drop closing the channel.
func (c *Client) Send(snap game.Snapshot) {
	buf, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	_, ok := c.hub.subs[c.gameID][c]
	if ok {
		select {
		case c.send <- buf:
		default:
			ok = false
		}
	}
	c.hub.mu.RUnlock()
	if !ok {
		c.hub.drop(c)
	}
}

// readPump discards inbound frames and notices disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		// watchers cannot send intents; ignore whatever arrived
	}
}

// writePump delivers snapshots and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
