// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/danielhkuo/class-pulse/models"
)

// ErrHubStopped is returned by Notify after Run has returned.
var ErrHubStopped = errors.New("hub stopped")

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Client is one browser connected over websocket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans poll events out to every connected client. It implements
// poll.Notifier. All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	origins    []string
	count      atomic.Int64
}

// NewHub creates a hub. originPatterns are extra hosts allowed to connect
// besides the server's own.
func NewHub(originPatterns ...string) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		origins:    originPatterns,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return nil

		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int64(len(h.clients)))

		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client; drop it rather than stall everyone else.
					slog.Warn("dropping slow websocket client")
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// ClientCount reports the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Notify broadcasts ev to all clients.
func (h *Hub) Notify(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	case <-r.Context().Done():
		conn.CloseNow()
		return
	}

	go c.writePump()
	c.readPump(r.Context())
}

// writePump sends messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for msg := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			slog.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// readPump drains the connection; clients only listen, so anything read is
// discarded. It returns once the connection is gone.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.CloseNow()
	}()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Debug("websocket client disconnected")
			} else {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}
	}
}
