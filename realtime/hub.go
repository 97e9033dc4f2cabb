// Package realtime pushes domain events to websocket subscribers, one topic
// per restaurant.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"booktable-api/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer)}
}

// enqueue never blocks; false means the client is gone or too slow.
func (c *client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
}

// writePump drains the send buffer until it is closed or a write fails.
func (c *client) writePump(log *slog.Logger) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug("websocket write failed", slog.Any("error", err))
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

// Hub implements events.Publisher.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu     sync.RWMutex
	topics map[uint]map[*client]struct{}
}

func NewHub(log *slog.Logger, allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		log:    log,
		topics: make(map[uint]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWS upgrades the request and subscribes it to the restaurant in :id
// until the peer disconnects.
func (h *Hub) ServeWS(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id", "kind": "validation"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	cl := newClient(conn)
	h.subscribe(uint(id), cl)
	go cl.writePump(h.log)
	defer h.detach(uint(id), cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) subscribe(id uint, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.topics[id]
	if !ok {
		set = make(map[*client]struct{})
		h.topics[id] = set
	}
	set[cl] = struct{}{}
}

func (h *Hub) unsubscribe(id uint, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.topics[id]; ok {
		delete(set, cl)
		if len(set) == 0 {
			delete(h.topics, id)
		}
	}
}

func (h *Hub) detach(id uint, cl *client) {
	h.unsubscribe(id, cl)
	cl.close()
}

// Subscribers reports how many clients follow a restaurant.
func (h *Hub) Subscribers(id uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[id])
}

// Publish queues the event for every subscriber of the restaurant without
// waiting on the network. Subscribers whose buffer is full are detached.
// The customer's user id is never sent.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	ev.UserID = 0
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.topics[ev.RestaurantID]))
	for cl := range h.topics[ev.RestaurantID] {
		targets = append(targets, cl)
	}
	h.mu.RUnlock()

	for _, cl := range targets {
		if !cl.enqueue(msg) {
			h.log.Debug("dropping slow websocket subscriber", slog.Uint64("restaurant_id", uint64(ev.RestaurantID)))
			go h.detach(ev.RestaurantID, cl)
		}
	}
	return nil
}
