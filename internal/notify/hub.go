// Package notify pushes committed friend events to connected players over websockets.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/auth"
	"github.com/ferdiebergado/friendsystem/internal/config"
	"github.com/ferdiebergado/friendsystem/internal/friend"
	"github.com/ferdiebergado/friendsystem/internal/pkg/message"
	"github.com/ferdiebergado/friendsystem/internal/pkg/web"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	eventQueueSize = 256
	maxMessageSize = 512
)

// TypeConnected is the type of the first message on every connection. Events
// published after a client has seen it are guaranteed to reach that client.
const TypeConnected = "connected"

// Hello is sent once the connection is registered with the hub.
type Hello struct {
	Type   string    `json:"type"`
	Player uuid.UUID `json:"player"`
}

// Hub fans events out to the websocket connections of the players involved.
// All connection bookkeeping happens on the goroutine running Run.
type Hub struct {
	cfg      *config.Notify
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	events     chan friend.Event
	done       chan struct{}

	clients   map[uuid.UUID]map[*client]struct{}
	connected atomic.Int64
}

var _ friend.Publisher = (*Hub)(nil)

func NewHub(cfg *config.Notify) *Hub {
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients authenticate with a bearer token, not cookies.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan friend.Event, eventQueueSize),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*client]struct{}),
	}
}

// Publish queues e for delivery. It never blocks: when the queue is full or the
// hub has stopped the event is dropped.
func (h *Hub) Publish(e friend.Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- e:
	default:
		slog.Warn("event queue full, dropping event", "type", e.Type, "actor", e.Actor, "target", e.Target)
	}
}

// Connected reports the number of open connections.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Run delivers events until ctx ends, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	slog.Info("Notification hub started.")
	defer slog.Info("Notification hub stopped.")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return nil
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case e := <-h.events:
			h.dispatch(e)
		}
	}
}

func (h *Hub) add(c *client) {
	conns, ok := h.clients[c.player]
	if !ok {
		conns = make(map[*client]struct{})
		h.clients[c.player] = conns
	}
	conns[c] = struct{}{}
	h.connected.Add(1)
	slog.Debug("player connected", "player", c.player)

	msg, err := json.Marshal(Hello{Type: TypeConnected, Player: c.player})
	if err != nil {
		slog.Error("failed to encode hello", "reason", err)
		return
	}
	c.send <- msg
}

func (h *Hub) remove(c *client) {
	conns, ok := h.clients[c.player]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}

	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.player)
	}
	close(c.send)
	h.connected.Add(-1)
	slog.Debug("player disconnected", "player", c.player)
}

func (h *Hub) dispatch(e friend.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to encode event", "reason", err)
		return
	}

	recipients := []uuid.UUID{e.Actor}
	if e.Target != e.Actor {
		recipients = append(recipients, e.Target)
	}

	for _, player := range recipients {
		for c := range h.clients[player] {
			select {
			case c.send <- msg:
			default:
				slog.Warn("connection too slow, dropping it", "player", player)
				h.remove(c)
			}
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for _, conns := range h.clients {
		for c := range conns {
			h.remove(c)
		}
	}
}

// ServeHTTP upgrades the request of an authenticated player to a websocket
// connection that receives the player's events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	player, err := auth.PlayerFromContext(r.Context())
	if err != nil {
		web.RespondUnauthorized(w, err, message.InvalidUser, nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		slog.Warn("websocket upgrade failed", "player", player, "reason", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		player: player,
		send:   make(chan []byte, max(h.cfg.SendBuffer, 1)),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	player uuid.UUID
	send   chan []byte
}

// readPump consumes control frames so pongs are seen, and unregisters the
// client once the peer goes away.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	pongTimeout := c.hub.cfg.PongTimeout.Duration

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read failed", "player", c.player, "reason", err)
			}
			return
		}
	}
}

// writePump writes queued events and keepalive pings. It sends a close frame
// once the hub closes the send channel.
func (c *client) writePump() {
	writeTimeout := c.hub.cfg.WriteTimeout.Duration
	ticker := time.NewTicker(c.hub.cfg.PongTimeout.Duration * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("websocket write failed", "player", c.player, "reason", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
