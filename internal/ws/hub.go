package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"civisense/internal/model"
	"civisense/internal/query"
)

// DashboardChannel is the channel whose refresh events trigger a page render
const DashboardChannel = "dashboard"

// SnapshotSource provides the latest dashboard snapshot
type SnapshotSource interface {
	Latest() (*model.Snapshot, bool)
}

// Hub manages WebSocket connections and channel subscriptions
type Hub struct {
	mu         sync.RWMutex
	conns      map[*Conn]bool
	subs       map[string]map[*Conn]bool // channel -> connections
	publish    chan Event
	log        *zap.Logger
	cmdHandler *CommandHandler
	ctx        context.Context
	source     SnapshotSource
	pageSize   int
}

// Conn represents a WebSocket connection. Each connection keeps its own
// table view; nothing about it is shared with other sessions.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte
	hub  *Hub
	id   string
	subs map[string]bool // subscribed channels
	ctx  context.Context

	viewMu sync.Mutex
	view   query.View

	sendMu sync.Mutex
	closed bool
}

// Event represents a message to be published
type Event struct {
	Channel string
	Message map[string]interface{}
}

// NewHub creates a new WebSocket hub
func NewHub(source SnapshotSource, pageSize int, log *zap.Logger) *Hub {
	return &Hub{
		conns:    make(map[*Conn]bool),
		subs:     make(map[string]map[*Conn]bool),
		publish:  make(chan Event, 256),
		log:      log,
		ctx:      context.Background(),
		source:   source,
		pageSize: pageSize,
	}
}

// SetCommandHandler sets the command handler for processing WebSocket commands
func (h *Hub) SetCommandHandler(handler *CommandHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmdHandler = handler
}

// Run starts the hub's event loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-h.publish:
			h.dispatch(event)
		}
	}
}

func (h *Hub) dispatch(event Event) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.subs[event.Channel]))
	for conn := range h.subs[event.Channel] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	if event.Channel == DashboardChannel {
		for _, conn := range conns {
			h.deliver(conn, conn.render())
		}
		return
	}

	msg, _ := json.Marshal(map[string]interface{}{
		"type":    "event",
		"channel": event.Channel,
		"data":    event.Message,
	})
	for _, conn := range conns {
		h.deliver(conn, msg)
	}
}

// deliver queues msg, dropping the connection if its buffer is full
func (h *Hub) deliver(conn *Conn, msg []byte) {
	if msg == nil {
		return
	}
	if !conn.trySend(msg) {
		h.log.Warn("Connection buffer full, dropping connection", zap.String("conn", conn.id))
		h.unregister(conn)
	}
}

// Register adds a new connection to the hub
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

// Unregister removes a connection from the hub
func (h *Hub) unregister(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.close()
		for channel := range conn.subs {
			if subs := h.subs[channel]; subs != nil {
				delete(subs, conn)
				if len(subs) == 0 {
					delete(h.subs, channel)
				}
			}
		}
	}
}

// Subscribe adds a connection to a channel
func (h *Hub) Subscribe(conn *Conn, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*Conn]bool)
	}
	h.subs[channel][conn] = true
	conn.subs[channel] = true
}

// Unsubscribe removes a connection from a channel
func (h *Hub) Unsubscribe(conn *Conn, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.subs[channel]; subs != nil {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.subs, channel)
		}
	}
	delete(conn.subs, channel)
}

// Publish sends an event to all subscribers of a channel
func (h *Hub) Publish(channel string, message map[string]interface{}) {
	select {
	case h.publish <- Event{Channel: channel, Message: message}:
	default:
		h.log.Warn("Hub publish channel full, dropping event", zap.String("channel", channel))
	}
}

// Connections returns the number of registered connections
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// NewConn creates a new connection with a fresh session view
func NewConn(ws *websocket.Conn, hub *Hub) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, 256),
		hub:  hub,
		id:   ulid.Make().String(),
		subs: make(map[string]bool),
		ctx:  hub.ctx,
		view: query.NewView(hub.pageSize),
	}
}

// ID returns the session id
func (c *Conn) ID() string {
	return c.id
}

// View returns a copy of the session's table view
func (c *Conn) View() query.View {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.view
}

func (c *Conn) updateView(fn func(v *query.View)) query.View {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	fn(&c.view)
	return c.view
}

// clampPage pins v.Page to the pages the latest snapshot can show
func (c *Conn) clampPage(v *query.View) {
	if c.hub.source != nil {
		if snap, ok := c.hub.source.Latest(); ok {
			v.Page = v.Apply(snap.Complaints).Page
			return
		}
	}
	v.Page = max(v.Page, 1)
}

// render builds the dashboard frame for this session, or nil before the
// first snapshot
func (c *Conn) render() []byte {
	if c.hub.source == nil {
		return nil
	}
	snap, ok := c.hub.source.Latest()
	if !ok {
		return nil
	}
	view := c.View()
	msg, _ := json.Marshal(map[string]interface{}{
		"type":       "dashboard",
		"seq":        snap.Seq,
		"snapshotId": snap.ID,
		"stats":      snap.Stats,
		"page":       view.Apply(snap.Complaints),
		"sort":       view.Sort,
		"criteria":   view.Criteria,
	})
	return msg
}

// ReadPump handles reading from the WebSocket connection
func (c *Conn) ReadPump() {
	defer func() {
		c.hub.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Warn("Failed to parse message", zap.Error(err))
			continue
		}

		c.handleMessage(msg)
	}
}

// WritePump handles writing to the WebSocket connection
func (c *Conn) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per message; dashboard frames are full JSON documents
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) handleMessage(msg map[string]interface{}) {
	msgType, _ := msg["type"].(string)

	switch msgType {
	case "subscribe":
		channel, _ := msg["channel"].(string)
		if channel != "" {
			c.hub.Subscribe(c, channel)
			c.sendAck("subscribed", channel)
			if channel == DashboardChannel {
				c.sendRaw(c.render())
			}
		}
	case "unsubscribe":
		channel, _ := msg["channel"].(string)
		if channel != "" {
			c.hub.Unsubscribe(c, channel)
			c.sendAck("unsubscribed", channel)
		}
	case "cmd":
		c.hub.mu.RLock()
		handler := c.hub.cmdHandler
		c.hub.mu.RUnlock()
		if handler != nil {
			handler.HandleCommand(c.ctx, c, msg)
		} else {
			c.hub.log.Warn("Command handler not set")
		}
	case "ping":
		c.sendAck("pong", "")
	default:
		c.hub.log.Warn("Unknown message type", zap.String("type", msgType))
	}
}

func (c *Conn) sendAck(msgType, channel string) {
	ack := map[string]interface{}{
		"type": "ack",
		"ack":  msgType,
	}
	if channel != "" {
		ack["channel"] = channel
	}
	msg, _ := json.Marshal(ack)
	c.sendRaw(msg)
}

func (c *Conn) sendRaw(msg []byte) {
	if msg == nil {
		return
	}
	c.trySend(msg)
}

// trySend queues msg without blocking. It reports false when the buffer is
// full or the connection is closed.
func (c *Conn) trySend(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
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

func (c *Conn) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
