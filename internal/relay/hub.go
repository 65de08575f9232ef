package relay

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSendBuffer = 64

// Client is one live connection's registry entry. Outbound messages go
// through a bounded send buffer; the transport session drains it.
type Client struct {
	id   string
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *Client) ID() string { return c.id }

// Outbound returns the channel the session's write loop drains.
func (c *Client) Outbound() <-chan []byte { return c.send }

// Done is closed when the client is unregistered.
func (c *Client) Done() <-chan struct{} { return c.done }

// enqueue is non-blocking. It reports false when the send buffer is
// full, which the hub treats as a slow consumer.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Hub tracks live connections and their room memberships. Membership is
// volatile: it exists only while the connection does.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	logger     *zap.Logger
	sendBuffer int
}

func NewHub(logger *zap.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		logger:     logger,
		sendBuffer: sendBuffer,
	}
}

func (h *Hub) Register() *Client {
	c := &Client{
		id:   uuid.NewString(),
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Client connected", zap.String("client_id", c.id))
	return c
}

// Unregister drops the client and all of its room memberships.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		for room, members := range h.rooms {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	c.once.Do(func() { close(c.done) })
	h.logger.Info("Client disconnected", zap.String("client_id", c.id))
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Send delivers one message to a single client, disconnecting it if its
// buffer is full.
func (h *Hub) Send(c *Client, msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	if !c.enqueue(payload) {
		h.dropSlow(c)
	}
}

// Broadcast fans one message out to every connected client. The payload
// is marshalled once; a client whose buffer is full is disconnected
// rather than allowed to block or starve the others.
func (h *Hub) Broadcast(event string, data json.RawMessage) {
	payload, err := json.Marshal(ServerMessage{Event: event, Data: data})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range targets {
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.dropSlow(c)
	}
}

// BroadcastRoom is the scoped variant. The two base event types are
// broadcast globally; this exists for room-scoped extensions.
func (h *Hub) BroadcastRoom(room, event string, data json.RawMessage) {
	payload, err := json.Marshal(ServerMessage{Event: event, Room: room, Data: data})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range targets {
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.dropSlow(c)
	}
}

func (h *Hub) dropSlow(c *Client) {
	h.logger.Warn("Disconnecting slow consumer", zap.String("client_id", c.id))
	h.Unregister(c)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// InRoom reports room membership, mainly for tests and introspection.
func (h *Hub) InRoom(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}
