package relay

import (
	"encoding/json"
)

// Inbound events a connected client may send.
const (
	EventJoinRoom  = "join_room"
	EventLeaveRoom = "leave_room"
)

// Outbound events pushed to clients.
const (
	EventConnected     = "connected"
	EventJoinedRoom    = "joined_room"
	EventLeftRoom      = "left_room"
	EventStockUpdate   = "stock_update"
	EventProductUpdate = "product_update"
)

// ClientMessage is one framed request from a client. The framing is
// newline-delimited JSON; the protocol itself is transport-agnostic.
type ClientMessage struct {
	Event string `json:"event"`
	Room  string `json:"room,omitempty"`
}

// ServerMessage is one framed message pushed to a client. Data carries
// channel payloads through verbatim so clients see exactly the fields
// that were published.
type ServerMessage struct {
	Event   string          `json:"event"`
	Room    string          `json:"room,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
