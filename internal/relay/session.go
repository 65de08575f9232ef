package relay

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

const (
	defaultIdleTimeout = 5 * time.Minute
	writeTimeout       = 10 * time.Second
)

// Session drives one client connection: a read loop consuming framed
// requests and a write loop draining the client's send buffer. The two
// run independently so a stalled peer never blocks broadcast fan-out.
type Session struct {
	conn        net.Conn
	hub         *Hub
	logger      *zap.Logger
	idleTimeout time.Duration
}

func NewSession(conn net.Conn, hub *Hub, logger *zap.Logger, idleTimeout time.Duration) *Session {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	return &Session{
		conn:        conn,
		hub:         hub,
		logger:      logger,
		idleTimeout: idleTimeout,
	}
}

func (s *Session) Run() {
	client := s.hub.Register()
	defer func() {
		s.hub.Unregister(client)
		s.conn.Close()
	}()

	s.hub.Send(client, ServerMessage{
		Event:   EventConnected,
		Message: "Connected to Commercify event relay",
	})

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Session) readLoop(client *Client) {
	dec := json.NewDecoder(s.conn)
	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
			return
		}

		var msg ClientMessage
		if err := dec.Decode(&msg); err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("Read loop ended",
					zap.String("client_id", client.ID()),
					zap.Error(err))
			}
			return
		}

		s.handle(client, msg)
	}
}

func (s *Session) handle(client *Client, msg ClientMessage) {
	switch msg.Event {
	case EventJoinRoom:
		if msg.Room == "" {
			return
		}
		s.hub.Join(client, msg.Room)
		s.hub.Send(client, ServerMessage{Event: EventJoinedRoom, Room: msg.Room})

	case EventLeaveRoom:
		if msg.Room == "" {
			return
		}
		s.hub.Leave(client, msg.Room)
		s.hub.Send(client, ServerMessage{Event: EventLeftRoom, Room: msg.Room})

	default:
		s.logger.Debug("Ignoring unknown client event",
			zap.String("client_id", client.ID()),
			zap.String("event", msg.Event))
	}
}

func (s *Session) writeLoop(client *Client) {
	for {
		select {
		case payload := <-client.Outbound():
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			// payload is shared across clients, frame into a fresh buffer
			frame := make([]byte, 0, len(payload)+1)
			frame = append(frame, payload...)
			frame = append(frame, '\n')
			if _, err := s.conn.Write(frame); err != nil {
				s.conn.Close()
				return
			}
		case <-client.Done():
			s.conn.Close()
			return
		}
	}
}
