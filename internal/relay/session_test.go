package relay_test

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/relay"
)

type pipeClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func (c *pipeClient) read(t *testing.T) relay.ServerMessage {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(time.Second)))
	line, err := c.r.ReadBytes('\n')
	require.NoError(t, err)

	var msg relay.ServerMessage
	require.NoError(t, json.Unmarshal(line, &msg))
	return msg
}

func (c *pipeClient) send(t *testing.T, msg relay.ClientMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, c.conn.SetWriteDeadline(time.Now().Add(time.Second)))
	_, err = c.conn.Write(append(payload, '\n'))
	require.NoError(t, err)
}

func startSession(t *testing.T, hub *relay.Hub) *pipeClient {
	t.Helper()
	server, client := net.Pipe()
	sess := relay.NewSession(server, hub, zap.NewNop(), time.Minute)
	go sess.Run()
	t.Cleanup(func() { client.Close() })
	return &pipeClient{conn: client, r: bufio.NewReader(client)}
}

func TestSessionLifecycle(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	c := startSession(t, hub)

	greeting := c.read(t)
	assert.Equal(t, relay.EventConnected, greeting.Event)
	assert.NotEmpty(t, greeting.Message)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	c.send(t, relay.ClientMessage{Event: relay.EventJoinRoom, Room: "sellers"})
	ack := c.read(t)
	assert.Equal(t, relay.EventJoinedRoom, ack.Event)
	assert.Equal(t, "sellers", ack.Room)

	hub.BroadcastRoom("sellers", relay.EventProductUpdate, json.RawMessage(`{"ok":true}`))
	push := c.read(t)
	assert.Equal(t, relay.EventProductUpdate, push.Event)

	c.send(t, relay.ClientMessage{Event: relay.EventLeaveRoom, Room: "sellers"})
	ack = c.read(t)
	assert.Equal(t, relay.EventLeftRoom, ack.Event)

	// unknown events are ignored, the session stays up
	c.send(t, relay.ClientMessage{Event: "selfdestruct"})
	hub.Broadcast(relay.EventStockUpdate, json.RawMessage(`{"productId":"p1","stock":4}`))
	push = c.read(t)
	assert.Equal(t, relay.EventStockUpdate, push.Event)
}

func TestSessionDisconnectCleansUp(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	c := startSession(t, hub)

	_ = c.read(t) // greeting
	c.send(t, relay.ClientMessage{Event: relay.EventJoinRoom, Room: "sellers"})
	_ = c.read(t)

	require.NoError(t, c.conn.Close())

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
