package relay_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/relay"
)

func readMessage(t *testing.T, c *relay.Client) relay.ServerMessage {
	t.Helper()
	select {
	case payload := <-c.Outbound():
		var msg relay.ServerMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return relay.ServerMessage{}
	}
}

func assertNoMessage(t *testing.T, c *relay.Client) {
	t.Helper()
	select {
	case payload := <-c.Outbound():
		t.Fatalf("unexpected message: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	c1 := hub.Register()
	c2 := hub.Register()

	data := json.RawMessage(`{"productId":"p1","stock":4}`)
	hub.Broadcast(relay.EventStockUpdate, data)

	for _, c := range []*relay.Client{c1, c2} {
		msg := readMessage(t, c)
		assert.Equal(t, relay.EventStockUpdate, msg.Event)
		assert.JSONEq(t, string(data), string(msg.Data))
	}
}

func TestSlowConsumerIsDisconnected(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 1)
	c := hub.Register()
	require.Equal(t, 1, hub.ClientCount())

	data := json.RawMessage(`{"productId":"p1","stock":4}`)
	hub.Broadcast(relay.EventStockUpdate, data)
	// buffer full and nobody draining: the second broadcast drops the client
	hub.Broadcast(relay.EventStockUpdate, data)

	assert.Equal(t, 0, hub.ClientCount())
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("expected client to be closed")
	}
}

func TestRoomMembership(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	member := hub.Register()
	outsider := hub.Register()

	hub.Join(member, "sellers")
	assert.True(t, hub.InRoom(member, "sellers"))
	assert.False(t, hub.InRoom(outsider, "sellers"))

	data := json.RawMessage(`{"hello":"room"}`)
	hub.BroadcastRoom("sellers", relay.EventProductUpdate, data)

	msg := readMessage(t, member)
	assert.Equal(t, "sellers", msg.Room)
	assertNoMessage(t, outsider)

	hub.Leave(member, "sellers")
	assert.False(t, hub.InRoom(member, "sellers"))

	hub.BroadcastRoom("sellers", relay.EventProductUpdate, data)
	assertNoMessage(t, member)
}

func TestUnregisterDropsMemberships(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	c := hub.Register()
	hub.Join(c, "a")
	hub.Join(c, "b")

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.InRoom(c, "a"))
	assert.False(t, hub.InRoom(c, "b"))

	// second unregister is a no-op
	hub.Unregister(c)
}
