package relay_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/events"
	"github.com/Vjossaab/commercify-backend/internal/relay"
)

func TestDispatchForwardsPayloadVerbatim(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	rel := relay.NewRelay(nil, hub, zap.NewNop())
	c := hub.Register()

	// unknown extra fields must survive the hop
	payload := `{"productId":"p1","stock":4,"timestamp":"2026-08-29T10:00:00Z","extra":"kept"}`
	rel.Dispatch(events.Envelope{Channel: events.ChannelStockUpdates, Payload: []byte(payload)})

	msg := readMessage(t, c)
	assert.Equal(t, relay.EventStockUpdate, msg.Event)
	assert.JSONEq(t, payload, string(msg.Data))
}

func TestDispatchDropsMalformedAndUnknown(t *testing.T) {
	hub := relay.NewHub(zap.NewNop(), 0)
	rel := relay.NewRelay(nil, hub, zap.NewNop())
	c := hub.Register()

	rel.Dispatch(events.Envelope{Channel: events.ChannelStockUpdates, Payload: []byte("{not json")})
	rel.Dispatch(events.Envelope{Channel: "mystery_channel", Payload: []byte(`{}`)})
	assertNoMessage(t, c)

	// the loop keeps processing after a malformed message
	valid := `{"productId":"p1","stock":4,"timestamp":"2026-08-29T10:00:00Z"}`
	rel.Dispatch(events.Envelope{Channel: events.ChannelStockUpdates, Payload: []byte(valid)})

	msg := readMessage(t, c)
	assert.Equal(t, relay.EventStockUpdate, msg.Event)
}

func TestRelayRunsAgainstBroker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := events.NewBroker()
	sub := broker.Subscribe(events.ChannelStockUpdates, events.ChannelProductUpdates)
	defer sub.Close()

	hub := relay.NewHub(zap.NewNop(), 0)
	rel := relay.NewRelay(sub, hub, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- rel.Run(ctx) }()

	c := hub.Register()

	stockPayload, err := json.Marshal(events.StockUpdate{ProductID: "p1", Stock: 4, Timestamp: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, events.ChannelStockUpdates, stockPayload))

	msg := readMessage(t, c)
	assert.Equal(t, relay.EventStockUpdate, msg.Event)

	var ev events.StockUpdate
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "p1", ev.ProductID)
	assert.Equal(t, 4, ev.Stock)

	// malformed traffic must not kill the listener
	require.NoError(t, broker.Publish(ctx, events.ChannelProductUpdates, []byte("garbage")))
	require.NoError(t, broker.Publish(ctx, events.ChannelStockUpdates, stockPayload))
	msg = readMessage(t, c)
	assert.Equal(t, relay.EventStockUpdate, msg.Event)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
