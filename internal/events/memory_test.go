package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/domain"
	"github.com/Vjossaab/commercify-backend/internal/events"
)

func TestBrokerRoundTrip(t *testing.T) {
	ctx := context.Background()
	broker := events.NewBroker()

	sub := broker.Subscribe(events.ChannelStockUpdates)
	defer sub.Close()

	require.NoError(t, broker.Publish(ctx, events.ChannelStockUpdates, []byte(`{"stock":1}`)))
	require.NoError(t, broker.Publish(ctx, events.ChannelProductUpdates, []byte(`{"ignored":true}`)))

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	env, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, events.ChannelStockUpdates, env.Channel)
	assert.JSONEq(t, `{"stock":1}`, string(env.Payload))

	// the product_updates message was not delivered to this subscription
	shortCtx, cancelShort := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancelShort()
	_, err = sub.Receive(shortCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClosedSubscriptionReceivesNothing(t *testing.T) {
	ctx := context.Background()
	broker := events.NewBroker()
	sub := broker.Subscribe(events.ChannelStockUpdates)
	require.NoError(t, sub.Close())

	require.NoError(t, broker.Publish(ctx, events.ChannelStockUpdates, []byte(`{}`)))

	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := sub.Receive(shortCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(context.Context, string, []byte) error {
	p.calls++
	return errors.New("broker down")
}

func TestEmitterSwallowsPublishFailures(t *testing.T) {
	ctx := context.Background()
	pub := &failingPublisher{}
	emitter := events.NewEmitter(pub, zap.NewNop())

	// must not panic or surface the transport failure
	emitter.StockUpdated(ctx, "p1", 4)
	emitter.ProductChanged(ctx, domain.Product{ProductID: "p1"}, events.ActionUpdated)
	assert.Equal(t, 2, pub.calls)
}

func TestEmitterPayloadShape(t *testing.T) {
	ctx := context.Background()
	broker := events.NewBroker()
	sub := broker.Subscribe(events.ChannelStockUpdates, events.ChannelProductUpdates)
	defer sub.Close()

	emitter := events.NewEmitter(broker, zap.NewNop())
	emitter.StockUpdated(ctx, "p1", 4)

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	env, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	require.Equal(t, events.ChannelStockUpdates, env.Channel)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &raw))
	assert.Equal(t, "p1", raw["productId"])
	assert.Equal(t, float64(4), raw["stock"])
	assert.Contains(t, raw, "timestamp")

	emitter.ProductChanged(ctx, domain.Product{ProductID: "p1", Name: "Keyboard"}, events.ActionCreated)
	env, err = sub.Receive(recvCtx)
	require.NoError(t, err)
	require.Equal(t, events.ChannelProductUpdates, env.Channel)

	var update events.ProductUpdate
	require.NoError(t, json.Unmarshal(env.Payload, &update))
	assert.Equal(t, events.ActionCreated, update.Action)
	assert.Equal(t, "Keyboard", update.Product.Name)
}
