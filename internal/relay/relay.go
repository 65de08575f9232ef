package relay

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Vjossaab/commercify-backend/internal/events"
)

// Relay bridges the channel transport to live client connections. It
// holds one long-lived subscription and re-broadcasts every valid
// message globally; a malformed payload is logged and dropped, never
// allowed to stop the loop.
type Relay struct {
	sub    events.Subscriber
	hub    *Hub
	logger *zap.Logger
}

func NewRelay(sub events.Subscriber, hub *Hub, logger *zap.Logger) *Relay {
	return &Relay{
		sub:    sub,
		hub:    hub,
		logger: logger,
	}
}

// Run consumes the subscription until ctx is done. It runs on its own
// goroutine, independent of connection handling.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("Relay listener started")

	for {
		env, err := r.sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("Relay listener stopped")
				return ctx.Err()
			}
			return err
		}
		r.Dispatch(env)
	}
}

// Dispatch validates one transport message and broadcasts it. Payloads
// are forwarded verbatim so unknown extra fields survive the hop.
func (r *Relay) Dispatch(env events.Envelope) {
	switch env.Channel {
	case events.ChannelStockUpdates:
		var ev events.StockUpdate
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			r.logger.Warn("Dropping malformed stock update",
				zap.Error(err))
			return
		}
		r.hub.Broadcast(EventStockUpdate, json.RawMessage(env.Payload))

	case events.ChannelProductUpdates:
		var ev events.ProductUpdate
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			r.logger.Warn("Dropping malformed product update",
				zap.Error(err))
			return
		}
		r.hub.Broadcast(EventProductUpdate, json.RawMessage(env.Payload))

	default:
		r.logger.Debug("Dropping message on unknown channel",
			zap.String("channel", env.Channel))
	}
}
