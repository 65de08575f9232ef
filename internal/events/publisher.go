package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Vjossaab/commercify-backend/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher puts a raw payload on a named channel. Implementations are
// at-most-once: a returned error means the message may be lost.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: channel,
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// Emitter turns successful mutations into best-effort notifications.
// Publish failures are logged and swallowed: observability of change is
// best-effort, correctness of the underlying mutation is not.
type Emitter struct {
	pub    Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewEmitter(pub Publisher, logger *zap.Logger) *Emitter {
	return &Emitter{
		pub:    pub,
		logger: logger,
		now:    time.Now,
	}
}

func (e *Emitter) StockUpdated(ctx context.Context, productID string, stock int) {
	e.emit(ctx, ChannelStockUpdates, StockUpdate{
		ProductID: productID,
		Stock:     stock,
		Timestamp: e.now().UTC(),
	})
}

func (e *Emitter) ProductChanged(ctx context.Context, product domain.Product, action string) {
	e.emit(ctx, ChannelProductUpdates, ProductUpdate{
		Product:   product,
		Action:    action,
		Timestamp: e.now().UTC(),
	})
}

func (e *Emitter) emit(ctx context.Context, channel string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("Failed to marshal event",
			zap.String("channel", channel),
			zap.Error(err))
		return
	}

	if err := e.pub.Publish(ctx, channel, payload); err != nil {
		e.logger.Error("Failed to publish event",
			zap.String("channel", channel),
			zap.Error(err))
	}
}
