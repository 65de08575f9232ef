package events

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Subscriber is one long-lived subscription over a set of channels.
// Receive blocks until a message arrives or ctx is done.
type Subscriber interface {
	Receive(ctx context.Context) (Envelope, error)
	Close() error
}

type KafkaSubscriber struct {
	readers []*kafka.Reader
	out     chan Envelope
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewKafkaSubscriber(brokers, groupID string, channels []string, logger *zap.Logger) *KafkaSubscriber {
	readers := make([]*kafka.Reader, 0, len(channels))
	for _, ch := range channels {
		readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers: strings.Split(brokers, ","),
			GroupID: groupID,
			Topic:   ch,
		}))
	}

	return &KafkaSubscriber{
		readers: readers,
		out:     make(chan Envelope, 256),
		logger:  logger,
	}
}

// Start launches one consuming goroutine per channel. Goroutines exit
// when ctx is cancelled or their reader is closed.
func (s *KafkaSubscriber) Start(ctx context.Context) {
	for _, r := range s.readers {
		s.wg.Add(1)
		go func(r *kafka.Reader) {
			defer s.wg.Done()
			for {
				msg, err := r.ReadMessage(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					s.logger.Error("Error reading message",
						zap.String("topic", r.Config().Topic),
						zap.Error(err))
					return
				}

				select {
				case s.out <- Envelope{Channel: msg.Topic, Payload: msg.Value}:
				case <-ctx.Done():
					return
				}
			}
		}(r)
	}
}

func (s *KafkaSubscriber) Receive(ctx context.Context) (Envelope, error) {
	select {
	case env := <-s.out:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (s *KafkaSubscriber) Close() error {
	var firstErr error
	for _, r := range s.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.wg.Wait()
	return firstErr
}
