package events

import (
	"context"
	"sync"
)

// Broker is an in-process channel transport with the same at-most-once
// contract as Kafka: a subscriber that falls behind its buffer loses
// messages. Used in local mode and in tests.
type Broker struct {
	mu   sync.RWMutex
	subs map[*BrokerSubscription]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[*BrokerSubscription]struct{})}
}

func (b *Broker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if _, ok := sub.channels[channel]; !ok {
			continue
		}
		select {
		case sub.ch <- Envelope{Channel: channel, Payload: payload}:
		default:
			// subscriber buffer full, message dropped
		}
	}
	return nil
}

func (b *Broker) Subscribe(channels ...string) *BrokerSubscription {
	set := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		set[ch] = struct{}{}
	}

	sub := &BrokerSubscription{
		broker:   b,
		channels: set,
		ch:       make(chan Envelope, 256),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

type BrokerSubscription struct {
	broker   *Broker
	channels map[string]struct{}
	ch       chan Envelope
	once     sync.Once
}

func (s *BrokerSubscription) Receive(ctx context.Context) (Envelope, error) {
	select {
	case env := <-s.ch:
		return env, nil
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (s *BrokerSubscription) Close() error {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s)
		s.broker.mu.Unlock()
	})
	return nil
}
