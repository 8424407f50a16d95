// Package memory implements an in-process content-topic-keyed publish/
// subscribe transport, the pairing.Sender/pairing.Receiver pair used by
// tests and single-process demos: mutex-guarded maps of channels with an
// atomic closed flag per subscriber, fanning out by topic.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/waku-org/go-noise-pairing/crypto"
	"github.com/waku-org/go-noise-pairing/pairing"
)

const subscriberBuffer = 32

// Broker is a single process's message bus: Send publishes wire bytes on a
// content topic, Subscribe hands back a channel of successfully decoded
// payloads for that topic.
type Broker struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
}

// NewBroker creates an empty bus.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]*subscription)}
}

type subscription struct {
	topic   string
	decoder pairing.Decoder
	ch      chan crypto.PayloadV2
	closed  uint32
	broker  *Broker
}

func (s *subscription) Messages() <-chan crypto.PayloadV2 {
	return s.ch
}

func (s *subscription) Stop() {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return
	}
	s.broker.remove(s)
	close(s.ch)
}

// Subscribe registers a decoder against its content topic. Messages
// published before Subscribe is called are not delivered (no replay).
func (b *Broker) Subscribe(ctx context.Context, decoder pairing.Decoder) (pairing.Subscription, error) {
	sub := &subscription{
		topic:   decoder.ContentTopic(),
		decoder: decoder,
		ch:      make(chan crypto.PayloadV2, subscriberBuffer),
		broker:  b,
	}
	b.mu.Lock()
	b.subs[sub.topic] = append(b.subs[sub.topic], sub)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Stop()
	}()

	return sub, nil
}

func (b *Broker) remove(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[target.topic]
	for i, s := range list {
		if s == target {
			b.subs[target.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// Send encodes payload and fans it out to every subscriber currently on
// encoder's content topic whose decoder accepts it. A full subscriber
// buffer drops the message for that subscriber rather than blocking the
// sender, matching the unordered, lossy transport the pairing driver is
// built to tolerate.
func (b *Broker) Send(ctx context.Context, encoder pairing.Encoder, payload crypto.PayloadV2) error {
	wire, err := encoder.ToWire(payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	subs := append([]*subscription(nil), b.subs[encoder.ContentTopic()]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		decoded, ok := sub.decoder.FromWire(wire)
		if !ok {
			continue
		}
		select {
		case sub.ch <- decoded:
		default:
		}
	}
	return nil
}
