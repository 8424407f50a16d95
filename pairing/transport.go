package pairing

import (
	"context"

	"github.com/waku-org/go-noise-pairing/crypto"
)

// Encoder pairs a content topic with a wire transformation, the collaborator
// contract a Sender needs.
type Encoder interface {
	ContentTopic() string
	ToWire(payload crypto.PayloadV2) ([]byte, error)
}

// Decoder pairs a content topic with a wire transformation back to a
// PayloadV2, only succeeding when version and payload checks pass.
type Decoder interface {
	ContentTopic() string
	FromWire(data []byte) (crypto.PayloadV2, bool)
}

// Sender publishes a message via an Encoder. It must be callable
// synchronously from the pairing driver's suspension points.
type Sender interface {
	Send(ctx context.Context, encoder Encoder, payload crypto.PayloadV2) error
}

// Subscription is the iterator side of a Receiver: Messages yields payloads
// that decoded successfully on the subscribed content topic, in arrival
// order; Stop unsubscribes.
type Subscription interface {
	Messages() <-chan crypto.PayloadV2
	Stop()
}

// Receiver subscribes a Decoder to its content topic.
type Receiver interface {
	Subscribe(ctx context.Context, decoder Decoder) (Subscription, error)
}

// Transport bundles the two external collaborators the pairing driver needs.
type Transport struct {
	Sender   Sender
	Receiver Receiver
}
