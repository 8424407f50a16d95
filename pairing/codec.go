package pairing

import "github.com/waku-org/go-noise-pairing/crypto"

// payloadCodec is the concrete Encoder/Decoder for a single content topic,
// wrapping PayloadV2's own wire serialization.
type payloadCodec struct {
	topic string
}

func newPayloadCodec(topic string) payloadCodec {
	return payloadCodec{topic: topic}
}

func (c payloadCodec) ContentTopic() string { return c.topic }

func (c payloadCodec) ToWire(payload crypto.PayloadV2) ([]byte, error) {
	return payload.Serialize()
}

// FromWire decodes a wire frame, reporting false rather than an error on any
// malformed input so the receiver side can log-and-drop without surfacing a
// decode-failure oracle to the transport.
func (c payloadCodec) FromWire(data []byte) (crypto.PayloadV2, bool) {
	p, err := crypto.DeserializePayloadV2(data)
	if err != nil {
		return crypto.PayloadV2{}, false
	}
	return p, true
}
