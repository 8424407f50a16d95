package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadV2RoundTripWithKeys(t *testing.T) {
	var pub [32]byte
	pub[0] = 0x7

	protocolID, ok := ProtocolID("WakuPairing")
	require.True(t, ok)
	p := PayloadV2{
		ProtocolID:       protocolID,
		HandshakeKeys:    []NoisePublicKey{PlainPublicKey(pub)},
		TransportMessage: []byte("committed static key hash goes here"),
	}
	p.MessageNametag[0] = 0x11

	wire, err := p.Serialize()
	require.NoError(t, err)

	got, err := DeserializePayloadV2(wire)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestPayloadV2RoundTripNoKeysPostHandshake(t *testing.T) {
	protocolID, ok := ProtocolID("WakuPairing")
	require.True(t, ok)
	p := PayloadV2{
		ProtocolID:       protocolID,
		TransportMessage: []byte("transport ciphertext"),
	}
	wire, err := p.Serialize()
	require.NoError(t, err)

	got, err := DeserializePayloadV2(wire)
	require.NoError(t, err)
	require.Empty(t, got.HandshakeKeys)
	require.Equal(t, p.TransportMessage, got.TransportMessage)
}

func TestPayloadV2RoundTripEmptyTransportMessage(t *testing.T) {
	xx, ok := ProtocolID("XX")
	require.True(t, ok)
	p := PayloadV2{ProtocolID: xx}
	wire, err := p.Serialize()
	require.NoError(t, err)

	got, err := DeserializePayloadV2(wire)
	require.NoError(t, err)
	require.Empty(t, got.TransportMessage)
}

func TestPayloadV2SerializeRejectsOversizedKeyList(t *testing.T) {
	var keys []NoisePublicKey
	for i := 0; i < 6; i++ {
		keys = append(keys, EncryptedPublicKey(make([]byte, 48)))
	}
	p := PayloadV2{HandshakeKeys: keys}
	_, err := p.Serialize()
	require.ErrorIs(t, err, ErrHandshakeTooLarge)
}

func TestDeserializePayloadV2RejectsTruncatedInput(t *testing.T) {
	_, err := DeserializePayloadV2(make([]byte, 10))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestDeserializePayloadV2RejectsGarbageWithoutPanicking(t *testing.T) {
	garbage := [][]byte{
		nil,
		{0x01},
		append(make([]byte, 18), 0xFF),
		append(make([]byte, 18), []byte{0, 0, 0, 0, 0, 0, 0, 0xFF}...),
	}
	for _, g := range garbage {
		require.NotPanics(t, func() {
			_, _ = DeserializePayloadV2(g)
		})
	}
}

func TestDeserializePayloadV2RejectsDeclaredMessageLenLongerThanInput(t *testing.T) {
	p := PayloadV2{TransportMessage: []byte("short")}
	wire, err := p.Serialize()
	require.NoError(t, err)

	truncated := wire[:len(wire)-2]
	_, err = DeserializePayloadV2(truncated)
	require.ErrorIs(t, err, ErrInvalidKey)
}
