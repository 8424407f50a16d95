package crypto

import "encoding/binary"

// PayloadV2 is the wire frame carrying both handshake and post-handshake
// traffic: a message nametag for out-of-order-tolerant addressing, the
// protocol id, the handshake key list (empty post-handshake), and the
// transport ciphertext.
type PayloadV2 struct {
	MessageNametag   [16]byte
	ProtocolID       uint8
	HandshakeKeys    []NoisePublicKey
	TransportMessage []byte
}

// Serialize renders the frame as:
// nametag(16) || protocolId(1) || keysLen(1) || keys... || msgLen(8,LE) || msg.
func (p PayloadV2) Serialize() ([]byte, error) {
	keysLen := 0
	for _, k := range p.HandshakeKeys {
		keysLen += k.Len()
	}
	if keysLen > 255 {
		return nil, ErrHandshakeTooLarge
	}

	out := make([]byte, 0, 16+1+1+keysLen+8+len(p.TransportMessage))
	out = append(out, p.MessageNametag[:]...)
	out = append(out, p.ProtocolID)
	out = append(out, byte(keysLen))
	for _, k := range p.HandshakeKeys {
		out = append(out, k.Serialize()...)
	}
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(p.TransportMessage)))
	out = append(out, lenBuf[:]...)
	out = append(out, p.TransportMessage...)
	return out, nil
}

// DeserializePayloadV2 parses a wire frame, validating every declared length
// against the remaining input before slicing it.
func DeserializePayloadV2(data []byte) (PayloadV2, error) {
	var p PayloadV2
	if len(data) < 16+1+1 {
		return PayloadV2{}, ErrInvalidKey
	}
	copy(p.MessageNametag[:], data[0:16])
	p.ProtocolID = data[16]
	keysLen := int(data[17])
	offset := 18
	if len(data) < offset+keysLen {
		return PayloadV2{}, ErrInvalidKey
	}
	keyBytes := data[offset : offset+keysLen]
	offset += keysLen

	for len(keyBytes) > 0 {
		key, n, err := DeserializeNoisePublicKey(keyBytes)
		if err != nil {
			return PayloadV2{}, err
		}
		p.HandshakeKeys = append(p.HandshakeKeys, key)
		keyBytes = keyBytes[n:]
	}

	if len(data) < offset+8 {
		return PayloadV2{}, ErrInvalidKey
	}
	msgLen := binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	if uint64(len(data)-offset) < msgLen {
		return PayloadV2{}, ErrInvalidKey
	}
	p.TransportMessage = append([]byte{}, data[offset:offset+int(msgLen)]...)
	return p, nil
}
