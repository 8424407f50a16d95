package crypto

// NoisePublicKey is a tagged public-key value as it appears on the wire: a
// flag distinguishing a plaintext X25519 coordinate from a ChaCha20-Poly1305
// ciphertext of one, followed by the bytes themselves.
type NoisePublicKey struct {
	Flag  byte // 0 = unencrypted 32-byte X coordinate, 1 = 48-byte ciphertext+tag
	Bytes []byte
}

// PlainPublicKey wraps a 32-byte X coordinate as an unencrypted NoisePublicKey.
func PlainPublicKey(pub [32]byte) NoisePublicKey {
	b := make([]byte, 32)
	copy(b, pub[:])
	return NoisePublicKey{Flag: 0, Bytes: b}
}

// EncryptedPublicKey wraps an AEAD ciphertext+tag as an encrypted NoisePublicKey.
func EncryptedPublicKey(ciphertext []byte) NoisePublicKey {
	b := make([]byte, len(ciphertext))
	copy(b, ciphertext)
	return NoisePublicKey{Flag: 1, Bytes: b}
}

// Serialize renders the key as flag_byte || bytes.
func (k NoisePublicKey) Serialize() []byte {
	out := make([]byte, 0, 1+len(k.Bytes))
	out = append(out, k.Flag)
	out = append(out, k.Bytes...)
	return out
}

// Len reports the serialized length.
func (k NoisePublicKey) Len() int {
	return 1 + len(k.Bytes)
}

// DeserializeNoisePublicKey parses a single flag_byte || bytes key, consuming
// exactly 33 bytes for flag=0 or 49 bytes for flag=1 from the front of data.
// It returns the parsed key and the number of bytes consumed.
func DeserializeNoisePublicKey(data []byte) (NoisePublicKey, int, error) {
	if len(data) < 1 {
		return NoisePublicKey{}, 0, ErrInvalidKey
	}
	flag := data[0]
	switch flag {
	case 0:
		if len(data) < 1+32 {
			return NoisePublicKey{}, 0, ErrInvalidKey
		}
		b := make([]byte, 32)
		copy(b, data[1:1+32])
		return NoisePublicKey{Flag: 0, Bytes: b}, 1 + 32, nil
	case 1:
		if len(data) < 1+48 {
			return NoisePublicKey{}, 0, ErrInvalidKey
		}
		b := make([]byte, 48)
		copy(b, data[1:1+48])
		return NoisePublicKey{Flag: 1, Bytes: b}, 1 + 48, nil
	default:
		return NoisePublicKey{}, 0, ErrInvalidKey
	}
}
