package crypto

import "encoding/binary"

// nonceCap is the hard cap on the Nonce counter (2^32). It is a protocol
// choice matching the reference implementation rather than a cryptographic
// requirement of ChaCha20-Poly1305 (which permits a full 64-bit counter);
// implementations MUST enforce it identically to remain wire-compatible.
const nonceCap = uint64(1) << 32

// Nonce is a 64-bit monotonic counter serialized as the 12-byte little-endian
// IETF ChaCha20-Poly1305 nonce: 4 counter bytes followed by 8 zero bytes.
type Nonce struct {
	counter uint64
}

// NewNonce returns a Nonce at counter 0.
func NewNonce() Nonce {
	return Nonce{}
}

// Value returns the current counter value.
func (n Nonce) Value() uint64 {
	return n.counter
}

// AssertValid fails once the counter has reached the cap: a counter value of
// nonceCap can no longer be used as a ChaCha20-Poly1305 IETF nonce without
// truncation wraparound, so it marks the state poisoned.
func (n Nonce) AssertValid() error {
	if n.counter >= nonceCap {
		return ErrNonceExhausted
	}
	return nil
}

// Increment advances the counter by one. It only refuses when the counter is
// already at or past the cap; the call that pushes the counter to exactly
// the cap is allowed to succeed; the resulting state is then rejected by the
// next AssertValid.
func (n *Nonce) Increment() error {
	if n.counter >= nonceCap {
		return ErrNonceExhausted
	}
	n.counter++
	return nil
}

// Bytes serializes the nonce to its 12-byte wire form.
func (n Nonce) Bytes() [12]byte {
	var out [12]byte
	binary.LittleEndian.PutUint32(out[0:4], uint32(n.counter))
	return out
}
