package crypto

import "encoding/binary"

// nametagBufferSize is the size of the sliding window of expected nametags.
// With this window, dropping up to 49 consecutive messages is detectable as
// OutOfOrder; dropping 50 or more degrades to NotFound.
const nametagBufferSize = 50

// MessageNametagBuffer is a sliding window of expected per-message nametags
// derived from a post-handshake secret, tolerating loss/reordering on an
// unordered transport while preserving at-most-once delivery semantics per
// nametag.
type MessageNametagBuffer struct {
	secret  *[32]byte
	ring    [][16]byte
	counter uint64
}

// NewMessageNametagBuffer builds a buffer pre-filled with the first
// nametagBufferSize expected tags. A nil secret is valid only before
// finalization: pop returns all-zero tags and checkNametag never matches.
func NewMessageNametagBuffer(secret *[32]byte) *MessageNametagBuffer {
	buf := &MessageNametagBuffer{
		secret: secret,
		ring:   make([][16]byte, nametagBufferSize),
	}
	for i := range buf.ring {
		buf.ring[i] = buf.generate(uint64(i))
	}
	buf.counter = nametagBufferSize
	return buf
}

func (b *MessageNametagBuffer) generate(counter uint64) [16]byte {
	var tag [16]byte
	if b.secret == nil {
		return tag
	}
	var kb [8]byte
	binary.LittleEndian.PutUint64(kb[:], counter)
	out := hkdfExpand(b.secret[:], kb[:], nil, 1)
	copy(tag[:], out[0][:16])
	return tag
}

// Pop returns the head nametag, rotates the ring left by one, and appends
// one freshly derived tail entry. Used by the sender before transmitting a
// message and by the receiver immediately after a successful decryption.
func (b *MessageNametagBuffer) Pop() [16]byte {
	head := b.ring[0]
	copy(b.ring, b.ring[1:])
	b.ring[len(b.ring)-1] = b.generate(b.counter)
	b.counter++
	return head
}

// CheckNametag reports where tag sits in the expected window.
func (b *MessageNametagBuffer) CheckNametag(tag [16]byte) error {
	if b.secret == nil {
		return ErrNotFound
	}
	for i, t := range b.ring {
		if t == tag {
			if i == 0 {
				return nil
			}
			return &OutOfOrderError{Skipped: i}
		}
	}
	return ErrNotFound
}

// Delete rotates the head forward by n entries and regenerates n new tail
// entries, resynchronizing after an OutOfOrder result. The skipped messages
// are permanently unrecoverable.
func (b *MessageNametagBuffer) Delete(n int) {
	if n <= 0 {
		return
	}
	if n > len(b.ring) {
		n = len(b.ring)
	}
	copy(b.ring, b.ring[n:])
	for i := len(b.ring) - n; i < len(b.ring); i++ {
		b.ring[i] = b.generate(b.counter)
		b.counter++
	}
}
