package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageNametagBufferInOrder(t *testing.T) {
	var secret [32]byte
	secret[0] = 0x9
	sender := NewMessageNametagBuffer(&secret)
	receiver := NewMessageNametagBuffer(&secret)

	for i := 0; i < 5; i++ {
		tag := sender.Pop()
		err := receiver.CheckNametag(tag)
		require.NoError(t, err)
		require.Equal(t, tag, receiver.Pop())
	}
}

// TestMessageNametagBufferOutOfOrder checks that dropping a single message
// (fewer than the window size) is detectable as OutOfOrderError with the
// exact skip count, and that Delete resynchronizes the window so
// subsequent in-order messages check out clean again.
func TestMessageNametagBufferOutOfOrder(t *testing.T) {
	var secret [32]byte
	secret[0] = 0x9
	sender := NewMessageNametagBuffer(&secret)
	receiver := NewMessageNametagBuffer(&secret)

	dropped := sender.Pop()
	_ = dropped
	next := sender.Pop()

	err := receiver.CheckNametag(next)
	var ooo *OutOfOrderError
	require.ErrorAs(t, err, &ooo)
	require.Equal(t, 1, ooo.Skipped)

	receiver.Delete(1)
	require.NoError(t, receiver.CheckNametag(next))
	require.Equal(t, next, receiver.Pop())
}

// TestMessageNametagBufferNotFoundBeyondWindow checks that skipping
// nametagBufferSize or more messages pushes the tag outside the window
// entirely, degrading the diagnostic to ErrNotFound.
func TestMessageNametagBufferNotFoundBeyondWindow(t *testing.T) {
	var secret [32]byte
	secret[0] = 0x9
	sender := NewMessageNametagBuffer(&secret)
	receiver := NewMessageNametagBuffer(&secret)

	for i := 0; i < nametagBufferSize; i++ {
		sender.Pop()
	}
	farAhead := sender.Pop()

	err := receiver.CheckNametag(farAhead)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMessageNametagBufferNilSecretNeverMatches(t *testing.T) {
	buf := NewMessageNametagBuffer(nil)
	var zero [16]byte
	require.Equal(t, zero, buf.Pop())
	require.ErrorIs(t, buf.CheckNametag(zero), ErrNotFound)
}
