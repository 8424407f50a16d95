package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProtocolIDTable(t *testing.T) {
	cases := map[string]uint8{
		"K1K1":        10,
		"XK1":         11,
		"XX":          12,
		"XXpsk0":      13,
		"WakuPairing": 14,
	}
	for name, want := range cases {
		got, ok := ProtocolID(name)
		require.True(t, ok, name)
		require.Equal(t, want, got, name)
	}
}

func TestProtocolIDRejectsUnknownPattern(t *testing.T) {
	_, ok := ProtocolID("NotAPattern")
	require.False(t, ok)
}

func TestProtocolNameBuildsNoisePrefix(t *testing.T) {
	require.Equal(t, "Noise_WakuPairing_25519_ChaChaPoly_SHA256", ProtocolName("WakuPairing"))
}

func TestIsPSKDetectsPSKVariantsOnly(t *testing.T) {
	require.True(t, PatternXXpsk0.IsPSK())
	require.False(t, PatternXX.IsPSK())
	require.False(t, PatternWakuPairing.IsPSK())
}

func TestWakuPairingPatternShape(t *testing.T) {
	require.Len(t, PatternWakuPairing.PreMessages, 1)
	require.Equal(t, DirRespToInit, PatternWakuPairing.PreMessages[0].Dir)
	require.Equal(t, []Token{TokenE}, PatternWakuPairing.PreMessages[0].Tokens)

	require.Len(t, PatternWakuPairing.Messages, 3)
	require.Equal(t, []Token{TokenE, TokenEE}, PatternWakuPairing.Messages[0].Tokens)
	require.Equal(t, []Token{TokenS, TokenES}, PatternWakuPairing.Messages[1].Tokens)
	require.Equal(t, []Token{TokenS, TokenSE, TokenSS}, PatternWakuPairing.Messages[2].Tokens)
}
