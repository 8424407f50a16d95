package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDHSymmetry(t *testing.T) {
	a, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := GenerateKeyPair()
	require.NoError(t, err)

	require.Equal(t, dh(a.Private, b.Public), dh(b.Private, a.Public))
}

func TestDHFailureIsZeroNotPanic(t *testing.T) {
	var priv, pub, out [32]byte
	require.NotPanics(t, func() {
		out = dh(priv, pub)
	})
	require.Equal(t, [32]byte{}, out)
}

func TestAEADRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	nonce := make([]byte, 12)
	ad := []byte("associated data")
	pt := []byte("hello pairing")

	ct, err := aeadEncrypt(key, nonce, ad, pt)
	require.NoError(t, err)

	got, err := aeadDecrypt(key, nonce, ad, ct)
	require.NoError(t, err)
	require.Equal(t, pt, got)
}

func TestAEADTamperDetection(t *testing.T) {
	key := make([]byte, 32)
	nonce := make([]byte, 12)
	ad := []byte("ad")
	ct, err := aeadEncrypt(key, nonce, ad, []byte("payload"))
	require.NoError(t, err)

	t.Run("flip ciphertext", func(t *testing.T) {
		tampered := append([]byte(nil), ct...)
		tampered[0] ^= 0xFF
		_, err := aeadDecrypt(key, nonce, ad, tampered)
		require.ErrorIs(t, err, ErrAuthenticationFailure)
	})

	t.Run("flip ad", func(t *testing.T) {
		_, err := aeadDecrypt(key, nonce, []byte("different"), ct)
		require.ErrorIs(t, err, ErrAuthenticationFailure)
	})

	t.Run("flip nonce", func(t *testing.T) {
		badNonce := append([]byte(nil), nonce...)
		badNonce[0] = 1
		_, err := aeadDecrypt(key, badNonce, ad, ct)
		require.ErrorIs(t, err, ErrAuthenticationFailure)
	})

	t.Run("flip key", func(t *testing.T) {
		badKey := append([]byte(nil), key...)
		badKey[0] = 1
		_, err := aeadDecrypt(badKey, nonce, ad, ct)
		require.ErrorIs(t, err, ErrAuthenticationFailure)
	})
}

func TestCommitBindsBothInputs(t *testing.T) {
	var pub1, pub2, r1, r2 [32]byte
	pub2[0] = 1
	r2[0] = 1

	require.NotEqual(t, Commit(pub1, r1), Commit(pub2, r1))
	require.NotEqual(t, Commit(pub1, r1), Commit(pub1, r2))
	require.Equal(t, Commit(pub1, r1), Commit(pub1, r1))
}

func TestRandomBytes32Length(t *testing.T) {
	b, err := RandomBytes32()
	require.NoError(t, err)
	require.Len(t, b, 32)
}
