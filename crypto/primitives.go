// Package crypto implements the Noise Protocol Framework primitives and
// handshake engine specialized for Noise_WakuPairing_25519_ChaChaPoly_SHA256
// and a handful of sibling patterns used for device pairing.
package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// KeyPair is an X25519 Curve25519 keypair. Public is always X25519(Private, basepoint).
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateKeyPair creates a fresh X25519 keypair using a CSPRNG.
func GenerateKeyPair() (KeyPair, error) {
	var kp KeyPair
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return KeyPair{}, err
	}
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

// sha256Sum hashes data with SHA-256.
func sha256Sum(data ...[]byte) [32]byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hkdfExpand runs the Noise-flavored HKDF: PRK = HMAC-SHA256(salt, ikm),
// then n chained 32-byte outputs T_i = HMAC-SHA256(PRK, T_{i-1} || info || i).
// n must be 1, 2, or 3, matching every call site in the symmetric state.
func hkdfExpand(salt, ikm, info []byte, n int) [][]byte {
	if n < 1 || n > 3 {
		panic("crypto: hkdfExpand supports only 1-3 outputs")
	}
	prk := hmacSum(salt, ikm)
	out := make([][]byte, n)
	var prev []byte
	for i := 1; i <= n; i++ {
		mac := hmac.New(sha256.New, prk)
		mac.Write(prev)
		mac.Write(info)
		mac.Write([]byte{byte(i)})
		sum := mac.Sum(nil)
		out[i-1] = sum
		prev = sum
	}
	return out
}

func hmacSum(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// aeadEncrypt performs ChaCha20-Poly1305 (IETF, 12-byte nonce) sealing.
func aeadEncrypt(key, nonce12, ad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce12, plaintext, ad), nil
}

// aeadDecrypt performs ChaCha20-Poly1305 (IETF, 12-byte nonce) opening.
func aeadDecrypt(key, nonce12, ad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce12, ciphertext, ad)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return pt, nil
}

// dh performs X25519. Per the Noise specification, a DH failure must not
// panic; it contributes an all-zero result to the chain instead, which
// causes the handshake to fail at a later authentication check rather than
// here.
func dh(priv, pub [32]byte) [32]byte {
	out, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return [32]byte{}
	}
	var result [32]byte
	copy(result[:], out)
	return result
}

// Commit computes the public-key commitment SHA-256(pubkey || r) used by the
// WakuPairing pattern to bind a party to a static key revealed later.
func Commit(pubkey [32]byte, r [32]byte) [32]byte {
	return sha256Sum(pubkey[:], r[:])
}

// RandomBytes32 returns 32 bytes of CSPRNG output, used for commitment
// randomness (r, s). MUST NOT be reused across sessions. The QR message
// nametag is not drawn from it; it is derived from the serialized QR.
func RandomBytes32() ([32]byte, error) {
	var b [32]byte
	_, err := rand.Read(b[:])
	return b, err
}
