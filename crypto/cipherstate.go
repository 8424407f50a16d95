package crypto

// CipherState pairs a symmetric key with a monotonically advancing Nonce and
// performs AEAD encrypt/decrypt with automatic nonce advance. An empty key
// (the all-zero sentinel) makes encryptWithAd/decryptWithAd identity
// functions that never advance the nonce, matching the Noise specification's
// treatment of a handshake stage before any DH has occurred.
type CipherState struct {
	k      [32]byte
	hasKey bool
	n      Nonce
}

// NewCipherState builds a CipherState with the given key (or an empty one if
// key is nil) and nonce 0.
func NewCipherState(key []byte) CipherState {
	cs := CipherState{n: NewNonce()}
	if len(key) == 32 {
		copy(cs.k[:], key)
		cs.hasKey = true
	}
	return cs
}

// HasKey reports whether the key is non-empty.
func (cs *CipherState) HasKey() bool {
	return cs.hasKey
}

// Nonce exposes the current counter, e.g. for tests seeding near the cap.
func (cs *CipherState) Nonce() uint64 {
	return cs.n.Value()
}

// SetNonce overrides the counter directly; used only by tests exercising the
// nonce-exhaustion boundary (S6) and never by production code paths.
func (cs *CipherState) SetNonce(counter uint64) {
	cs.n = Nonce{counter: counter}
}

// EncryptWithAd seals plaintext under ad. With an empty key this is the
// identity function and the nonce is not touched.
func (cs *CipherState) EncryptWithAd(ad, plaintext []byte) ([]byte, error) {
	if !cs.hasKey {
		return plaintext, nil
	}
	if err := cs.n.AssertValid(); err != nil {
		return nil, err
	}
	nb := cs.n.Bytes()
	ct, err := aeadEncrypt(cs.k[:], nb[:], ad, plaintext)
	if err != nil {
		return nil, err
	}
	if err := cs.n.Increment(); err != nil {
		return nil, err
	}
	return ct, nil
}

// DecryptWithAd opens ciphertext under ad. With an empty key this is the
// identity function and the nonce is not touched. A failed AEAD open leaves
// the nonce untouched so a retried/duplicate message does not desynchronize
// the counter.
func (cs *CipherState) DecryptWithAd(ad, ciphertext []byte) ([]byte, error) {
	if !cs.hasKey {
		return ciphertext, nil
	}
	if err := cs.n.AssertValid(); err != nil {
		return nil, err
	}
	nb := cs.n.Bytes()
	pt, err := aeadDecrypt(cs.k[:], nb[:], ad, ciphertext)
	if err != nil {
		return nil, err
	}
	if err := cs.n.Increment(); err != nil {
		return nil, err
	}
	return pt, nil
}
