package crypto

// SymmetricState tracks the chaining key and handshake transcript hash
// alongside an embedded CipherState. It is mutated in place across every handshake step;
// the HandshakeState that owns it never aliases it elsewhere.
type SymmetricState struct {
	ck [32]byte
	h  [32]byte
	cs CipherState
}

// InitializeSymmetric sets up ck/h from the protocol name: if the name
// fits in 32 bytes it is zero-padded, otherwise it is hashed.
func InitializeSymmetric(protocolName string) SymmetricState {
	var ss SymmetricState
	name := []byte(protocolName)
	if len(name) <= 32 {
		copy(ss.h[:], name)
	} else {
		ss.h = sha256Sum(name)
	}
	ss.ck = ss.h
	ss.cs = NewCipherState(nil)
	return ss
}

// MixHash folds data into the transcript hash: h <- SHA-256(h || data).
func (ss *SymmetricState) MixHash(data []byte) {
	ss.h = sha256Sum(ss.h[:], data)
}

// MixKey derives a new chaining key and cipher key from ikm:
// [ck', tempK] = hkdf(ck, ikm, 2); ck <- ck'; cs <- CipherState(tempK, 0).
func (ss *SymmetricState) MixKey(ikm []byte) {
	out := hkdfExpand(ss.ck[:], ikm, nil, 2)
	copy(ss.ck[:], out[0])
	ss.cs = NewCipherState(out[1])
}

// MixKeyAndHash derives three outputs: ck <- t0, mixHash(t1), cs <- CipherState(t2, 0).
func (ss *SymmetricState) MixKeyAndHash(ikm []byte) {
	out := hkdfExpand(ss.ck[:], ikm, nil, 3)
	copy(ss.ck[:], out[0])
	ss.MixHash(out[1])
	ss.cs = NewCipherState(out[2])
}

// EncryptAndHash encrypts under ad = h || extraAd and mixes the ciphertext
// (not the plaintext) into the hash.
func (ss *SymmetricState) EncryptAndHash(plaintext, extraAd []byte) ([]byte, error) {
	ad := append(append([]byte{}, ss.h[:]...), extraAd...)
	ct, err := ss.cs.EncryptWithAd(ad, plaintext)
	if err != nil {
		return nil, err
	}
	ss.MixHash(ct)
	return ct, nil
}

// DecryptAndHash mirrors EncryptAndHash on the reading side.
func (ss *SymmetricState) DecryptAndHash(ciphertext, extraAd []byte) ([]byte, error) {
	ad := append(append([]byte{}, ss.h[:]...), extraAd...)
	pt, err := ss.cs.DecryptWithAd(ad, ciphertext)
	if err != nil {
		return nil, err
	}
	ss.MixHash(ciphertext)
	return pt, nil
}

// Split derives the two final transport CipherStates from the chaining key.
func (ss *SymmetricState) Split() (CipherState, CipherState) {
	out := hkdfExpand(ss.ck[:], nil, nil, 2)
	return NewCipherState(out[0]), NewCipherState(out[1])
}

// ToMessageNametag derives a per-step nametag snapshot, truncated to 16
// bytes, used before the handshake has finalized (e.g. the WakuPairing
// pattern's messages 2 and 3).
func (ss *SymmetricState) ToMessageNametag() [16]byte {
	out := hkdfExpand(ss.ck[:], ss.h[:], nil, 1)
	var tag [16]byte
	copy(tag[:], out[0][:16])
	return tag
}

// ChainingKey exposes ck, used by finalizeHandshake to derive nametag secrets.
func (ss *SymmetricState) ChainingKey() [32]byte {
	return ss.ck
}

// HandshakeHash exposes h, used for channel binding and authcode derivation.
func (ss *SymmetricState) HandshakeHash() [32]byte {
	return ss.h
}

// HasKey reports whether the embedded cipher state currently holds a key.
func (ss *SymmetricState) HasKey() bool {
	return ss.cs.HasKey()
}
