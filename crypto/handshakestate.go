package crypto

import "errors"

// HandshakeConfig supplies everything a HandshakeState needs at
// construction: the pattern to run, which side this party plays, its own
// long-term/ephemeral keys where the pattern requires them, and any keys
// known in advance through a pre-message (e.g. the responder's ephemeral,
// learned by the initiator via the QR code in WakuPairing).
type HandshakeConfig struct {
	Pattern            HandshakePattern
	Initiator          bool
	StaticKeyPair      *KeyPair
	PresharedKey       []byte
	LocalPreEphemeral  *KeyPair
	RemotePreStatic    *[32]byte
	RemotePreEphemeral *[32]byte
}

// HandshakeState interprets a HandshakePattern's (pre)message token streams,
// driving DH and key derivation through an owned SymmetricState. It is
// consumed by Split/finalization and must not be reused afterward.
type HandshakeState struct {
	pattern   HandshakePattern
	initiator bool
	s         *KeyPair
	e         *KeyPair
	rs        *[32]byte
	re        *[32]byte
	psk       []byte
	ss        SymmetricState
	msgIdx    int
	poisoned  bool
}

// NewHandshakeState builds and runs pre-message processing for a handshake.
func NewHandshakeState(cfg HandshakeConfig) (*HandshakeState, error) {
	hs := &HandshakeState{
		pattern:   cfg.Pattern,
		initiator: cfg.Initiator,
		s:         cfg.StaticKeyPair,
		psk:       cfg.PresharedKey,
	}
	if cfg.LocalPreEphemeral != nil {
		e := *cfg.LocalPreEphemeral
		hs.e = &e
	}
	if cfg.RemotePreStatic != nil {
		rs := *cfg.RemotePreStatic
		hs.rs = &rs
	}
	if cfg.RemotePreEphemeral != nil {
		re := *cfg.RemotePreEphemeral
		hs.re = &re
	}
	hs.ss = InitializeSymmetric(ProtocolName(cfg.Pattern.Name))
	if err := hs.processPreMessages(); err != nil {
		return nil, err
	}
	return hs, nil
}

func (hs *HandshakeState) processPreMessages() error {
	for _, pm := range hs.pattern.PreMessages {
		localOwns := (pm.Dir == DirInitToResp) == hs.initiator
		for _, tok := range pm.Tokens {
			var pub *[32]byte
			switch tok {
			case TokenE:
				if localOwns {
					if hs.e == nil {
						return ErrInvalidPattern
					}
					pub = &hs.e.Public
				} else {
					if hs.re == nil {
						return ErrInvalidPattern
					}
					pub = hs.re
				}
			case TokenS:
				if localOwns {
					if hs.s == nil {
						return ErrInvalidPattern
					}
					pub = &hs.s.Public
				} else {
					if hs.rs == nil {
						return ErrInvalidPattern
					}
					pub = hs.rs
				}
			default:
				return ErrInvalidPattern
			}
			hs.ss.MixHash(pub[:])
			if hs.pattern.IsPSK() {
				hs.ss.MixKey(pub[:])
			}
		}
	}
	return nil
}

// IsComplete reports whether every message pattern has been processed.
func (hs *HandshakeState) IsComplete() bool {
	return hs.msgIdx >= len(hs.pattern.Messages)
}

// MessageIndex returns the current step.
func (hs *HandshakeState) MessageIndex() int {
	return hs.msgIdx
}

// IsWriterAt reports whether this party writes the message at the current index.
func (hs *HandshakeState) IsWriterAt() bool {
	if hs.IsComplete() {
		return false
	}
	msg := hs.pattern.Messages[hs.msgIdx]
	return (msg.Dir == DirInitToResp) == hs.initiator
}

// Advance moves to the next message pattern; called by the driver once both
// the token list and the transport payload for the current step are done.
func (hs *HandshakeState) Advance() {
	hs.msgIdx++
}

// ChainingKey exposes ck for nametag-secret derivation at finalization.
func (hs *HandshakeState) ChainingKey() [32]byte {
	return hs.ss.ChainingKey()
}

// HandshakeHash exposes h for channel binding and authcode derivation.
func (hs *HandshakeState) HandshakeHash() [32]byte {
	return hs.ss.HandshakeHash()
}

// RemoteStatic returns the peer's static public key, if learned.
func (hs *HandshakeState) RemoteStatic() (*[32]byte, bool) {
	if hs.rs == nil {
		return nil, false
	}
	return hs.rs, true
}

// EncryptAndHash/DecryptAndHash expose the symmetric state's payload
// encryption directly, used by the driver to process the already-padded
// transport message after the current step's tokens.
func (hs *HandshakeState) EncryptAndHash(payload, extraAd []byte) ([]byte, error) {
	return hs.ss.EncryptAndHash(payload, extraAd)
}

func (hs *HandshakeState) DecryptAndHash(ciphertext, extraAd []byte) ([]byte, error) {
	return hs.ss.DecryptAndHash(ciphertext, extraAd)
}

// MessageNametag snapshots the current chaining key/hash into a 16-byte
// nametag, used for pre-finalization steps that need a deterministic tag
// both sides can compute.
func (hs *HandshakeState) MessageNametag() [16]byte {
	return hs.ss.ToMessageNametag()
}

// Split yields the two transport CipherStates once the pattern is exhausted.
// The HandshakeState must not be used after this call.
func (hs *HandshakeState) Split() (CipherState, CipherState, error) {
	if !hs.IsComplete() {
		return CipherState{}, CipherState{}, errors.New("crypto: split requested before the handshake is complete")
	}
	cs1, cs2 := hs.ss.Split()
	return cs1, cs2, nil
}

// WriteTokens runs the current message pattern's token list on the writing
// side, producing the NoisePublicKey list to place on the wire.
func (hs *HandshakeState) WriteTokens() ([]NoisePublicKey, error) {
	if hs.poisoned {
		return nil, ErrHandshakePoisoned
	}
	if hs.IsComplete() {
		return nil, nil
	}
	msg := hs.pattern.Messages[hs.msgIdx]
	var keys []NoisePublicKey
	for _, tok := range msg.Tokens {
		switch tok {
		case TokenE:
			kp, err := GenerateKeyPair()
			if err != nil {
				hs.poisoned = true
				return nil, err
			}
			hs.e = &kp
			hs.ss.MixHash(hs.e.Public[:])
			keys = append(keys, PlainPublicKey(hs.e.Public))
			if hs.pattern.IsPSK() {
				hs.ss.MixKey(hs.e.Public[:])
			}
		case TokenS:
			if hs.s == nil {
				hs.poisoned = true
				return nil, ErrInvalidKey
			}
			enc, err := hs.ss.EncryptAndHash(hs.s.Public[:], nil)
			if err != nil {
				hs.poisoned = true
				return nil, err
			}
			key := NoisePublicKey{Bytes: enc}
			if len(enc) > 32 {
				key.Flag = 1
			}
			keys = append(keys, key)
		case TokenEE, TokenES, TokenSE, TokenSS:
			out, err := hs.dhToken(tok)
			if err != nil {
				hs.poisoned = true
				return nil, err
			}
			hs.ss.MixKey(out[:])
		case TokenPSK:
			hs.ss.MixKeyAndHash(hs.psk)
		}
	}
	return keys, nil
}

// ReadTokens runs the current message pattern's token list on the reading
// side, consuming the peer's NoisePublicKey list head-to-tail.
func (hs *HandshakeState) ReadTokens(keys []NoisePublicKey) error {
	if hs.poisoned {
		return ErrHandshakePoisoned
	}
	if hs.IsComplete() {
		return nil
	}
	msg := hs.pattern.Messages[hs.msgIdx]
	idx := 0
	next := func() (NoisePublicKey, error) {
		if idx >= len(keys) {
			return NoisePublicKey{}, ErrInvalidKey
		}
		k := keys[idx]
		idx++
		return k, nil
	}
	for _, tok := range msg.Tokens {
		switch tok {
		case TokenE, TokenS:
			k, err := next()
			if err != nil {
				hs.poisoned = true
				return err
			}
			if tok == TokenS && (k.Flag == 1) != hs.ss.HasKey() {
				hs.poisoned = true
				return ErrInvalidKey
			}
			pt, err := hs.ss.DecryptAndHash(k.Bytes, nil)
			if err != nil {
				hs.poisoned = true
				return err
			}
			if len(pt) != 32 {
				hs.poisoned = true
				return ErrInvalidKey
			}
			var pub [32]byte
			copy(pub[:], pt)
			if tok == TokenE {
				hs.re = &pub
				if hs.pattern.IsPSK() {
					hs.ss.MixKey(pub[:])
				}
			} else {
				hs.rs = &pub
			}
		case TokenEE, TokenES, TokenSE, TokenSS:
			out, err := hs.dhToken(tok)
			if err != nil {
				hs.poisoned = true
				return err
			}
			hs.ss.MixKey(out[:])
		case TokenPSK:
			hs.ss.MixKeyAndHash(hs.psk)
		}
	}
	return nil
}

func (hs *HandshakeState) dhToken(tok Token) ([32]byte, error) {
	switch tok {
	case TokenEE:
		if hs.e == nil || hs.re == nil {
			return [32]byte{}, ErrInvalidKey
		}
		return dh(hs.e.Private, *hs.re), nil
	case TokenES:
		if hs.initiator {
			if hs.e == nil || hs.rs == nil {
				return [32]byte{}, ErrInvalidKey
			}
			return dh(hs.e.Private, *hs.rs), nil
		}
		if hs.s == nil || hs.re == nil {
			return [32]byte{}, ErrInvalidKey
		}
		return dh(hs.s.Private, *hs.re), nil
	case TokenSE:
		if hs.initiator {
			if hs.s == nil || hs.re == nil {
				return [32]byte{}, ErrInvalidKey
			}
			return dh(hs.s.Private, *hs.re), nil
		}
		if hs.e == nil || hs.rs == nil {
			return [32]byte{}, ErrInvalidKey
		}
		return dh(hs.e.Private, *hs.rs), nil
	case TokenSS:
		if hs.s == nil || hs.rs == nil {
			return [32]byte{}, ErrInvalidKey
		}
		return dh(hs.s.Private, *hs.rs), nil
	default:
		return [32]byte{}, ErrInvalidPattern
	}
}
