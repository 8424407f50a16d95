package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HandshakeResult is produced by Finalize: ownership of the two CipherStates
// transfers here and the originating Handshake/HandshakeState must not be
// used afterward.
type HandshakeResult struct {
	CipherStateOutbound CipherState
	CipherStateInbound  CipherState
	NametagsOutbound    *MessageNametagBuffer
	NametagsInbound     *MessageNametagBuffer
	RemoteStatic        [32]byte
	HasRemoteStatic     bool
	HandshakeHash       [32]byte
}

// StepInput is the argument to Handshake.Step: at most one of
// TransportMessage (writing) or ReadPayload (reading) is meaningful,
// determined automatically by the pattern, the party's role, and the
// current message index.
type StepInput struct {
	TransportMessage []byte
	ReadPayload      *PayloadV2
	MessageNametag   [16]byte
}

// StepOutput carries whichever side of StepInput applied.
type StepOutput struct {
	Payload       *PayloadV2
	PlaintextRead []byte
}

// Handshake is the step-by-step orchestration driver layered on
// HandshakeState: it owns protocol id lookup, transport-message padding,
// and authcode/finalization bookkeeping.
type Handshake struct {
	hs        *HandshakeState
	pattern   HandshakePattern
	initiator bool
}

// NewHandshake constructs the driver and its underlying HandshakeState.
func NewHandshake(cfg HandshakeConfig) (*Handshake, error) {
	hs, err := NewHandshakeState(cfg)
	if err != nil {
		return nil, err
	}
	return &Handshake{hs: hs, pattern: cfg.Pattern, initiator: cfg.Initiator}, nil
}

// MessageIndex exposes the current step for callers coordinating rounds.
func (h *Handshake) MessageIndex() int {
	return h.hs.MessageIndex()
}

// IsComplete reports whether every message pattern has been stepped.
func (h *Handshake) IsComplete() bool {
	return h.hs.IsComplete()
}

// Step runs one handshake message, either producing a PayloadV2 to send or
// consuming one that was received.
func (h *Handshake) Step(in StepInput) (*StepOutput, error) {
	if h.hs.IsComplete() {
		return &StepOutput{}, nil
	}

	protocolID, ok := ProtocolID(h.pattern.Name)
	if !ok {
		return nil, ErrUnknownProtocolID
	}

	if h.hs.IsWriterAt() {
		keys, err := h.hs.WriteTokens()
		if err != nil {
			return nil, err
		}
		padded := pkcs7Pad(in.TransportMessage)
		ct, err := h.hs.EncryptAndHash(padded, in.MessageNametag[:])
		if err != nil {
			return nil, err
		}
		payload := PayloadV2{
			MessageNametag:   in.MessageNametag,
			ProtocolID:       protocolID,
			HandshakeKeys:    keys,
			TransportMessage: ct,
		}
		h.hs.Advance()
		return &StepOutput{Payload: &payload}, nil
	}

	if in.ReadPayload == nil {
		return nil, errors.New("crypto: reading step requires a ReadPayload")
	}
	if in.ReadPayload.MessageNametag != in.MessageNametag {
		return nil, &MessageNametagError{Expected: in.MessageNametag, Actual: in.ReadPayload.MessageNametag}
	}
	if err := h.hs.ReadTokens(in.ReadPayload.HandshakeKeys); err != nil {
		return nil, err
	}
	padded, err := h.hs.DecryptAndHash(in.ReadPayload.TransportMessage, in.MessageNametag[:])
	if err != nil {
		return nil, err
	}
	plain, err := pkcs7Unpad(padded)
	if err != nil {
		return nil, err
	}
	h.hs.Advance()
	return &StepOutput{PlaintextRead: plain}, nil
}

// MessageNametagSnapshot exposes the current symmetric-state-derived
// nametag, used by the pairing driver to compute the nametag for every
// message after the first: subsequent messages use a toMessageNametag
// snapshot of the running symmetric state rather than a fixed value.
func (h *Handshake) MessageNametagSnapshot() [16]byte {
	return h.hs.MessageNametag()
}

// RemoteStatic returns the peer's static public key once the pattern has
// revealed it, used by the pairing driver to check commitment openings
// before the handshake completes.
func (h *Handshake) RemoteStatic() ([32]byte, bool) {
	rs, ok := h.hs.RemoteStatic()
	if !ok {
		return [32]byte{}, false
	}
	return *rs, true
}

// Authcode returns the first 5 characters of the 20-digit zero-padded decimal
// form of the big-endian uint64 read from the first 8 bytes of the handshake
// hash. It is only meaningful once
// both sides have processed the first two handshake messages; the caller is
// responsible for only displaying it at that point.
func (h *Handshake) Authcode() (string, error) {
	if h.hs.MessageIndex() < 2 {
		return "", errors.New("crypto: authcode requested before message 2")
	}
	return Authcode(h.hs.HandshakeHash()), nil
}

// Authcode is the free function backing Handshake.Authcode, exposed so the
// pairing driver can recompute it independently from a stored hash.
func Authcode(h [32]byte) string {
	val := binary.BigEndian.Uint64(h[:8])
	return fmt.Sprintf("%020d", val)[:5]
}

const nametagSecretsLabel = "nametag-secrets"

// Finalize splits the transport CipherStates and derives the two
// post-handshake nametag buffers. The Handshake must not be used afterward.
func (h *Handshake) Finalize() (*HandshakeResult, error) {
	cs1, cs2, err := h.hs.Split()
	if err != nil {
		return nil, err
	}
	ck := h.hs.ChainingKey()
	secrets := hkdfExpand(ck[:], []byte(nametagSecretsLabel), nil, 2)
	var nms1, nms2 [32]byte
	copy(nms1[:], secrets[0])
	copy(nms2[:], secrets[1])

	result := &HandshakeResult{HandshakeHash: h.hs.HandshakeHash()}
	if h.initiator {
		result.CipherStateOutbound = cs1
		result.CipherStateInbound = cs2
		result.NametagsOutbound = NewMessageNametagBuffer(&nms2)
		result.NametagsInbound = NewMessageNametagBuffer(&nms1)
	} else {
		result.CipherStateOutbound = cs2
		result.CipherStateInbound = cs1
		result.NametagsOutbound = NewMessageNametagBuffer(&nms1)
		result.NametagsInbound = NewMessageNametagBuffer(&nms2)
	}
	if rs, ok := h.hs.RemoteStatic(); ok {
		result.RemoteStatic = *rs
		result.HasRemoteStatic = true
	}
	return result, nil
}
