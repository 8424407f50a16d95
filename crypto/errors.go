package crypto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the handshake and cipher layers. Recoverable faults
// (MessageNametagError, ErrNotFound, OutOfOrderError) are told apart from
// fatal ones with errors.Is / errors.As against these.
var (
	ErrAuthenticationFailure = errors.New("crypto: AEAD authentication failure")
	ErrNonceExhausted        = errors.New("crypto: cipher state nonce exhausted")
	ErrInvalidPattern        = errors.New("crypto: invalid handshake pattern")
	ErrInvalidKey            = errors.New("crypto: invalid key")
	ErrInvalidPadding        = errors.New("crypto: invalid PKCS#7 padding")
	ErrHandshakeTooLarge     = errors.New("crypto: serialized handshake keys exceed 255 bytes")
	ErrHandshakeComplete     = errors.New("crypto: handshake already complete")
	ErrHandshakePoisoned     = errors.New("crypto: handshake state poisoned by a prior error")
	ErrUnknownProtocolID     = errors.New("crypto: unknown protocol id for pattern")
)

// ErrNotFound is a MessageNametagBuffer diagnostic: the probed tag is not
// present anywhere in the expected-tag window. Non-fatal at the channel
// layer; the caller may wait for a later message or discard it.
var ErrNotFound = errors.New("crypto: nametag not found in expected window")

// OutOfOrderError is a MessageNametagBuffer diagnostic: the probed tag was
// found, but not at the head of the expected window, meaning Skipped
// messages ahead of it were missed.
type OutOfOrderError struct {
	Skipped int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("crypto: nametag out of order, %d message(s) skipped", e.Skipped)
}

// MessageNametagError is raised when an inbound PayloadV2's nametag does not
// match the receiver's expectation for the current handshake step. It is
// recoverable: the caller may wait for a later inbound message.
type MessageNametagError struct {
	Expected [16]byte
	Actual   [16]byte
}

func (e *MessageNametagError) Error() string {
	return fmt.Sprintf("crypto: message nametag mismatch: expected %x, got %x", e.Expected, e.Actual)
}
