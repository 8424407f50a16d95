package pairing

import "errors"

var (
	// ErrInvalidQR is returned when a scanned QR string does not decode to
	// exactly 5 colon-separated base64url fields.
	ErrInvalidQR = errors.New("pairing: malformed QR payload")

	// ErrCommitmentMismatch means a party's static-key commitment did not
	// open to the value it had pre-committed to.
	ErrCommitmentMismatch = errors.New("pairing: static key commitment mismatch")

	// ErrAuthcodeRejected is returned when either side declines the
	// displayed authcode.
	ErrAuthcodeRejected = errors.New("pairing: authcode rejected by user")

	// ErrPairingTimeout is returned when the wall-clock pairing timeout
	// elapses before the exchange completes.
	ErrPairingTimeout = errors.New("pairing: timed out waiting for peer")

	// ErrPairingAborted names an aborted session. RunResponder and
	// RunInitiator do not return it; they return the specific cause instead.
	ErrPairingAborted = errors.New("pairing: session already aborted")
)
