// Package state tracks ambient pairing-session bookkeeping: the state
// machine a session moves through and the wall-clock timer that races it
// against the configured pairing timeout.
package state

import (
	"sync"
	"time"
)

// PairingState is the lifecycle of a single pairing attempt.
type PairingState int

const (
	StatePairingStart PairingState = iota
	StateQRExchanged
	StateMessage1Sent
	StateMessage2Received
	StateMessage3Sent
	StateAuthCodePending
	StateEstablished
	StateAborted
)

func (s PairingState) String() string {
	switch s {
	case StatePairingStart:
		return "PairingStart"
	case StateQRExchanged:
		return "QRExchanged"
	case StateMessage1Sent:
		return "Message1Sent"
	case StateMessage2Received:
		return "Message2Received"
	case StateMessage3Sent:
		return "Message3Sent"
	case StateAuthCodePending:
		return "AuthCodePending"
	case StateEstablished:
		return "Established"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// PairingSession is a read-only snapshot exposed to operators (e.g. the
// management HTTP endpoint); it never carries key material.
type PairingSession struct {
	ID        string
	Role      string
	State     PairingState
	StartedAt time.Time
}

// PairingTimers owns the single wall-clock timeout a pairing driver races
// against incoming transport messages and user confirmation, plus the
// session's current state for introspection.
type PairingTimers struct {
	mu sync.Mutex

	id        string
	role      string
	state     PairingState
	startedAt time.Time
	timeout   time.Duration
	timer     *time.Timer

	onTimeout func()
}

// NewPairingTimers creates a timer set for a session. The timeout does not
// start running until Start is called.
func NewPairingTimers(id, role string, timeout time.Duration) *PairingTimers {
	return &PairingTimers{
		id:      id,
		role:    role,
		state:   StatePairingStart,
		timeout: timeout,
	}
}

// Start begins the wall-clock timeout and records the session start time.
func (t *PairingTimers) Start(onTimeout func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Now()
	t.onTimeout = onTimeout
	t.timer = time.AfterFunc(t.timeout, t.fire)
}

func (t *PairingTimers) fire() {
	t.mu.Lock()
	cb := t.onTimeout
	aborted := t.state == StateAborted || t.state == StateEstablished
	t.mu.Unlock()
	if !aborted && cb != nil {
		cb()
	}
}

// Stop cancels the pending timeout, e.g. once the session reaches a terminal state.
func (t *PairingTimers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}

// SetState transitions the session's visible state.
func (t *PairingTimers) SetState(s PairingState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// Snapshot returns a copy of the session's current status.
func (t *PairingTimers) Snapshot() PairingSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return PairingSession{ID: t.id, Role: t.role, State: t.state, StartedAt: t.startedAt}
}
