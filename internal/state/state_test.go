package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPairingTimersFiresOnTimeout(t *testing.T) {
	timers := NewPairingTimers("sess-1", "initiator", 20*time.Millisecond)
	fired := make(chan struct{}, 1)
	timers.Start(func() { fired <- struct{}{} })
	defer timers.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never fired")
	}
}

func TestPairingTimersStopPreventsFire(t *testing.T) {
	timers := NewPairingTimers("sess-2", "responder", 20*time.Millisecond)
	fired := make(chan struct{}, 1)
	timers.Start(func() { fired <- struct{}{} })
	timers.Stop()

	select {
	case <-fired:
		t.Fatal("callback fired after Stop")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestPairingTimersSuppressesFireAfterTerminalState(t *testing.T) {
	timers := NewPairingTimers("sess-3", "responder", 10*time.Millisecond)
	fired := make(chan struct{}, 1)
	timers.Start(func() { fired <- struct{}{} })
	timers.SetState(StateEstablished)

	select {
	case <-fired:
		t.Fatal("callback fired after reaching a terminal state")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestPairingTimersSnapshot(t *testing.T) {
	timers := NewPairingTimers("sess-4", "initiator", time.Second)
	timers.SetState(StateMessage1Sent)
	snap := timers.Snapshot()
	require.Equal(t, "sess-4", snap.ID)
	require.Equal(t, "initiator", snap.Role)
	require.Equal(t, StateMessage1Sent, snap.State)
}

func TestPairingStateStringCoversAllValues(t *testing.T) {
	states := []PairingState{
		StatePairingStart, StateQRExchanged, StateMessage1Sent,
		StateMessage2Received, StateMessage3Sent, StateAuthCodePending,
		StateEstablished, StateAborted,
	}
	for _, s := range states {
		require.NotEqual(t, "Unknown", s.String())
	}
	require.Equal(t, "Unknown", PairingState(99).String())
}

func TestAttemptTrackerRecordsAndBounds(t *testing.T) {
	tracker := NewAttemptTracker(2)
	tracker.RecordSuccess("initiator", "/app/1/0/proto")
	tracker.RecordFailure("responder", errors.New("boom"))
	tracker.RecordSuccess("initiator", "/app/1/0/proto")

	history := tracker.GetHistory()
	require.Len(t, history, 2)
	require.False(t, history[0].Success)
	require.True(t, history[1].Success)

	total, successful, failed := tracker.Stats()
	require.Equal(t, 2, total)
	require.Equal(t, 1, successful)
	require.Equal(t, 1, failed)
}

func TestAttemptTrackerDefaultsMaxSize(t *testing.T) {
	tracker := NewAttemptTracker(0)
	for i := 0; i < 15; i++ {
		tracker.RecordSuccess("initiator", "topic")
	}
	require.Len(t, tracker.GetHistory(), 10)
}
