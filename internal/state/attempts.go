package state

import (
	"sync"
	"time"
)

// AttemptEvent records the outcome of one pairing attempt, success or
// failure, for operator introspection.
type AttemptEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Topic     string    `json:"topic,omitempty"`
}

// AttemptTracker keeps a bounded, fixed-size ring of timestamped
// pairing attempt outcomes for operator introspection.
type AttemptTracker struct {
	mu      sync.RWMutex
	history []AttemptEvent
	maxSize int
}

// NewAttemptTracker creates a tracker retaining at most maxSize events.
func NewAttemptTracker(maxSize int) *AttemptTracker {
	if maxSize <= 0 {
		maxSize = 10
	}
	return &AttemptTracker{
		history: make([]AttemptEvent, 0, maxSize),
		maxSize: maxSize,
	}
}

// RecordSuccess logs a completed pairing attempt.
func (at *AttemptTracker) RecordSuccess(role, topic string) {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.addEvent(AttemptEvent{Timestamp: time.Now(), Role: role, Success: true, Topic: topic})
}

// RecordFailure logs a failed pairing attempt.
func (at *AttemptTracker) RecordFailure(role string, err error) {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.addEvent(AttemptEvent{Timestamp: time.Now(), Role: role, Success: false, Error: err.Error()})
}

func (at *AttemptTracker) addEvent(event AttemptEvent) {
	at.history = append(at.history, event)
	if len(at.history) > at.maxSize {
		at.history = at.history[1:]
	}
}

// GetHistory returns a copy of the recorded attempts, oldest first.
func (at *AttemptTracker) GetHistory() []AttemptEvent {
	at.mu.RLock()
	defer at.mu.RUnlock()
	result := make([]AttemptEvent, len(at.history))
	copy(result, at.history)
	return result
}

// Stats summarizes the tracked history.
func (at *AttemptTracker) Stats() (total, successful, failed int) {
	at.mu.RLock()
	defer at.mu.RUnlock()
	total = len(at.history)
	for _, event := range at.history {
		if event.Success {
			successful++
		} else {
			failed++
		}
	}
	return
}
