// Package events provides the append-only log of puzzle session events.
// The host's websocket hub polls it to stream state changes, and a
// pluggable persister writes it through to storage as the audit trail.
package events

import (
	"math/rand"
	"sync"
	"time"
)

// EventType defines the category of a session event.
type EventType string

const (
	EventTypeSessionStarted  EventType = "SESSION_STARTED"
	EventTypeGateBlocked     EventType = "GATE_BLOCKED"
	EventTypeSessionFinished EventType = "SESSION_FINISHED"
	EventTypeRewardGranted   EventType = "REWARD_GRANTED"
	EventTypeMirrorPresented EventType = "MIRROR_PRESENTED"
)

// SessionFinishedPayload records how a session ended.
type SessionFinishedPayload struct {
	Outcome     string `json:"outcome"`
	Accuracy    int    `json:"accuracy"`
	TimeUsedSec int    `json:"time_used_sec"`
}

// RewardGrantedPayload records a granted reward fragment.
type RewardGrantedPayload struct {
	Digits    string `json:"digits"`
	ViaMirror bool   `json:"via_mirror"`
	FinalCode string `json:"final_code"`
}

// GameEvent represents an immutable record of a session action.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Day       int         `json:"day"`
	Payload   interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of session events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through to persistent storage off the caller's path.
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByDay returns all events that occurred on a specific event day.
func (el *EventLog) GetByDay(d int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Day == d {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events in append order.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomSuffix()
}

func randomSuffix() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
