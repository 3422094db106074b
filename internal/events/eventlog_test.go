package events

import (
	"sync"
	"testing"
	"time"
)

type capturingPersister struct {
	mu     sync.Mutex
	events []GameEvent
	done   chan struct{}
}

func (p *capturingPersister) Append(event GameEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.done <- struct{}{}
	return nil
}

func TestAppendAndReplay(t *testing.T) {
	log := NewEventLog(nil)

	log.Append(GameEvent{ID: "a", Type: EventTypeSessionStarted, Day: 1})
	log.Append(GameEvent{ID: "b", Type: EventTypeSessionFinished, Day: 1})
	log.Append(GameEvent{ID: "c", Type: EventTypeSessionStarted, Day: 2})

	all := log.Replay()
	if len(all) != 3 || all[0].ID != "a" || all[2].ID != "c" {
		t.Fatalf("Expected append order preserved, got %v", all)
	}

	day1 := log.GetByDay(1)
	if len(day1) != 2 {
		t.Errorf("Expected 2 events for day 1, got %d", len(day1))
	}
	if got := log.GetByDay(9); len(got) != 0 {
		t.Errorf("Expected no events for day 9, got %v", got)
	}
}

func TestAppendWritesThroughPersister(t *testing.T) {
	p := &capturingPersister{done: make(chan struct{}, 1)}
	log := NewEventLog(p)

	log.Append(GameEvent{ID: "a", Type: EventTypeRewardGranted, Day: 1})

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("Persister was never invoked")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) != 1 || p.events[0].ID != "a" {
		t.Errorf("Expected the appended event persisted, got %v", p.events)
	}
}

func TestGenerateEventIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := GenerateEventID()
		if seen[id] {
			t.Fatalf("Duplicate event id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}
