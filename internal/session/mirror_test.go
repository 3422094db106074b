package session

import (
	"math/rand"
	"testing"
)

func TestPresentChoicesTwoDigit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for round := 0; round < 50; round++ {
		m := PresentChoices("02", rng)
		if len(m.Options) != 3 {
			t.Fatalf("Expected 3 options, got %v", m.Options)
		}

		correct := 0
		seen := map[string]bool{}
		for _, opt := range m.Options {
			if len(opt) != 2 {
				t.Fatalf("Expected 2-character options, got %q in %v", opt, m.Options)
			}
			if seen[opt] {
				t.Fatalf("Duplicate option %q in %v", opt, m.Options)
			}
			seen[opt] = true
			if m.Judge(opt) {
				correct++
				if opt != "02" {
					t.Fatalf("Judge accepted decoy %q", opt)
				}
			}
		}
		if correct != 1 {
			t.Fatalf("Expected exactly one winning option, got %d in %v", correct, m.Options)
		}
	}
}

func TestPresentChoicesOneDigit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	m := PresentChoices("7", rng)
	for _, opt := range m.Options {
		if len(opt) != 1 {
			t.Errorf("Expected 1-character options, got %q", opt)
		}
	}
	if !m.Judge("7") {
		t.Error("Judge rejected the correct value")
	}
	if m.Judge("x") {
		t.Error("Judge accepted a value that is not an option")
	}
}

// The winning position varies across generations; a fixed slot would let a
// player learn it.
func TestPresentChoicesShufflesPosition(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	positions := map[int]bool{}
	for round := 0; round < 100; round++ {
		m := PresentChoices("42", rng)
		for i, opt := range m.Options {
			if m.Judge(opt) {
				positions[i] = true
			}
		}
	}
	if len(positions) < 2 {
		t.Errorf("Winning option stuck at the same position: %v", positions)
	}
}
