// Package session - mirror.go
// Reward mirror selection: a qualifying timeout is resolved by picking one
// of three mirrors, exactly one of which hides the day's reward digits.
package session

import (
	"fmt"
	"math/rand"
)

// MirrorChallenge is the 3-option decoy set shown after a qualifying
// timeout. Options are pre-shuffled; the correct value is kept server-side
// and never included in host snapshots.
type MirrorChallenge struct {
	Options []string
	correct string
}

// PresentChoices generates two decoys of the same digit-length as correct
// (1 digit: 0-9, 2 digits: 00-99 zero-padded), distinct from the correct
// value and from each other, and shuffles all three into random positions.
func PresentChoices(correct string, rng *rand.Rand) *MirrorChallenge {
	decoys := make([]string, 0, 2)
	for len(decoys) < 2 {
		var d string
		if len(correct) == 2 {
			d = fmt.Sprintf("%02d", intn(rng, 100))
		} else {
			d = fmt.Sprintf("%d", intn(rng, 10))
		}
		if d == correct || (len(decoys) == 1 && d == decoys[0]) {
			continue
		}
		decoys = append(decoys, d)
	}

	options := []string{correct, decoys[0], decoys[1]}
	for i := len(options) - 1; i > 0; i-- {
		j := intn(rng, i+1)
		options[i], options[j] = options[j], options[i]
	}
	return &MirrorChallenge{Options: options, correct: correct}
}

// Judge reports whether the selected option carries the reward. Options are
// compared by value, not index, so a host rendering bug cannot mis-grant.
func (m *MirrorChallenge) Judge(selected string) bool {
	return selected == m.correct
}

func intn(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.Intn(n)
	}
	return rand.Intn(n)
}
