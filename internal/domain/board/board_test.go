package board

import (
	"math/rand"
	"testing"
)

func isPermutation(tiles []int) bool {
	seen := make([]bool, len(tiles))
	for _, id := range tiles {
		if id < 0 || id >= len(tiles) || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

func TestNewIsIdentity(t *testing.T) {
	b := New(12, nil)
	for p := 0; p < 12; p++ {
		if b.TileAt(p) != p {
			t.Fatalf("Expected identity at position %d, got %d", p, b.TileAt(p))
		}
	}
	if b.Progress() != 100 {
		t.Errorf("Expected identity progress 100, got %d", b.Progress())
	}
}

func TestSwapPreservesPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := New(12, rng)
	b.Shuffle()

	for i := 0; i < 500; i++ {
		b.Swap(rng.Intn(12), rng.Intn(12))
		if !isPermutation(b.Tiles()) {
			t.Fatalf("Permutation invariant broken after %d swaps: %v", i+1, b.Tiles())
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := New(20, rng)
	for i := 0; i < 50; i++ {
		b.Shuffle()
		if !isPermutation(b.Tiles()) {
			t.Fatalf("Shuffle produced a non-permutation: %v", b.Tiles())
		}
	}
}

func TestSwapSelfIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := New(12, rng)
	b.Shuffle()

	before := b.Tiles()
	progressBefore := b.Progress()
	b.Swap(5, 5)

	after := b.Tiles()
	for p := range before {
		if before[p] != after[p] {
			t.Fatalf("Self-swap changed position %d: %d -> %d", p, before[p], after[p])
		}
	}
	if b.Progress() != progressBefore {
		t.Errorf("Self-swap changed progress: %d -> %d", progressBefore, b.Progress())
	}
}

func TestProgressCounts(t *testing.T) {
	b := New(12, nil)

	// Identity: everything correct.
	if b.Progress() != 100 {
		t.Errorf("Expected 100, got %d", b.Progress())
	}
	if !b.Solved() {
		t.Errorf("Expected solved board")
	}

	// One transposition: 10 of 12 correct -> round(83.33) = 83.
	b.Swap(10, 11)
	if b.Progress() != 83 {
		t.Errorf("Expected 83, got %d", b.Progress())
	}
	if b.Solved() {
		t.Errorf("Board with a transposition must not be solved")
	}

	// Full rotation: nothing correct.
	c := New(4, nil)
	c.Swap(0, 1)
	c.Swap(1, 2)
	c.Swap(2, 3)
	if c.Progress() != 0 {
		t.Errorf("Expected 0 for a full cycle, got %d (%v)", c.Progress(), c.Tiles())
	}
}

func TestSwapOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for out-of-range swap")
		}
	}()
	b := New(12, nil)
	b.Swap(0, 12)
}
