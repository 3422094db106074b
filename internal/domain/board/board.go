// Package board owns the tile permutation of the puzzle grid.
// This package is PURE and must NOT import any infrastructure packages.
//
// ARCHITECTURAL RULE: tilesByPosition is only ever mutated through Swap
// (and Shuffle on reset). Every input path funnels into that single entry
// point; that is the permutation integrity boundary.
package board

import (
	"fmt"
	"math"
	"math/rand"
)

// Board holds the current assignment of tile ids to grid positions.
// Invariant: tilesByPosition is always a permutation of [0..n-1].
type Board struct {
	tilesByPosition []int
	rng             *rand.Rand
}

// New creates a board of n cells in the identity permutation.
// rng may be nil, in which case the shared math/rand source is used.
func New(n int, rng *rand.Rand) *Board {
	if n < 1 {
		panic(fmt.Sprintf("board: invalid size %d", n))
	}
	b := &Board{tilesByPosition: make([]int, n), rng: rng}
	for i := range b.tilesByPosition {
		b.tilesByPosition[i] = i
	}
	return b
}

// Size returns the cell count.
func (b *Board) Size() int {
	return len(b.tilesByPosition)
}

// Shuffle replaces the permutation with a uniformly random one
// (Fisher-Yates over the full array). There is deliberately no re-roll
// guard against landing on or near the identity permutation; a trivially
// solved shuffle is an accepted outcome.
func (b *Board) Shuffle() {
	for i := len(b.tilesByPosition) - 1; i > 0; i-- {
		j := b.intn(i + 1)
		b.tilesByPosition[i], b.tilesByPosition[j] = b.tilesByPosition[j], b.tilesByPosition[i]
	}
}

// Swap exchanges the tiles at positions a and b. Swapping a position with
// itself is a no-op. Out-of-range positions are a caller bug, not a game
// condition; callers must clamp before calling.
func (b *Board) Swap(a, c int) {
	n := len(b.tilesByPosition)
	if a < 0 || a >= n || c < 0 || c >= n {
		panic(fmt.Sprintf("board: swap out of range (%d, %d) on %d cells", a, c, n))
	}
	if a == c {
		return
	}
	b.tilesByPosition[a], b.tilesByPosition[c] = b.tilesByPosition[c], b.tilesByPosition[a]
}

// TileAt returns the tile id currently at position p.
func (b *Board) TileAt(p int) int {
	return b.tilesByPosition[p]
}

// Tiles returns a copy of the current permutation, for snapshots.
func (b *Board) Tiles() []int {
	out := make([]int, len(b.tilesByPosition))
	copy(out, b.tilesByPosition)
	return out
}

// Progress returns the completion percentage: the share of positions
// holding their own tile, rounded to the nearest integer.
func (b *Board) Progress() int {
	correct := 0
	for p, id := range b.tilesByPosition {
		if p == id {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(b.tilesByPosition))))
}

// Solved reports whether every tile sits on its own position.
func (b *Board) Solved() bool {
	return b.Progress() == 100
}

func (b *Board) intn(n int) int {
	if b.rng != nil {
		return b.rng.Intn(n)
	}
	return rand.Intn(n)
}
