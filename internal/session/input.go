// Package session - input.go
// Interaction state for the two input modes. Tap and drag both funnel into
// the single Board.Swap entry point via the controller; this file owns only
// the transient selection/drag state between input events.
package session

// InputMode selects how the player rearranges tiles.
type InputMode string

const (
	ModeTap  InputMode = "tap"
	ModeDrag InputMode = "drag"
)

const noCell = -1

// interaction holds the transient selection/drag state. It never touches
// the board directly; the controller performs the swap and resets state.
type interaction struct {
	mode        InputMode
	selectedPos int // tap mode: first tapped cell, noCell if none
	dragOrigin  int // drag mode: lifted cell, noCell if no drag active
}

func newInteraction(mode InputMode) *interaction {
	if mode != ModeDrag {
		mode = ModeTap
	}
	return &interaction{mode: mode, selectedPos: noCell, dragOrigin: noCell}
}

// reset clears any pending selection or drag.
func (in *interaction) reset() {
	in.selectedPos = noCell
	in.dragOrigin = noCell
}

// tap processes one tap. It returns (origin, target, true) when the tap
// completes a swap pair; otherwise it only updates the selection.
// Re-tapping the selected cell clears the selection.
func (in *interaction) tap(pos int) (int, int, bool) {
	if in.selectedPos == noCell {
		in.selectedPos = pos
		return 0, 0, false
	}
	if in.selectedPos == pos {
		in.selectedPos = noCell
		return 0, 0, false
	}
	origin := in.selectedPos
	in.selectedPos = noCell
	return origin, pos, true
}

// dragStart lifts a cell. A second press while a drag is open is ignored;
// the drag is an exclusive resource.
func (in *interaction) dragStart(pos int) bool {
	if in.dragOrigin != noCell {
		return false
	}
	in.dragOrigin = pos
	return true
}

// dragEnd releases the drag over a cell and returns the swap pair.
// Releasing over the origin still counts as a (no-op) swap.
func (in *interaction) dragEnd(pos int) (int, int, bool) {
	if in.dragOrigin == noCell {
		return 0, 0, false
	}
	origin := in.dragOrigin
	in.dragOrigin = noCell
	return origin, pos, true
}

// dragCancel abandons an open drag with no board mutation.
func (in *interaction) dragCancel() {
	in.dragOrigin = noCell
}
