package nav

import (
	"errors"
)

// ErrOutOfRange is returned by GoTo for indices outside the setlist. An
// out-of-range jump is a caller bug, not a recoverable UI state, so it is
// rejected rather than clamped.
var ErrOutOfRange = errors.New("song index out of range")

// Navigator holds the current position within a song list. Transitions are
// synchronous and deterministic; the fetch and preload work they trigger is
// wired up by the session, not here. An empty list is a terminal state with
// every operation disabled.
type Navigator struct {
	length  int
	current int
}

// New creates a navigator over length songs starting at initial. An
// out-of-range initial index clamps to 0.
func New(length, initial int) *Navigator {
	if length < 0 {
		length = 0
	}
	if initial < 0 || initial >= length {
		initial = 0
	}
	return &Navigator{length: length, current: initial}
}

func (n *Navigator) Len() int {
	return n.length
}

func (n *Navigator) Empty() bool {
	return n.length == 0
}

// Current returns the 0-based position, or -1 when the list is empty.
func (n *Navigator) Current() int {
	if n.length == 0 {
		return -1
	}
	return n.current
}

func (n *Navigator) CanGoNext() bool {
	return n.length > 0 && n.current < n.length-1
}

func (n *Navigator) CanGoPrevious() bool {
	return n.length > 0 && n.current > 0
}

// Next advances one song and reports whether the position changed. At the
// end of the list it is a no-op.
func (n *Navigator) Next() bool {
	if !n.CanGoNext() {
		return false
	}
	n.current++
	return true
}

// Previous moves one song back and reports whether the position changed. At
// the start of the list it is a no-op.
func (n *Navigator) Previous() bool {
	if !n.CanGoPrevious() {
		return false
	}
	n.current--
	return true
}

// GoTo jumps to index, rejecting out-of-range values with ErrOutOfRange.
func (n *Navigator) GoTo(index int) error {
	if index < 0 || index >= n.length {
		return ErrOutOfRange
	}
	n.current = index
	return nil
}
