package editor

import "fmt"

// State is the interaction state of the editor.
type State int

const (
	Idle State = iota
	DraggingView
	SelectingByRect
	MovingKeySelection
	MovingTimeIndicator
	TrimLeft
	TrimRight
	RepositionClip
	RepositionGroup
)

var stateNames = []string{
	"idle", "dragging-view", "selecting-by-rect", "moving-key-selection",
	"moving-time-indicator", "trim-left", "trim-right", "reposition-clip", "reposition-group",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Button is the pointer button involved in an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// PointerEvent is a pointer event in screen coordinates. Modifier is the
// extend-selection modifier.
type PointerEvent struct {
	X, Y     float64
	Button   Button
	Modifier bool
}

// Cursor is the pointer shape the host should show.
type Cursor int

const (
	CursorArrow Cursor = iota
	CursorCross
	CursorOpenHand
	CursorSplitH
)

func (c Cursor) String() string {
	switch c {
	case CursorCross:
		return "cross"
	case CursorOpenHand:
		return "open-hand"
	case CursorSplitH:
		return "split-h"
	}
	return "arrow"
}

func cursorFor(s State) Cursor {
	switch s {
	case MovingKeySelection, RepositionClip, RepositionGroup:
		return CursorOpenHand
	case TrimLeft, TrimRight, MovingTimeIndicator:
		return CursorSplitH
	}
	return CursorArrow
}

// Host is the view embedding the editor.
type Host interface {
	// RequestRedraw asks for a repaint; hosts coalesce repeated requests.
	RequestRedraw()
	// CurrentTime is the playback time shown by the time indicator.
	CurrentTime() float64
	// Seek moves the playback time.
	Seek(t float64)
	// ViewRangeChanged reports the new visible time range after a pan or
	// zoom, for companion views to follow.
	ViewRangeChanged(left, right float64)
}

type nopHost struct{ t float64 }

func (*nopHost) RequestRedraw() {}
func (h *nopHost) CurrentTime() float64 { return h.t }
func (h *nopHost) Seek(t float64) { h.t = t }
func (*nopHost) ViewRangeChanged(_, _ float64) {}
