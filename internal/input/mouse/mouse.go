package mouse

import (
	"strings"
	"time"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonBack is the back navigation button (mouse button 4).
	ButtonBack
	// ButtonForward is the forward navigation button (mouse button 5).
	ButtonForward
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonBack:
		return "back"
	case ButtonForward:
		return "forward"
	default:
		return "none"
	}
}

// ParseButton converts a button name back into a Button.
// Matching is case-insensitive; unknown names yield ErrUnknownButton.
func ParseButton(name string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return ButtonLeft, nil
	case "middle":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	case "back":
		return ButtonBack, nil
	case "forward":
		return ButtonForward, nil
	}
	return ButtonNone, &WatcherError{Field: "button", Value: name, Err: ErrUnknownButton}
}

// Action is the kind of raw button transition.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	default:
		return "none"
	}
}

// ParseAction converts "press" or "release" into an Action.
func ParseAction(name string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "press", "pressed":
		return ActionPress, nil
	case "release", "released":
		return ActionRelease, nil
	}
	return ActionNone, &WatcherError{Field: "action", Value: name, Err: ErrUnknownAction}
}

// RawEvent is a single button transition reported by the input backend.
// It carries no timestamp of its own: the cycle's time applies to every
// event in the batch.
type RawEvent struct {
	Button Button
	Action Action
}

// Press returns a press transition for b.
func Press(b Button) RawEvent { return RawEvent{Button: b, Action: ActionPress} }

// Release returns a release transition for b.
func Release(b Button) RawEvent { return RawEvent{Button: b, Action: ActionRelease} }

// ClickEvent is emitted when a release follows a press within the click window.
type ClickEvent struct {
	Button Button
}

// DoubleClickEvent is emitted when two clicks of one button fall within the
// double-click window.
type DoubleClickEvent struct {
	Button Button
}

// Result holds everything one cycle produced, in emission order.
type Result struct {
	// Now is the cycle time the result was computed at.
	Now time.Duration

	Clicks       []ClickEvent
	DoubleClicks []DoubleClickEvent
}

// Empty reports whether the cycle produced no gestures.
func (r Result) Empty() bool {
	return len(r.Clicks) == 0 && len(r.DoubleClicks) == 0
}
