package mouse

import "time"

// ClickWatcher tracks press timing for one button.
type ClickWatcher struct {
	// Button is the watched button.
	Button Button

	// Window is the longest press-to-release duration that counts as a click.
	Window time.Duration

	// LastPress is the cycle time of the most recent press.
	LastPress time.Duration

	// pressed is set by the first press of the session and never cleared.
	pressed bool
}

// newClickWatcher creates a watcher that has not seen a press yet.
func newClickWatcher(button Button, window time.Duration) *ClickWatcher {
	return &ClickWatcher{
		Button: button,
		Window: window,
	}
}

// press records a press at now, replacing any earlier unreleased press.
func (w *ClickWatcher) press(now time.Duration) {
	w.LastPress = now
	w.pressed = true
}

// release reports whether a release at now completes a click.
// LastPress is read, never written, so a second release within the window
// of the same press completes another click.
func (w *ClickWatcher) release(now time.Duration) bool {
	if !w.pressed {
		return false
	}

	// Clock went backwards: not a click
	elapsed := now - w.LastPress
	if elapsed < 0 {
		return false
	}

	return elapsed <= w.Window
}

// ClickDetector turns raw press/release transitions into click events.
type ClickDetector struct {
	watchers map[Button]*ClickWatcher
}

// newClickDetector creates a detector that owns the given watchers.
func newClickDetector(watchers []*ClickWatcher) *ClickDetector {
	d := &ClickDetector{watchers: make(map[Button]*ClickWatcher, len(watchers))}
	for _, w := range watchers {
		d.watchers[w.Button] = w
	}
	return d
}

// Update processes events in arrival order at cycle time now and returns the
// clicks they complete. Events for unwatched buttons are ignored.
func (d *ClickDetector) Update(now time.Duration, events []RawEvent) []ClickEvent {
	var clicks []ClickEvent

	for _, ev := range events {
		w, ok := d.watchers[ev.Button]
		if !ok {
			continue
		}

		switch ev.Action {
		case ActionPress:
			w.press(now)
		case ActionRelease:
			if w.release(now) {
				clicks = append(clicks, ClickEvent{Button: w.Button})
			}
		}
	}

	return clicks
}

// Watcher returns a copy of the watcher for b.
func (d *ClickDetector) Watcher(b Button) (ClickWatcher, bool) {
	w, ok := d.watchers[b]
	if !ok {
		return ClickWatcher{}, false
	}
	return *w, true
}
