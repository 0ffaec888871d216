package mouse

import "time"

// DoubleClickWatcher tracks the pairing anchor for one button.
type DoubleClickWatcher struct {
	// Button is the watched button.
	Button Button

	// Window is the longest interval between two clicks that pairs them.
	Window time.Duration

	// LastClick is the pairing anchor. Zero when no anchor is set.
	LastClick time.Duration

	anchored bool
}

// newDoubleClickWatcher creates a watcher with no anchor.
func newDoubleClickWatcher(button Button, window time.Duration) *DoubleClickWatcher {
	return &DoubleClickWatcher{
		Button: button,
		Window: window,
	}
}

// click records a click at now and reports whether it pairs with the anchor.
// A successful pairing clears the anchor so a third click starts over.
func (w *DoubleClickWatcher) click(now time.Duration) bool {
	if w.anchored {
		elapsed := now - w.LastClick
		if elapsed >= 0 && elapsed <= w.Window {
			w.reset()
			return true
		}
	}

	w.LastClick = now
	w.anchored = true
	return false
}

// reset clears the pairing anchor.
func (w *DoubleClickWatcher) reset() {
	w.LastClick = 0
	w.anchored = false
}

// DoubleClickDetector pairs click events into double-click events.
type DoubleClickDetector struct {
	watchers map[Button]*DoubleClickWatcher
}

// newDoubleClickDetector creates a detector that owns the given watchers.
func newDoubleClickDetector(watchers []*DoubleClickWatcher) *DoubleClickDetector {
	d := &DoubleClickDetector{watchers: make(map[Button]*DoubleClickWatcher, len(watchers))}
	for _, w := range watchers {
		d.watchers[w.Button] = w
	}
	return d
}

// Update consumes clicks in order at cycle time now and returns the
// double-clicks they complete.
func (d *DoubleClickDetector) Update(now time.Duration, clicks []ClickEvent) []DoubleClickEvent {
	var doubles []DoubleClickEvent

	for _, c := range clicks {
		w, ok := d.watchers[c.Button]
		if !ok {
			continue
		}
		if w.click(now) {
			doubles = append(doubles, DoubleClickEvent{Button: w.Button})
		}
	}

	return doubles
}

// Watcher returns a copy of the watcher for b.
func (d *DoubleClickDetector) Watcher(b Button) (DoubleClickWatcher, bool) {
	w, ok := d.watchers[b]
	if !ok {
		return DoubleClickWatcher{}, false
	}
	return *w, true
}
