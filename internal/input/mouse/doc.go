// Package mouse derives click and double-click gestures from raw mouse
// button transitions.
//
// The host calls the package once per update cycle with the cycle time and
// the press/release transitions seen since the previous cycle:
//
//	p := mouse.NewPipeline(mouse.DefaultRegistry())
//	res := p.Update(now, []mouse.RawEvent{
//	    mouse.Release(mouse.ButtonLeft),
//	})
//	for _, c := range res.Clicks {
//	    handleClick(c.Button)
//	}
//
// # Click Detection
//
// Each watched button has a ClickWatcher. A press records the cycle time;
// a release emits a ClickEvent when it arrives within the button's click
// window of that press. Only the latest press is remembered, and a release
// with no press earlier in the session never emits.
//
// # Double-Click Detection
//
// Each watched button also has a DoubleClickWatcher holding a pairing
// anchor. A click within the double-click window of the anchor emits a
// DoubleClickEvent and clears the anchor, so a rapid third click starts a
// new pair instead of chaining. Any other click becomes the new anchor.
//
// # Registry
//
// A Registry is the fixed set of watched buttons and their thresholds.
// DefaultRegistry watches left, middle and right with a 100ms click window
// and a 300ms double-click window. Registries reject non-positive windows
// and duplicate buttons. There is no runtime reconfiguration; build a new
// Registry and Pipeline instead.
//
// # Time
//
// Times are time.Duration offsets from session start. A reading earlier
// than the stored timestamp (clock going backwards) never produces a
// gesture.
package mouse
