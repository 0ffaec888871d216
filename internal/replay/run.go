package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dshills/clickstorm/internal/input/mouse"
)

// Frame is the pipeline output for one replayed cycle.
type Frame struct {
	Cycle int
	mouse.Result
}

// Run feeds every cycle of log through p in order.
// Cycles are processed back to back; only the recorded times matter.
func Run(ctx context.Context, p *mouse.Pipeline, log *Log) ([]Frame, error) {
	frames := make([]Frame, 0, len(log.Cycles))

	for i, c := range log.Cycles {
		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		default:
		}

		frames = append(frames, Frame{
			Cycle:  i,
			Result: p.Update(c.At, c.Events),
		})
	}

	return frames, nil
}

// Gesture is one emitted gesture in report form.
type Gesture struct {
	Cycle  int           `json:"cycle"`
	At     time.Duration `json:"-"`
	Kind   string        `json:"gesture"`
	Button string        `json:"button"`
}

// MarshalJSON writes At as a duration string next to the other fields.
func (g Gesture) MarshalJSON() ([]byte, error) {
	type plain Gesture
	return json.Marshal(struct {
		plain
		At string `json:"at"`
	}{plain(g), g.At.String()})
}

// Gestures flattens frames into emission order: every click of a cycle,
// then every double-click of that cycle.
func Gestures(frames []Frame) []Gesture {
	var out []Gesture
	for _, f := range frames {
		for _, c := range f.Clicks {
			out = append(out, Gesture{Cycle: f.Cycle, At: f.Now, Kind: "click", Button: c.Button.String()})
		}
		for _, d := range f.DoubleClicks {
			out = append(out, Gesture{Cycle: f.Cycle, At: f.Now, Kind: "doubleclick", Button: d.Button.String()})
		}
	}
	return out
}

// WriteText writes one line per gesture, e.g. "t=50ms click left".
func WriteText(w io.Writer, frames []Frame) error {
	for _, g := range Gestures(frames) {
		if _, err := fmt.Fprintf(w, "t=%v %s %s\n", g.At, g.Kind, g.Button); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes one JSON object per gesture, one per line.
func WriteJSON(w io.Writer, frames []Frame) error {
	enc := json.NewEncoder(w)
	for _, g := range Gestures(frames) {
		if err := enc.Encode(g); err != nil {
			return err
		}
	}
	return nil
}
