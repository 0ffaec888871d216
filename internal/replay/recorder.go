package replay

import (
	"io"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/clickstorm/internal/input/mouse"
)

// Recorder collects live cycles into a log that Parse can read back.
// Cycles with no events are skipped.
type Recorder struct {
	mu     sync.Mutex
	cycles []Cycle
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add records the events of one cycle.
func (r *Recorder) Add(at time.Duration, events []mouse.RawEvent) {
	if len(events) == 0 {
		return
	}

	cp := make([]mouse.RawEvent, len(events))
	copy(cp, events)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles = append(r.cycles, Cycle{At: at, Events: cp})
}

// Log returns a copy of what has been recorded so far.
func (r *Recorder) Log() *Log {
	r.mu.Lock()
	defer r.mu.Unlock()

	cycles := make([]Cycle, len(r.cycles))
	copy(cycles, r.cycles)
	return &Log{Cycles: cycles}
}

// WriteTo writes the recording as YAML.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	data, err := Marshal(r.Log())
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Marshal encodes log in the format Parse reads.
func Marshal(log *Log) ([]byte, error) {
	lf := logFile{Cycles: make([]cycleDef, 0, len(log.Cycles))}
	for _, c := range log.Cycles {
		cd := cycleDef{At: scalar(c.At.String())}
		for _, ev := range c.Events {
			cd.Events = append(cd.Events, eventDef{
				Button: ev.Button.String(),
				Action: ev.Action.String(),
			})
		}
		lf.Cycles = append(lf.Cycles, cd)
	}
	return yaml.Marshal(lf)
}
