// Package replay reads recorded button-transition logs and runs them
// through a click pipeline.
//
// A log lists update cycles in order. Each cycle has a time offset from
// session start and the transitions seen in that cycle:
//
//	cycles:
//	  - at: 0s
//	    events:
//	      - {button: left, action: press}
//	  - at: 50ms
//	    events:
//	      - {button: left, action: release}
//
// Times are Go duration strings or plain numbers of seconds.
package replay

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/clickstorm/internal/input/mouse"
)

// ErrNonMonotonic indicates a cycle time earlier than the previous cycle.
var ErrNonMonotonic = errors.New("cycle time goes backwards")

// LogError describes a problem at a specific place in a log.
type LogError struct {
	// Cycle is the zero-based cycle index, or -1 for the whole log.
	Cycle int
	// Event is the zero-based event index within the cycle, or -1.
	Event int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LogError) Error() string {
	switch {
	case e.Cycle < 0:
		return fmt.Sprintf("replay log: %v", e.Err)
	case e.Event < 0:
		return fmt.Sprintf("replay log: cycle %d: %v", e.Cycle, e.Err)
	default:
		return fmt.Sprintf("replay log: cycle %d event %d: %v", e.Cycle, e.Event, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *LogError) Unwrap() error {
	return e.Err
}

// Log is a parsed transition log.
type Log struct {
	Cycles []Cycle
}

// Cycle is one recorded update cycle.
type Cycle struct {
	At     time.Duration
	Events []mouse.RawEvent
}

// logFile mirrors the YAML layout.
type logFile struct {
	Cycles []cycleDef `yaml:"cycles"`
}

type cycleDef struct {
	At     scalar     `yaml:"at"`
	Events []eventDef `yaml:"events,omitempty"`
}

// scalar takes the raw text of any YAML scalar, so both "50ms" and 0.05
// decode.
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	*s = scalar(n.Value)
	return nil
}

type eventDef struct {
	Button string `yaml:"button"`
	Action string `yaml:"action"`
}

// Parse reads a log from r.
func Parse(r io.Reader) (*Log, error) {
	var lf logFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&lf); err != nil {
		if errors.Is(err, io.EOF) {
			return &Log{}, nil
		}
		return nil, &LogError{Cycle: -1, Event: -1, Err: err}
	}

	log := &Log{Cycles: make([]Cycle, 0, len(lf.Cycles))}
	var prev time.Duration

	for i, cd := range lf.Cycles {
		at, err := parseAt(string(cd.At))
		if err != nil {
			return nil, &LogError{Cycle: i, Event: -1, Err: err}
		}
		if i > 0 && at < prev {
			return nil, &LogError{Cycle: i, Event: -1, Err: fmt.Errorf("%w: %v after %v", ErrNonMonotonic, at, prev)}
		}
		prev = at

		c := Cycle{At: at, Events: make([]mouse.RawEvent, 0, len(cd.Events))}
		for j, ed := range cd.Events {
			b, err := mouse.ParseButton(ed.Button)
			if err != nil {
				return nil, &LogError{Cycle: i, Event: j, Err: err}
			}
			a, err := mouse.ParseAction(ed.Action)
			if err != nil {
				return nil, &LogError{Cycle: i, Event: j, Err: err}
			}
			c.Events = append(c.Events, mouse.RawEvent{Button: b, Action: a})
		}
		log.Cycles = append(log.Cycles, c)
	}

	return log, nil
}

// LoadFile reads a log from path.
func LoadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening replay log: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// parseAt accepts "50ms" style durations or bare seconds such as "0.05".
func parseAt(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing cycle time")
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative cycle time %q", s)
		}
		ns := math.Round(secs * float64(time.Second))
		if math.IsNaN(ns) || ns >= math.MaxInt64 {
			return 0, fmt.Errorf("cycle time %q out of range", s)
		}
		return time.Duration(ns), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cycle time %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative cycle time %q", s)
	}
	return d, nil
}
