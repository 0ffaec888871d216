package mouse

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline runs the click detector and then the double-click detector once
// per host cycle. Clicks produced in a cycle are paired in that same cycle.
//
// A Pipeline is driven from a single goroutine and is not safe for
// concurrent use.
type Pipeline struct {
	id     string
	clock  Clock
	logger *zap.Logger

	click  *ClickDetector
	double *DoubleClickDetector

	cycles uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock read by Tick.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger gestures are reported to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.id = id
		}
	}
}

// NewPipeline builds fresh watchers from reg and returns a pipeline over them.
// A nil registry uses DefaultRegistry.
func NewPipeline(reg *Registry, opts ...Option) *Pipeline {
	if reg == nil {
		reg = DefaultRegistry()
	}

	click, double := reg.detectors()
	p := &Pipeline{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
		click:  click,
		double: double,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = NewMonotonicClock()
	}

	p.logger = p.logger.With(zap.String("session", p.id))
	names := make([]string, 0, reg.Len())
	for _, b := range reg.Buttons() {
		names = append(names, b.String())
	}
	p.logger.Info("click pipeline initialized", zap.Strings("buttons", names))

	return p
}

// Update processes one cycle at time now. All raw events go through the click
// detector before any click reaches the double-click detector.
func (p *Pipeline) Update(now time.Duration, events []RawEvent) Result {
	p.cycles++

	clicks := p.click.Update(now, events)
	doubles := p.double.Update(now, clicks)

	for _, c := range clicks {
		p.logger.Debug("click", zap.Stringer("button", c.Button), zap.Duration("at", now))
	}
	for _, d := range doubles {
		p.logger.Debug("double click", zap.Stringer("button", d.Button), zap.Duration("at", now))
	}

	return Result{
		Now:          now,
		Clicks:       clicks,
		DoubleClicks: doubles,
	}
}

// Tick reads the clock once and runs Update with that reading.
func (p *Pipeline) Tick(events []RawEvent) Result {
	return p.Update(p.clock.Now(), events)
}

// ID returns the session ID assigned to this pipeline.
func (p *Pipeline) ID() string {
	return p.id
}

// Cycles returns the number of cycles processed.
func (p *Pipeline) Cycles() uint64 {
	return p.cycles
}

// ClickWatcher returns a snapshot of the click watcher for b.
func (p *Pipeline) ClickWatcher(b Button) (ClickWatcher, bool) {
	return p.click.Watcher(b)
}

// DoubleClickWatcher returns a snapshot of the double-click watcher for b.
func (p *Pipeline) DoubleClickWatcher(b Button) (DoubleClickWatcher, bool) {
	return p.double.Watcher(b)
}
