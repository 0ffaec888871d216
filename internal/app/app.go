// Package app drives the click pipeline from a live input source. It owns
// the update loop, the gesture history shown on screen and configuration
// reload.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/clickstorm/internal/config"
	"github.com/dshills/clickstorm/internal/config/watcher"
	"github.com/dshills/clickstorm/internal/input/mouse"
	"github.com/dshills/clickstorm/internal/logging"
	"github.com/dshills/clickstorm/internal/replay"
)

// historySize is the number of gesture lines kept for display.
const historySize = 10

// Source supplies the raw transitions seen since the previous cycle.
type Source interface {
	Drain() []mouse.RawEvent
}

// Quitter is implemented by sources that can ask the loop to stop.
type Quitter interface {
	Quit() <-chan struct{}
}

// Display shows the application status.
type Display interface {
	DrawLines(lines []string)
}

// Sink receives every non-empty cycle result.
type Sink func(mouse.Result)

// Options configures the application.
type Options struct {
	// ConfigPath is the file reloaded when WatchConfig is set.
	ConfigPath string

	// Config is the initial configuration. Nil loads ConfigPath.
	Config *config.Config

	// WatchConfig rebuilds the pipeline whenever ConfigPath changes.
	WatchConfig bool

	// Logger receives application logs. Nil discards them.
	Logger *zap.Logger

	// Clock is the session clock. Nil uses a monotonic clock.
	Clock mouse.Clock

	// Display, if set, is redrawn after cycles that produced gestures.
	Display Display

	// Recorder, if set, receives every non-empty cycle of transitions.
	Recorder *replay.Recorder
}

// Application runs the update loop.
type Application struct {
	mu sync.Mutex

	cfg      *config.Config
	registry *mouse.Registry
	pipeline *mouse.Pipeline
	tickRate time.Duration

	source   Source
	display  Display
	recorder *replay.Recorder
	sinks    []Sink
	history  []string

	clock   mouse.Clock
	logger  *zap.Logger
	metrics *Metrics

	opts    Options
	running atomic.Bool
}

// New creates an application reading from source.
func New(source Source, opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, NewOperationError("load config", opts.ConfigPath, err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = mouse.NewMonotonicClock()
	}

	app := &Application{
		source:   source,
		display:  opts.Display,
		recorder: opts.Recorder,
		clock:    clock,
		logger:   logging.L(logger, "app"),
		metrics:  NewMetrics(),
		opts:     opts,
	}

	if err := app.apply(cfg); err != nil {
		return nil, NewOperationError("initialize", opts.ConfigPath, err)
	}
	return app, nil
}

// apply builds a fresh registry and pipeline from cfg.
func (app *Application) apply(cfg *config.Config) error {
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	tick, err := cfg.TickRate()
	if err != nil {
		return err
	}

	p := mouse.NewPipeline(reg,
		mouse.WithClock(app.clock),
		mouse.WithLogger(logging.L(app.opts.Logger, "pipeline")),
	)

	app.mu.Lock()
	app.cfg = cfg
	app.registry = reg
	app.pipeline = p
	app.tickRate = tick
	app.mu.Unlock()
	return nil
}

// OnResult registers a sink for cycle results.
func (app *Application) OnResult(s Sink) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.sinks = append(app.sinks, s)
}

// Reload replaces the registry and pipeline with ones built from cfg.
// Watcher state starts over; the session clock keeps running. On error the
// current pipeline stays in place.
//
// Only the loop and buttons settings take effect. The logger is built once
// at startup, so a changed logging section is reported and otherwise
// ignored. Recordings do not mark reloads: replaying a session that spanned
// one uses a single config for every cycle.
func (app *Application) Reload(cfg *config.Config) error {
	prev := app.Config()
	if err := app.apply(cfg); err != nil {
		return NewOperationError("reload", app.opts.ConfigPath, err)
	}
	app.metrics.RecordReload()
	app.logger.Info("watchers re-initialized", zap.String(logging.KeySession, app.Pipeline().ID()))

	if prev != nil && prev.Logging != cfg.Logging {
		app.logger.Warn("logging settings changed; restart to apply",
			zap.String(logging.KeyPath, app.opts.ConfigPath),
			zap.String("level", cfg.Logging.Level),
			zap.String("format", cfg.Logging.Format),
		)
	}
	return nil
}

// Step runs one update cycle: drain the source, read the clock once, run
// the pipeline and deliver the result.
func (app *Application) Step() mouse.Result {
	start := time.Now()
	events := app.source.Drain()

	app.mu.Lock()
	p := app.pipeline
	now := app.clock.Now()
	res := p.Update(now, events)
	sinks := append([]Sink(nil), app.sinks...)
	if !res.Empty() {
		app.appendHistory(res)
	}
	app.mu.Unlock()

	if app.recorder != nil {
		app.recorder.Add(now, events)
	}

	app.metrics.RecordCycle(time.Since(start), len(events), len(res.Clicks), len(res.DoubleClicks))

	if !res.Empty() {
		for _, s := range sinks {
			s(res)
		}
		app.redraw()
	}
	return res
}

// Run ticks until ctx is done or the source asks to quit.
// It returns nil on cancellation and ErrQuit on a quit request.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.opts.WatchConfig && app.opts.ConfigPath != "" {
		w, err := app.watchConfig(ctx)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	var quit <-chan struct{}
	if q, ok := app.source.(Quitter); ok {
		quit = q.Quit()
	}

	app.redraw()

	ticker := time.NewTicker(app.TickRate())
	defer ticker.Stop()
	current := app.TickRate()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return ErrQuit
		case <-ticker.C:
			app.Step()
			if rate := app.TickRate(); rate != current {
				ticker.Reset(rate)
				current = rate
			}
		}
	}
}

// watchConfig starts a watcher that reloads the config file on change.
func (app *Application) watchConfig(ctx context.Context) (*watcher.Watcher, error) {
	w, err := watcher.New(watcher.WithLogger(app.logger))
	if err != nil {
		return nil, NewOperationError("watch", app.opts.ConfigPath, err)
	}
	if err := w.Watch(app.opts.ConfigPath); err != nil {
		w.Stop()
		return nil, NewOperationError("watch", app.opts.ConfigPath, err)
	}

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		cfg, err := config.Load(app.opts.ConfigPath)
		if err != nil {
			app.logger.Error("config reload failed", zap.String(logging.KeyPath, ev.Path), zap.Error(err))
			return
		}
		if err := app.Reload(cfg); err != nil {
			app.logger.Error("config reload failed", zap.String(logging.KeyPath, ev.Path), zap.Error(err))
		}
	})

	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, NewOperationError("watch", app.opts.ConfigPath, err)
	}
	return w, nil
}

// appendHistory records gesture lines for display. Caller holds mu.
func (app *Application) appendHistory(res mouse.Result) {
	for _, c := range res.Clicks {
		app.history = append(app.history, fmt.Sprintf("t=%-10v click       %s", res.Now.Round(time.Millisecond), c.Button))
	}
	for _, d := range res.DoubleClicks {
		app.history = append(app.history, fmt.Sprintf("t=%-10v doubleclick %s", res.Now.Round(time.Millisecond), d.Button))
	}
	if over := len(app.history) - historySize; over > 0 {
		app.history = app.history[over:]
	}
}

// StatusLines returns what the display shows: header, thresholds, counters
// and the most recent gestures.
func (app *Application) StatusLines() []string {
	app.mu.Lock()
	defer app.mu.Unlock()

	lines := []string{
		"clickstorm - click anywhere, q to quit",
		"session " + app.pipeline.ID(),
	}
	for _, c := range app.registry.Configs() {
		lines = append(lines, fmt.Sprintf("  %-7s click<=%v double<=%v", c.Button, c.ClickWindow, c.DoubleClickWindow))
	}

	m := app.metrics.Snapshot()
	lines = append(lines,
		fmt.Sprintf("cycles=%d clicks=%d doubles=%d reloads=%d", m.Cycles, m.Clicks, m.DoubleClicks, m.Reloads),
		"",
	)
	return append(lines, app.history...)
}

// redraw refreshes the display if there is one.
func (app *Application) redraw() {
	if app.display == nil {
		return
	}
	app.display.DrawLines(app.StatusLines())
}

// Pipeline returns the current pipeline. It changes on Reload.
func (app *Application) Pipeline() *mouse.Pipeline {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.pipeline
}

// Config returns the configuration the current pipeline was built from.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// Registry returns the current registry.
func (app *Application) Registry() *mouse.Registry {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.registry
}

// TickRate returns the current update interval.
func (app *Application) TickRate() time.Duration {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.tickRate
}

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
