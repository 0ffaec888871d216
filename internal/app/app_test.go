package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/clickstorm/internal/config"
	"github.com/dshills/clickstorm/internal/input/mouse"
	"github.com/dshills/clickstorm/internal/replay"
)

// fakeSource hands out queued batches, one per Drain.
type fakeSource struct {
	mu      sync.Mutex
	batches [][]mouse.RawEvent
	quit    chan struct{}
}

func newFakeSource(batches ...[]mouse.RawEvent) *fakeSource {
	return &fakeSource{batches: batches, quit: make(chan struct{})}
}

func (s *fakeSource) Drain() []mouse.RawEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b
}

func (s *fakeSource) Push(events ...mouse.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, events)
}

func (s *fakeSource) Quit() <-chan struct{} { return s.quit }

type fakeDisplay struct {
	mu    sync.Mutex
	lines []string
	draws int
}

func (d *fakeDisplay) DrawLines(lines []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = lines
	d.draws++
}

func (d *fakeDisplay) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

func newTestApp(t *testing.T, src Source, clock *mouse.ManualClock, opts Options) *Application {
	t.Helper()
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	opts.Clock = clock
	app, err := New(src, opts)
	require.NoError(t, err)
	return app
}

func TestNew_Defaults(t *testing.T) {
	app := newTestApp(t, newFakeSource(), mouse.NewManualClock(0), Options{})

	assert.Equal(t, config.DefaultTickRate, app.TickRate())
	assert.Equal(t, []mouse.Button{mouse.ButtonLeft, mouse.ButtonMiddle, mouse.ButtonRight}, app.Registry().Buttons())
	assert.NotEmpty(t, app.Pipeline().ID())
	assert.False(t, app.IsRunning())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Buttons = []config.ButtonConfig{{Name: "left", ClickWindow: "0s"}}

	_, err := New(newFakeSource(), Options{Config: cfg})
	require.Error(t, err)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "initialize", opErr.Op)
	assert.True(t, errors.Is(err, mouse.ErrInvalidWindow))
}

func TestStep_ClickAndDoubleClick(t *testing.T) {
	clock := mouse.NewManualClock(0)
	src := newFakeSource()
	display := &fakeDisplay{}
	app := newTestApp(t, src, clock, Options{Display: display})

	var results []mouse.Result
	app.OnResult(func(r mouse.Result) { results = append(results, r) })

	src.Push(mouse.Press(mouse.ButtonLeft))
	assert.True(t, app.Step().Empty())

	clock.Advance(50 * time.Millisecond)
	src.Push(mouse.Release(mouse.ButtonLeft))
	res := app.Step()
	assert.Equal(t, []mouse.ClickEvent{{Button: mouse.ButtonLeft}}, res.Clicks)
	assert.Empty(t, res.DoubleClicks)

	clock.Advance(150 * time.Millisecond)
	src.Push(mouse.Press(mouse.ButtonLeft))
	app.Step()

	clock.Advance(50 * time.Millisecond)
	src.Push(mouse.Release(mouse.ButtonLeft))
	res = app.Step()
	assert.Equal(t, []mouse.ClickEvent{{Button: mouse.ButtonLeft}}, res.Clicks)
	assert.Equal(t, []mouse.DoubleClickEvent{{Button: mouse.ButtonLeft}}, res.DoubleClicks)

	require.Len(t, results, 2)
	assert.Equal(t, 2, display.Draws())

	m := app.Metrics().Snapshot()
	assert.Equal(t, uint64(4), m.Cycles)
	assert.Equal(t, uint64(4), m.Transitions)
	assert.Equal(t, uint64(2), m.Clicks)
	assert.Equal(t, uint64(1), m.DoubleClicks)
}

func TestStep_Records(t *testing.T) {
	clock := mouse.NewManualClock(0)
	src := newFakeSource()
	rec := replay.NewRecorder()
	app := newTestApp(t, src, clock, Options{Recorder: rec})

	src.Push(mouse.Press(mouse.ButtonRight))
	app.Step()
	clock.Advance(16 * time.Millisecond)
	app.Step()
	clock.Advance(16 * time.Millisecond)
	src.Push(mouse.Release(mouse.ButtonRight))
	app.Step()

	log := rec.Log()
	require.Len(t, log.Cycles, 2)
	assert.Equal(t, time.Duration(0), log.Cycles[0].At)
	assert.Equal(t, 32*time.Millisecond, log.Cycles[1].At)
	assert.Equal(t, []mouse.RawEvent{mouse.Release(mouse.ButtonRight)}, log.Cycles[1].Events)
}

func TestStatusLines(t *testing.T) {
	clock := mouse.NewManualClock(0)
	src := newFakeSource()
	app := newTestApp(t, src, clock, Options{})

	lines := app.StatusLines()
	assert.Contains(t, lines[1], app.Pipeline().ID())
	assert.Contains(t, lines[2], "left")

	for i := 0; i < historySize+3; i++ {
		src.Push(mouse.Press(mouse.ButtonMiddle))
		app.Step()
		clock.Advance(10 * time.Millisecond)
		src.Push(mouse.Release(mouse.ButtonMiddle))
		app.Step()
		clock.Advance(time.Second)
	}

	app.mu.Lock()
	assert.Len(t, app.history, historySize)
	app.mu.Unlock()
}

func TestReload_ResetsWatchers(t *testing.T) {
	clock := mouse.NewManualClock(0)
	src := newFakeSource()
	app := newTestApp(t, src, clock, Options{})
	before := app.Pipeline().ID()

	src.Push(mouse.Press(mouse.ButtonLeft))
	app.Step()

	cfg := config.Default()
	cfg.Buttons = []config.ButtonConfig{{Name: "left", ClickWindow: "20ms"}}
	require.NoError(t, app.Reload(cfg))

	assert.NotEqual(t, before, app.Pipeline().ID())
	assert.Equal(t, []mouse.Button{mouse.ButtonLeft}, app.Registry().Buttons())
	assert.Equal(t, cfg, app.Config())
	assert.Equal(t, uint64(1), app.Metrics().Snapshot().Reloads)

	// The press was forgotten with the old watchers
	clock.Advance(10 * time.Millisecond)
	src.Push(mouse.Release(mouse.ButtonLeft))
	assert.Empty(t, app.Step().Clicks)
}

func TestReload_ReportsIgnoredLoggingChange(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := newTestApp(t, newFakeSource(), mouse.NewManualClock(0), Options{Logger: zap.New(core)})

	same := config.Default()
	same.Loop.TickRate = "5ms"
	require.NoError(t, app.Reload(same))
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	changed := config.Default()
	changed.Logging.Level = "debug"
	require.NoError(t, app.Reload(changed))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "debug", warns[0].ContextMap()["level"])
	assert.Equal(t, uint64(2), app.Metrics().Snapshot().Reloads)
}

func TestReload_InvalidKeepsPipeline(t *testing.T) {
	app := newTestApp(t, newFakeSource(), mouse.NewManualClock(0), Options{})
	before := app.Pipeline()

	cfg := config.Default()
	cfg.Loop.TickRate = "never"
	require.Error(t, app.Reload(cfg))

	assert.Same(t, before, app.Pipeline())
	assert.Zero(t, app.Metrics().Snapshot().Reloads)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.TickRate = "1ms"
	src := newFakeSource()
	app := newTestApp(t, src, mouse.NewManualClock(0), Options{Config: cfg})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, app.IsRunning, time.Second, time.Millisecond)
	assert.ErrorIs(t, app.Run(ctx), ErrAlreadyRunning)
	require.Eventually(t, func() bool { return app.Metrics().Snapshot().Cycles > 0 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, app.IsRunning())
}

func TestRun_Quit(t *testing.T) {
	src := newFakeSource()
	app := newTestApp(t, src, mouse.NewManualClock(0), Options{})

	close(src.quit)
	assert.ErrorIs(t, app.Run(context.Background()), ErrQuit)
}

func TestRun_ReloadsOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clickstorm.toml")
	require.NoError(t, os.WriteFile(path, []byte("[loop]\ntick_rate = \"2ms\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	src := newFakeSource()
	app := newTestApp(t, src, mouse.NewManualClock(0), Options{
		Config:      cfg,
		ConfigPath:  path,
		WatchConfig: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	require.Eventually(t, app.IsRunning, time.Second, time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("[loop]\ntick_rate = \"4ms\"\n\n[[buttons]]\nname = \"back\"\n"), 0o644))

	require.Eventually(t, func() bool {
		return app.Metrics().Snapshot().Reloads > 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []mouse.Button{mouse.ButtonBack}, app.Registry().Buttons())
	assert.Equal(t, 4*time.Millisecond, app.TickRate())

	cancel()
	assert.NoError(t, <-done)
}

func TestOperationError(t *testing.T) {
	base := errors.New("boom")

	err := NewOperationError("reload", "a.toml", base)
	assert.Equal(t, "reload a.toml: boom", err.Error())
	assert.ErrorIs(t, err, base)

	assert.Equal(t, "watch", NewOperationError("watch", "", nil).Error())
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.Snapshot().MinCycle)

	m.RecordCycle(2*time.Millisecond, 1, 0, 0)
	m.RecordCycle(4*time.Millisecond, 2, 1, 1)

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.Cycles)
	assert.Equal(t, 3*time.Millisecond, s.AvgCycle)
	assert.Equal(t, 2*time.Millisecond, s.MinCycle)
	assert.Equal(t, 4*time.Millisecond, s.MaxCycle)
	assert.Equal(t, uint64(3), s.Transitions)
}
