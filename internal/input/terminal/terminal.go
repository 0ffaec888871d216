// Package terminal reads mouse buttons from a terminal through tcell and
// reports them as raw press/release transitions.
//
// Terminals report the set of buttons currently held rather than
// transitions, so the source keeps the previous set and emits the
// difference each time a mouse event arrives.
package terminal

import (
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/clickstorm/internal/input/mouse"
)

// buttonMap lists the tcell buttons that map onto watched buttons, in the
// order their transitions are reported.
var buttonMap = []struct {
	mask   tcell.ButtonMask
	button mouse.Button
}{
	{tcell.ButtonPrimary, mouse.ButtonLeft},
	{tcell.ButtonMiddle, mouse.ButtonMiddle},
	{tcell.ButtonSecondary, mouse.ButtonRight},
	// Side buttons, when the terminal reports them
	{tcell.Button4, mouse.ButtonBack},
	{tcell.Button5, mouse.ButtonForward},
}

// trackedMask covers every button in buttonMap.
var trackedMask = func() tcell.ButtonMask {
	var m tcell.ButtonMask
	for _, b := range buttonMap {
		m |= b.mask
	}
	return m
}()

// Translator turns successive button masks into transitions.
type Translator struct {
	held tcell.ButtonMask
}

// Translate returns the transitions between the previously held buttons and
// mask. Wheel bits are ignored.
func (t *Translator) Translate(mask tcell.ButtonMask) []mouse.RawEvent {
	var events []mouse.RawEvent

	// Releases first so a fast swap of buttons reads as release then press
	for _, m := range buttonMap {
		if t.held&m.mask != 0 && mask&m.mask == 0 {
			events = append(events, mouse.Release(m.button))
		}
	}
	for _, m := range buttonMap {
		if t.held&m.mask == 0 && mask&m.mask != 0 {
			events = append(events, mouse.Press(m.button))
		}
	}

	t.held = mask & trackedMask
	return events
}

// Held returns the buttons currently considered pressed.
func (t *Translator) Held() tcell.ButtonMask {
	return t.held
}

// Terminal is a tcell-backed source of raw button transitions.
type Terminal struct {
	screen tcell.Screen

	mu         sync.Mutex
	translator Translator
	pending    []mouse.RawEvent

	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// NewTerminal creates a terminal source on the real terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation
// screen in tests.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen: screen,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Init initializes the screen, enables mouse reporting and starts reading
// events.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse(tcell.MouseButtonEvents)
	t.screen.HideCursor()

	go t.pollLoop()
	return nil
}

// Shutdown restores the terminal and waits for the event loop to exit.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
	<-t.done
}

// Quit is closed when the user asks to leave (q, Esc or Ctrl-C).
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

// Drain returns the transitions collected since the previous call, in
// arrival order.
func (t *Terminal) Drain() []mouse.RawEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := t.pending
	t.pending = nil
	return events
}

// DrawLines replaces the screen contents with lines, one per row.
func (t *Terminal) DrawLines(lines []string) {
	t.screen.Clear()
	width, height := t.screen.Size()
	style := tcell.StyleDefault

	for y, line := range lines {
		if y >= height {
			break
		}
		x := 0
		for len(line) > 0 && x < width {
			r, size := utf8.DecodeRuneInString(line)
			t.screen.SetContent(x, y, r, nil, style)
			line = line[size:]
			x++
		}
	}
	t.screen.Show()
}

// pollLoop reads events until the screen is finalized.
func (t *Terminal) pollLoop() {
	defer close(t.done)

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		t.handle(ev)
	}
}

// handle routes one tcell event.
func (t *Terminal) handle(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		t.mu.Lock()
		t.pending = append(t.pending, t.translator.Translate(e.Buttons())...)
		t.mu.Unlock()

	case *tcell.EventKey:
		if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC || (e.Key() == tcell.KeyRune && e.Rune() == 'q') {
			t.quitOnce.Do(func() { close(t.quit) })
		}

	case *tcell.EventResize:
		t.screen.Sync()
	}
}
