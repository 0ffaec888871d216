package mouse

import "time"

// Default thresholds applied by DefaultWatcherConfigs.
const (
	DefaultClickWindow       = 100 * time.Millisecond
	DefaultDoubleClickWindow = 300 * time.Millisecond
)

// WatcherConfig holds the thresholds for one watched button.
type WatcherConfig struct {
	Button            Button
	ClickWindow       time.Duration
	DoubleClickWindow time.Duration
}

// Validate checks that the button is watchable and both windows are positive.
func (c WatcherConfig) Validate() error {
	if c.Button == ButtonNone || c.Button > ButtonForward {
		return &WatcherError{Field: "button", Value: uint8(c.Button), Err: ErrUnknownButton}
	}
	if c.ClickWindow <= 0 {
		return &WatcherError{Button: c.Button, Field: "click window", Value: c.ClickWindow, Err: ErrInvalidWindow}
	}
	if c.DoubleClickWindow <= 0 {
		return &WatcherError{Button: c.Button, Field: "double-click window", Value: c.DoubleClickWindow, Err: ErrInvalidWindow}
	}
	return nil
}

// DefaultWatcherConfigs returns the left, middle and right buttons with the
// default thresholds.
func DefaultWatcherConfigs() []WatcherConfig {
	buttons := []Button{ButtonLeft, ButtonMiddle, ButtonRight}
	configs := make([]WatcherConfig, 0, len(buttons))
	for _, b := range buttons {
		configs = append(configs, WatcherConfig{
			Button:            b,
			ClickWindow:       DefaultClickWindow,
			DoubleClickWindow: DefaultDoubleClickWindow,
		})
	}
	return configs
}

// Registry is the validated, fixed set of watched buttons.
// It is immutable once built; changing thresholds means building a new
// Registry and a new Pipeline from it.
type Registry struct {
	configs []WatcherConfig
	index   map[Button]int
}

// NewRegistry validates configs and builds a registry.
// Every button may appear at most once.
func NewRegistry(configs []WatcherConfig) (*Registry, error) {
	r := &Registry{
		configs: make([]WatcherConfig, 0, len(configs)),
		index:   make(map[Button]int, len(configs)),
	}

	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[c.Button]; dup {
			return nil, &WatcherError{Button: c.Button, Field: "button", Value: c.Button, Err: ErrDuplicateButton}
		}
		r.index[c.Button] = len(r.configs)
		r.configs = append(r.configs, c)
	}

	return r, nil
}

// DefaultRegistry returns a registry built from DefaultWatcherConfigs.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultWatcherConfigs())
	if err != nil {
		// Defaults are constants; failing here is a programming error.
		panic(err)
	}
	return r
}

// Buttons returns the watched buttons in registration order.
func (r *Registry) Buttons() []Button {
	buttons := make([]Button, len(r.configs))
	for i, c := range r.configs {
		buttons[i] = c.Button
	}
	return buttons
}

// Config returns the thresholds for b.
func (r *Registry) Config(b Button) (WatcherConfig, bool) {
	i, ok := r.index[b]
	if !ok {
		return WatcherConfig{}, false
	}
	return r.configs[i], true
}

// Configs returns a copy of all watcher configs in registration order.
func (r *Registry) Configs() []WatcherConfig {
	out := make([]WatcherConfig, len(r.configs))
	copy(out, r.configs)
	return out
}

// Len returns the number of watched buttons.
func (r *Registry) Len() int {
	return len(r.configs)
}

// detectors builds a fresh watcher pair per button, split between the two
// detectors so each detector is the only writer of its watchers.
func (r *Registry) detectors() (*ClickDetector, *DoubleClickDetector) {
	clicks := make([]*ClickWatcher, 0, len(r.configs))
	doubles := make([]*DoubleClickWatcher, 0, len(r.configs))
	for _, c := range r.configs {
		clicks = append(clicks, newClickWatcher(c.Button, c.ClickWindow))
		doubles = append(doubles, newDoubleClickWatcher(c.Button, c.DoubleClickWindow))
	}
	return newClickDetector(clicks), newDoubleClickDetector(doubles)
}
