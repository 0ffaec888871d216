package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/clickstorm/internal/input/mouse"
)

// Default values for settings left empty.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultTickRate  = 16 * time.Millisecond
)

// Config is the complete clickstorm configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Loop    LoopConfig    `toml:"loop"`

	// Buttons lists the watched buttons. When empty, left, middle and right
	// are watched with the default windows.
	Buttons []ButtonConfig `toml:"buttons"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is "console" or "json".
	Format string `toml:"format"`
}

// LoopConfig configures the host update loop.
type LoopConfig struct {
	// TickRate is the interval between update cycles, as a Go duration string.
	TickRate string `toml:"tick_rate"`
}

// ButtonConfig holds the thresholds for one watched button.
// Empty windows fall back to the package defaults.
type ButtonConfig struct {
	Name              string `toml:"name"`
	ClickWindow       string `toml:"click_window"`
	DoubleClickWindow string `toml:"doubleclick_window"`
}

// Default returns a configuration with every setting at its default.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Validate checks every setting, returning the first failure.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		return &ValidationError{Path: "logging.format", Message: "must be console or json", Value: c.Logging.Format}
	}

	if _, err := c.TickRate(); err != nil {
		return err
	}

	_, err := c.WatcherConfigs()
	return err
}

// TickRate returns the parsed loop interval.
func (c *Config) TickRate() (time.Duration, error) {
	if c.Loop.TickRate == "" {
		return DefaultTickRate, nil
	}
	d, err := parseWindow("loop.tick_rate", c.Loop.TickRate)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// WatcherConfigs converts the button settings into watcher configs.
// Button names, windows and duplicates are all checked here.
func (c *Config) WatcherConfigs() ([]mouse.WatcherConfig, error) {
	if len(c.Buttons) == 0 {
		return mouse.DefaultWatcherConfigs(), nil
	}

	out := make([]mouse.WatcherConfig, 0, len(c.Buttons))
	seen := make(map[mouse.Button]bool, len(c.Buttons))

	for i, bc := range c.Buttons {
		path := fmt.Sprintf("buttons[%d]", i)

		b, err := mouse.ParseButton(bc.Name)
		if err != nil {
			return nil, &ValidationError{Path: path + ".name", Message: "unknown button", Value: bc.Name, Err: err}
		}
		if seen[b] {
			return nil, &ValidationError{Path: path + ".name", Message: "button listed twice", Value: bc.Name, Err: mouse.ErrDuplicateButton}
		}
		seen[b] = true

		wc := mouse.WatcherConfig{
			Button:            b,
			ClickWindow:       mouse.DefaultClickWindow,
			DoubleClickWindow: mouse.DefaultDoubleClickWindow,
		}
		if bc.ClickWindow != "" {
			if wc.ClickWindow, err = parseWindow(path+".click_window", bc.ClickWindow); err != nil {
				return nil, err
			}
		}
		if bc.DoubleClickWindow != "" {
			if wc.DoubleClickWindow, err = parseWindow(path+".doubleclick_window", bc.DoubleClickWindow); err != nil {
				return nil, err
			}
		}

		out = append(out, wc)
	}

	return out, nil
}

// Registry validates the button settings and builds a mouse registry.
func (c *Config) Registry() (*mouse.Registry, error) {
	configs, err := c.WatcherConfigs()
	if err != nil {
		return nil, err
	}
	return mouse.NewRegistry(configs)
}

// parseWindow parses a positive Go duration string.
func parseWindow(path, s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Path: path, Message: "not a duration", Value: s, Err: err}
	}
	if d <= 0 {
		return 0, &ValidationError{Path: path, Message: "must be positive", Value: s, Err: mouse.ErrInvalidWindow}
	}
	return d, nil
}
