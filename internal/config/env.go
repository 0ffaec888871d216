package config

import (
	"os"
	"sort"

	"github.com/dshills/clickstorm/internal/input/mouse"
)

// EnvPrefix is the prefix of every clickstorm environment variable.
const EnvPrefix = "CLICKSTORM_"

// setter applies one environment value to a config.
type setter func(cfg *Config, value string)

// EnvLoader overlays environment variables onto a Config.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "CLICKSTORM_")
	mapping map[string]setter // Env var suffix -> setter
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "CLICKSTORM_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		lookup:  os.LookupEnv,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
// The window overrides apply to every configured button.
func defaultEnvMapping() map[string]setter {
	return map[string]setter{
		"LOG_LEVEL":  func(c *Config, v string) { c.Logging.Level = v },
		"LOG_FORMAT": func(c *Config, v string) { c.Logging.Format = v },
		"TICK_RATE":  func(c *Config, v string) { c.Loop.TickRate = v },
		"CLICK_WINDOW": func(c *Config, v string) {
			c.materializeButtons()
			for i := range c.Buttons {
				c.Buttons[i].ClickWindow = v
			}
		},
		"DOUBLECLICK_WINDOW": func(c *Config, v string) {
			c.materializeButtons()
			for i := range c.Buttons {
				c.Buttons[i].DoubleClickWindow = v
			}
		},
	}
}

// Variables returns the full names of the recognized variables, sorted.
func (l *EnvLoader) Variables() []string {
	names := make([]string, 0, len(l.mapping))
	for suffix := range l.mapping {
		names = append(names, l.prefix+suffix)
	}
	sort.Strings(names)
	return names
}

// Apply overlays every set variable onto cfg.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Apply(cfg *Config) error {
	// Fixed order so CLICK_WINDOW and DOUBLECLICK_WINDOW materialize once
	for _, name := range l.Variables() {
		val, ok := l.lookup(name)
		if !ok {
			continue
		}
		l.mapping[name[len(l.prefix):]](cfg, val)
	}
	return nil
}

// materializeButtons replaces an empty button list with the implicit
// default set so per-button overrides have something to apply to.
func (c *Config) materializeButtons() {
	if len(c.Buttons) > 0 {
		return
	}
	for _, wc := range mouse.DefaultWatcherConfigs() {
		c.Buttons = append(c.Buttons, ButtonConfig{Name: wc.Button.String()})
	}
}
