// Package config loads clickstorm settings.
//
// Settings come from three layers, each overriding the one below:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← CLICKSTORM_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← --config path (TOML)
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// # File Format
//
//	[logging]
//	level = "debug"
//	format = "json"
//
//	[loop]
//	tick_rate = "16ms"
//
//	[[buttons]]
//	name = "left"
//	click_window = "100ms"
//	doubleclick_window = "300ms"
//
// Windows are Go duration strings and must be positive. Omitting the
// buttons table watches left, middle and right with the default windows.
// Unknown keys are rejected.
//
// # Environment
//
// CLICKSTORM_LOG_LEVEL, CLICKSTORM_LOG_FORMAT and CLICKSTORM_TICK_RATE
// override the matching settings. CLICKSTORM_CLICK_WINDOW and
// CLICKSTORM_DOUBLECLICK_WINDOW override the windows of every watched
// button.
//
// Thresholds are fixed for the life of a pipeline. The watcher
// subpackage reports file changes so the host can reload and build a new
// pipeline.
package config
