// Package logging builds the zap loggers used across clickstorm.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeySession   = "session"
	KeyButton    = "button"
	KeyPath      = "path"
)

// Options configures New.
type Options struct {
	// Level is "debug", "info", "warn" or "error" (default "info").
	Level string
	// Format is "json" or "console" (default "console").
	Format string
	// Output is where entries are written (nil = os.Stderr).
	Output io.Writer
}

// New builds a logger from opts.
func New(opts Options) *zap.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(opts.Format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(output), ParseLevel(opts.Level))
	return zap.New(core)
}

// L returns a logger tagged with the given component name.
func L(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return base.With(zap.String(KeyComponent, component))
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
