// Package logger builds the zap loggers used by the driver and the CLI.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding.
type Format string

const (
	FormatConsole Format = "CONSOLE"
	FormatJSON    Format = "JSON"
)

// Component names passed to For.
const (
	ComponentRunner = "runner"
	ComponentCLI    = "cli"
)

var (
	once sync.Once
	base = zap.NewNop()
)

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a zap level.
// Unknown values fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseFormat returns the format named by s, defaulting to console.
func ParseFormat(s string) Format {
	if Format(strings.ToUpper(s)) == FormatJSON {
		return FormatJSON
	}
	return FormatConsole
}

// New creates a logger writing to w.
func New(w io.Writer, level string, format Format) *zap.Logger {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
	}

	var enc zapcore.Encoder
	if format == FormatJSON {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.ConsoleSeparator = " | "
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return zap.New(core)
}

// Init installs the process-wide logger. Only the first call has effect.
func Init(level string, format Format) {
	once.Do(func() {
		base = New(os.Stderr, level, format)
		zap.ReplaceGlobals(base)
	})
}

// For returns a sugared logger named after component. Before Init it
// returns a no-op logger.
func For(component string) *zap.SugaredLogger {
	return base.Sugar().Named(component)
}
