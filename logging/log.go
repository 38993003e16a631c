// Package logging provides the structured logger shared by the clock tree,
// the simulator and the command line tools.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

const (
	ComponentRCC    Component = "rcc"
	ComponentPLL    Component = "pll"
	ComponentSim    Component = "sim"
	ComponentBoard  Component = "board"
	ComponentSVDGen Component = "svd-gen"
)

// Format selects the handler New creates.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

var (
	defaultLogger *slog.Logger
	level         = new(slog.LevelVar)
	mu            sync.RWMutex
)

func init() {
	level.Set(slog.LevelWarn)
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func SetLevel(l slog.Level) { level.Set(l) }

func Level() slog.Level { return level.Level() }

// SetLogger replaces the process default logger.
func SetLogger(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// New creates a logger writing to w at the shared level.
func New(w io.Writer, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Default returns the current default logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// For returns the default logger tagged with component.
func For(component Component) *slog.Logger {
	return Default().With("component", string(component))
}

// Debug logs at debug level on the default logger.
func Debug(component Component, msg string, args ...any) {
	Default().Debug(msg, append([]any{"component", string(component)}, args...)...)
}

func Info(component Component, msg string, args ...any) {
	Default().Info(msg, append([]any{"component", string(component)}, args...)...)
}

func Error(component Component, msg string, args ...any) {
	Default().Error(msg, append([]any{"component", string(component)}, args...)...)
}
