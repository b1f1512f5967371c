// Package logger defines the structured logger the statement builder
// reports to. log/slog is supported through SlogAdapter.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger receives build events as a message plus key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoopLogger drops every event. It is the builder default.
type NoopLogger struct{}

// Debug does nothing.
func (NoopLogger) Debug(string, ...any) {}

// Info does nothing.
func (NoopLogger) Info(string, ...any) {}

// Warn does nothing.
func (NoopLogger) Warn(string, ...any) {}

// Error does nothing.
func (NoopLogger) Error(string, ...any) {}

// SlogAdapter satisfies Logger with a *slog.Logger.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter wraps l, which must not be nil.
func NewSlogAdapter(l *slog.Logger) *SlogAdapter {
	return &SlogAdapter{Logger: l}
}

// NewTextLogger logs slog text records at or above level to w.
func NewTextLogger(w io.Writer, level slog.Leveler) *SlogAdapter {
	return NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// ParseLevel reads a level name as accepted by slog ("debug", "WARN",
// "info+2"). "warning" is accepted for warn and the empty string means info.
func ParseLevel(name string) (slog.Level, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
