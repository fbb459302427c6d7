package core

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}

// SlogLogger forwards Printf lines to a structured logger at info level
type SlogLogger struct {
	Logger *slog.Logger
	Attrs  []any // Added to every record
}

// NewSlogLogger wraps l; a nil l uses slog.Default()
func NewSlogLogger(l *slog.Logger, attrs ...any) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{Logger: l, Attrs: attrs}
}

// Printf implements Logger
func (s *SlogLogger) Printf(format string, args ...interface{}) {
	s.Logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), s.Attrs...)
}
