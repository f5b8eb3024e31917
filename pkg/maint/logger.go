package maint

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// LogLevel defines the severity level for logging
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Logger defines the interface used by workflows for progress output
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// DefaultLogger is the charmbracelet/log backed Logger
type DefaultLogger struct {
	l *log.Logger
}

// NewDefaultLogger creates a logger writing to w at the given level
func NewDefaultLogger(w io.Writer, level LogLevel) *DefaultLogger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: "maintainer",
		Level:  toCharmLevel(level),
	})

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DEBU").Foreground(lipgloss.Color("#9CA3AF"))
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Foreground(lipgloss.Color("#3B82F6"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Foreground(lipgloss.Color("#F59E0B"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERRO").Bold(true).Foreground(lipgloss.Color("#EF4444"))
	l.SetStyles(styles)

	return &DefaultLogger{l: l}
}

func (d *DefaultLogger) Debug(msg string, keyvals ...interface{}) {
	d.l.Debug(msg, keyvals...)
}

func (d *DefaultLogger) Info(msg string, keyvals ...interface{}) {
	d.l.Info(msg, keyvals...)
}

func (d *DefaultLogger) Warn(msg string, keyvals ...interface{}) {
	d.l.Warn(msg, keyvals...)
}

func (d *DefaultLogger) Error(msg string, keyvals ...interface{}) {
	d.l.Error(msg, keyvals...)
}

// SetLevel changes the minimum level that is written
func (d *DefaultLogger) SetLevel(level LogLevel) {
	d.l.SetLevel(toCharmLevel(level))
}

// ParseLogLevel converts a config string such as "debug" into a LogLevel
func ParseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, true
	case "info", "":
		return LogLevelInfo, true
	case "warn", "warning":
		return LogLevelWarn, true
	case "error":
		return LogLevelError, true
	default:
		return LogLevelInfo, false
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

func toCharmLevel(level LogLevel) log.Level {
	switch level {
	case LogLevelDebug:
		return log.DebugLevel
	case LogLevelWarn:
		return log.WarnLevel
	case LogLevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
