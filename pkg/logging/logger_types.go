package logging

import (
	"io"
	"strings"
	"sync"
)

// Level is a log severity.
type Level int

const (
	// DebugLevel covers per-tick motion and decision detail
	DebugLevel Level = iota
	// InfoLevel is the default: arrivals, executions, routing decisions
	InfoLevel
	// WarnLevel marks recoverable anomalies such as missing instructions
	WarnLevel
	// ErrorLevel marks failures that stop the planner
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name to a Level. Unknown
// names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is a structured key-value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface used across the planner.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger with fields pre-set. Children share the
	// parent's writer and level.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// sink is the writer and level shared by a logger and its children.
type sink struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
}

// JSONLogger writes one JSON object per line.
type JSONLogger struct {
	out    *sink
	fields []Field
}

// LogEntry is the JSON shape of one log line.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return InfoLevel }

// NewNopLogger returns a logger that discards all output.
func NewNopLogger() Logger {
	return NopLogger{}
}
